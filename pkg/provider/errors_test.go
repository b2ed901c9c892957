package provider

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{StatusCode: 503, Class: ErrorClassServer, Message: "503 Service Unavailable"}
	if !strings.Contains(err.Error(), "server") || !strings.Contains(err.Error(), "503") {
		t.Errorf("Error() = %q, want class and status in message", err.Error())
	}

	wrapped := &Error{Class: ErrorClassNetwork, Message: "request failed", Err: errors.New("dial tcp: refused")}
	if !strings.Contains(wrapped.Error(), "refused") {
		t.Errorf("Error() = %q, want wrapped cause", wrapped.Error())
	}
	if !errors.Is(wrapped, wrapped.Err) {
		t.Error("Unwrap should expose the cause to errors.Is")
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  bool
	}{
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{ErrorClass("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			if got := shouldRetry(tt.class); got != tt.want {
				t.Errorf("shouldRetry(%s) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if got := classify(&Error{Class: ErrorClassRateLimit}); got != ErrorClassRateLimit {
		t.Errorf("classify = %v, want rate_limit", got)
	}
	if got := classify(errors.New("plain")); got != ErrorClassNetwork {
		t.Errorf("classify = %v, want network for unclassified errors", got)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{429, ErrorClassRateLimit},
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Errorf("classifyStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
