package errors

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true) // verbose mode

	logger.Error("error message")
	logger.Warn("warn message")
	logger.Info("info message")
	logger.Debug("debug message")

	output := buf.String()

	for _, level := range []string{"ERROR", "WARN", "INFO", "DEBUG"} {
		if !strings.Contains(output, level) {
			t.Errorf("Output should contain %s", level)
		}
	}
}

func TestLogger_NonVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Error("error message")
	logger.Warn("warn message")
	logger.Info("info message")
	logger.Debug("debug message")

	output := buf.String()

	if !strings.Contains(output, "ERROR") {
		t.Error("Output should contain ERROR even in non-verbose mode")
	}
	if !strings.Contains(output, "WARN") {
		t.Error("Output should contain WARN in non-verbose mode")
	}
	if strings.Contains(output, "INFO") {
		t.Error("Output should not contain INFO in non-verbose mode")
	}
	if strings.Contains(output, "DEBUG") {
		t.Error("Output should not contain DEBUG in non-verbose mode")
	}
}

func TestLogger_SanitizesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Warn("using key %s", "sk-abcdefghijklmnopqrstuvwxyz")

	if strings.Contains(buf.String(), "sk-abcdefghijklmnopqrstuvwxyz") {
		t.Errorf("Output leaked API key: %s", buf.String())
	}
}

func TestLogger_LogAPIRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.LogAPIRequest("req-123", "https://api.openai.com/v1", "gpt-4", 1000)

	output := buf.String()

	if !strings.Contains(output, "req-123") {
		t.Error("Output should contain request id")
	}
	if !strings.Contains(output, "gpt-4") {
		t.Error("Output should contain model name")
	}
}

func TestLogger_LogAPIResponse(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.LogAPIResponse("req-123", 200, 500, 100*time.Millisecond)

	output := buf.String()

	if !strings.Contains(output, "req-123") {
		t.Error("Output should contain request id")
	}
	if !strings.Contains(output, "200") {
		t.Error("Output should contain status code")
	}
}

func TestLogger_APILoggingSilentWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.LogAPIRequest("req-123", "", "gpt-4", 10)
	logger.LogAPIResponse("req-123", 200, 10, time.Millisecond)

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSetVerbose(t *testing.T) {
	originalVerbose := IsVerbose()
	defer SetVerbose(originalVerbose)

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("IsVerbose() should return true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("IsVerbose() should return false after SetVerbose(false)")
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelError, "ERROR"},
		{LogLevelWarn, "WARN"},
		{LogLevelInfo, "INFO"},
		{LogLevelDebug, "DEBUG"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
