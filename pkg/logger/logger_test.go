package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/user-import-api/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew_AppliesLevel(t *testing.T) {
	log := New(config.LogConfig{Level: "error", Format: "json"})
	if log.GetLevel() != zerolog.ErrorLevel {
		t.Errorf("Expected error level, got %v", log.GetLevel())
	}
}
