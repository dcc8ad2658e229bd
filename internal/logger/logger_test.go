package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    zapcore.Level
	}{
		{"warn", false, zapcore.WarnLevel},
		{"bogus", false, zapcore.InfoLevel},
		{"error", true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		log, err := New(tt.level, tt.verbose)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.level, err)
		}
		if !log.Core().Enabled(tt.want) || (tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1)) {
			t.Errorf("New(%q, %v) not at level %v", tt.level, tt.verbose, tt.want)
		}
	}
}
