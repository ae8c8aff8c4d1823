package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"ERROR", slog.LevelError, true},
		{"verbose", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input)
			if tt.ok && (got == nil || *got != tt.want) {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !tt.ok && got != nil {
				t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
			}
		})
	}
}

func TestGetLoggerReturnsSameInstance(t *testing.T) {
	a := GetLogger("transport")
	b := GetLogger("transport")
	if a != b {
		t.Error("GetLogger returned different instances for the same module")
	}
}

func TestInitializeAppliesModuleLevels(t *testing.T) {
	// Create the logger before Initialize so the re-level path is exercised
	GetLogger("scheduler")

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"scheduler": "debug",
		},
	})

	mutex.RLock()
	defer mutex.RUnlock()
	lv, ok := moduleLevelVars["scheduler"]
	if !ok {
		t.Fatal("scheduler level var missing after Initialize")
	}
	if lv.Level() != slog.LevelDebug {
		t.Errorf("scheduler level = %v, want debug", lv.Level())
	}
}
