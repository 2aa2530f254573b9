package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantLvl zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.wantLvl {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.wantLvl)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, dev := range []bool{false, true} {
		l, err := New("debug", dev)
		if err != nil {
			t.Fatalf("New(debug, %v) returned error: %v", dev, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("New(debug, %v) should enable debug level", dev)
		}
	}
}

func TestSetGlobal(t *testing.T) {
	orig := Global()
	defer SetGlobal(orig)

	core, logs := observer.New(zapcore.InfoLevel)
	SetGlobal(zap.New(core))

	Info("counted", zap.String("page", "home"))
	Warn("fell back")
	Debug("dropped")

	if logs.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", logs.Len())
	}
	if logs.All()[0].ContextMap()["page"] != "home" {
		t.Errorf("expected page field, got %v", logs.All()[0].ContextMap())
	}
}

func TestWithCarriesFields(t *testing.T) {
	orig := Global()
	defer SetGlobal(orig)

	core, logs := observer.New(zapcore.InfoLevel)
	SetGlobal(zap.New(core))

	reqLog := With(zap.String("request_id", "abc"))
	reqLog.Warn("slow store")
	Info("unrelated")

	all := logs.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	if all[0].ContextMap()["request_id"] != "abc" {
		t.Errorf("child logger lost its fields: %v", all[0].ContextMap())
	}
	if _, ok := all[1].ContextMap()["request_id"]; ok {
		t.Errorf("With must not change the global logger")
	}
}
