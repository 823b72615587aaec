package log

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetLevel(t *testing.T) {
	Init("info", false)
	SetLevel("error")
	if got := Logger().GetLevel(); got != zerolog.ErrorLevel {
		t.Errorf("expected error level, got %v", got)
	}
}

func TestLevelHelpers(t *testing.T) {
	Init("debug", false)
	defer Init("warn", false)

	for name, ev := range map[string]*zerolog.Event{
		"debug": Debug(),
		"info":  Info(),
		"warn":  Warn(),
		"error": Error(),
	} {
		if ev == nil {
			t.Errorf("%s: expected an enabled event at debug level", name)
			continue
		}
		ev.Discard()
	}

	Init("error", false)
	if ev := Warn(); ev != nil {
		t.Error("warn should be disabled at error level")
	}
}
