package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level   string
		verbose bool
		want    zerolog.Level
	}{
		{"", false, zerolog.WarnLevel},
		{"", true, zerolog.DebugLevel},
		{"error", true, zerolog.ErrorLevel},
		{" INFO ", false, zerolog.InfoLevel},
	}
	for _, tc := range cases {
		log, err := newLogger(&bytes.Buffer{}, tc.level, tc.verbose)
		if err != nil {
			t.Fatalf("newLogger(%q, %v): %v", tc.level, tc.verbose, err)
		}
		if got := log.GetLevel(); got != tc.want {
			t.Errorf("newLogger(%q, %v): level %v, want %v", tc.level, tc.verbose, got, tc.want)
		}
	}
}

func TestNewLogger_WritesToWriter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := newLogger(&buf, "", false)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	log.Debug().Msg("hidden")
	log.Warn().Msg("skipping operation")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "skipping operation") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	t.Parallel()
	if _, err := newLogger(&bytes.Buffer{}, "loud", false); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
