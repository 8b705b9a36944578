package config

import (
	"testing"
	"time"
)

func TestGetDurationEnvDefault(t *testing.T) {
	t.Setenv("TEST_TTL", "")
	if got := getDurationEnv("TEST_TTL", 20, time.Minute); got != 20*time.Minute {
		t.Fatalf("expected 20m default, got %v", got)
	}
}

func TestGetDurationEnvParsesValue(t *testing.T) {
	t.Setenv("TEST_TTL", "45")
	if got := getDurationEnv("TEST_TTL", 20, time.Minute); got != 45*time.Minute {
		t.Fatalf("expected 45m, got %v", got)
	}
}

func TestGetDurationEnvRejectsInvalid(t *testing.T) {
	for _, value := range []string{"abc", "-5", "0"} {
		t.Setenv("TEST_TTL", value)
		if got := getDurationEnv("TEST_TTL", 7, 24*time.Hour); got != 7*24*time.Hour {
			t.Fatalf("expected default for value %q, got %v", value, got)
		}
	}
}
