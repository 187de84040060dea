package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestVersionFallbacks checks that every version field has a usable
// fallback when no ldflags were injected.
func TestVersionFallbacks(t *testing.T) {
	t.Parallel()

	if getVersion() == "" {
		t.Error("getVersion() returned empty string")
	}
	if getCommit() == "" {
		t.Error("getCommit() returned empty string")
	}
	if getDate() == "" {
		t.Error("getDate() returned empty string")
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("command metadata", func(t *testing.T) {
		t.Parallel()
		cmd := NewVersionCmd()
		if cmd.Use != "version" {
			t.Errorf("expected Use 'version', got %q", cmd.Use)
		}
		if cmd.Short == "" {
			t.Error("expected non-empty Short")
		}
	})

	t.Run("prints version, commit, and build date", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, want := range []string{"souschef version", "commit:", "built:"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected output to contain %q, got %q", want, buf.String())
			}
		}
	})
}
