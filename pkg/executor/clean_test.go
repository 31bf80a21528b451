package executor

import "testing"

func TestCleanPassthrough(t *testing.T) {
	got := Clean("bonjour", "  Hello there \n")
	if got != "Hello there" {
		t.Errorf("Clean = %q, want trimmed passthrough", got)
	}
}

func TestCleanLabelPrefix(t *testing.T) {
	got := Clean("bonjour le monde", "Translation: Hello wide world")
	if got != "Hello wide world" {
		t.Errorf("Clean = %q, want label stripped", got)
	}
}

func TestCleanEchoedSource(t *testing.T) {
	got := Clean("Hello world", "Hello world Bonjour le monde")
	if got != "Bonjour le monde" {
		t.Errorf("Clean = %q, want echoed source removed", got)
	}
}

func TestCleanTrailingOriginalBlock(t *testing.T) {
	got := Clean("hello", "Bonjour\nOriginal: hello")
	if got != "Bonjour" {
		t.Errorf("Clean = %q, want trailing original block removed", got)
	}
}

// Cleaning that would keep under a quarter of the output is assumed to
// have misfired and the raw output wins.
func TestCleanSafetyFloor(t *testing.T) {
	raw := "Translation: Hi"
	got := Clean("a long enough source text", raw)
	if got != raw {
		t.Errorf("Clean = %q, want raw output kept by safety floor", got)
	}
}

func TestCleanEmpty(t *testing.T) {
	if got := Clean("source", "   "); got != "" {
		t.Errorf("Clean = %q, want empty", got)
	}
}
