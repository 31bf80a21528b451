package textsplit

import (
	"strings"
	"testing"
)

func TestSplitNoMarker(t *testing.T) {
	body := "Hello,\n\nplease send the updated drawings.\n\nBest regards\nJohn"
	latest, quoted := Split(body)
	if latest != body {
		t.Errorf("latest = %q, want whole body", latest)
	}
	if quoted != "" {
		t.Errorf("quoted = %q, want empty", quoted)
	}
}

func TestSplitMarkers(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		marker string
	}{
		{
			"gmail wrote header",
			"Thanks, noted.\n\nOn Mon, Mar 3, 2025 at 9:12 AM Jane <j@x.com> wrote:\n> original text\n",
			"On Mon",
		},
		{
			"german schrieb header",
			"Danke!\n\nAm 03.03.2025 um 09:12 schrieb Jane Doe:\n> Urtext\n",
			"Am 03",
		},
		{
			"original message banner",
			"Will do.\n\n-----Original Message-----\nFrom: Jane\nSubject: order\n",
			"-----Original",
		},
		{
			"forwarded banner",
			"FYI\n\n---------- Forwarded message ----------\nFrom: Jane\n",
			"---------- Forwarded",
		},
		{
			"outlook header block",
			"See below.\n\nFrom: Jane Doe\nSent: Monday, March 3, 2025\nTo: us\n\nbody\n",
			"From: Jane",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			latest, quoted := Split(tt.body)
			if !strings.HasPrefix(quoted, tt.marker) {
				t.Errorf("quoted should start at marker %q, got %q", tt.marker, quoted)
			}
			if strings.Contains(latest, tt.marker) {
				t.Errorf("latest still contains marker: %q", latest)
			}
		})
	}
}

func TestSplitQuotedLineRun(t *testing.T) {
	body := "Agreed.\n\n> first quoted line\n> second quoted line\n> third quoted line\n"
	latest, quoted := Split(body)
	if !strings.HasPrefix(quoted, "> first") {
		t.Errorf("quoted = %q, want run of > lines", quoted)
	}
	if latest != "Agreed.\n\n" {
		t.Errorf("latest = %q", latest)
	}

	// Two quoted lines are not enough to count as history.
	short := "Agreed.\n\n> only one\n> and two\nback to normal\n"
	latest, quoted = Split(short)
	if quoted != "" {
		t.Errorf("two-line run should not split, quoted = %q", quoted)
	}
	if latest != short {
		t.Errorf("latest = %q, want whole body", latest)
	}
}

func TestSplitEarliestMarkerWins(t *testing.T) {
	body := "Top reply.\n\n-----Original Message-----\nolder\n\nOn Mon, Jan 2, 2006 Jane wrote:\n> oldest\n"
	_, quoted := Split(body)
	if !strings.HasPrefix(quoted, "-----Original") {
		t.Errorf("earliest marker must win, quoted = %q", quoted)
	}
}

// latest + quoted must reconstruct the body exactly, whatever the input.
func TestSplitReconstruction(t *testing.T) {
	bodies := []string{
		"",
		"no markers here at all",
		"reply\n\nOn Tue, Jane wrote:\n> q\n",
		"reply\r\n\r\nFrom: Jane\r\nSent: Monday\r\n",
		"> a\n> b\n> c\nonly quotes",
		"mixed\n> a\n> b\n> c\n-----Original Message-----\n",
	}
	for _, body := range bodies {
		latest, quoted := Split(body)
		if latest+quoted != body {
			t.Errorf("split dropped characters for %q: latest=%q quoted=%q", body, latest, quoted)
		}
	}
}
