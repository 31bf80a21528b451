package complexity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type fakeEstimator struct {
	rating int
	err    error
	calls  int
}

func (f *fakeEstimator) Estimate(ctx context.Context, text, subject string) (int, error) {
	f.calls++
	return f.rating, f.err
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(nullWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

// filler is neutral text that trips none of the keyword rules.
func filler(n int) string {
	return strings.Repeat("the parcel left our warehouse yesterday morning and travels via road freight ", n)
}

func TestAssessShortText(t *testing.T) {
	est := &fakeEstimator{}
	c := NewClassifier(est, quiet())

	got := c.Assess(context.Background(), "Thanks, will do.", "")
	if got.Level != LevelLow {
		t.Errorf("level = %s, want low", got.Level)
	}
	if got.Method != MethodRule {
		t.Errorf("method = %s, want rule", got.Method)
	}
	if est.calls != 0 {
		t.Errorf("model called %d times for short text, want 0", est.calls)
	}
}

func TestAssessSignatureBlock(t *testing.T) {
	c := NewClassifier(nil, quiet())
	sig := strings.Join([]string{
		"Best regards",
		"Jane Doe | Procurement",
		"Acme GmbH",
		"Tel: +49 89 1234567",
		"jane.doe@acme.example",
		"www.acme.example",
		"This paragraph pads the body over the one hundred character floor so the signature rule is the one under test.",
	}, "\n")

	got := c.Assess(context.Background(), sig, "")
	if got.Level != LevelLow || got.Reason != "signature block" {
		t.Errorf("got %+v, want low/signature block", got)
	}
}

func TestAssessComplexMarkers(t *testing.T) {
	c := NewClassifier(nil, quiet())
	text := filler(2) + "The delivered batch shows a coating defect and we are raising a claim per the warranty clause."

	got := c.Assess(context.Background(), text, "")
	if got.Level != LevelHigh {
		t.Errorf("level = %s, want high", got.Level)
	}
	if got.Score < 60 {
		t.Errorf("score = %d, want >= 60", got.Score)
	}
}

func TestAssessOneMarkerPlusComplexSubject(t *testing.T) {
	c := NewClassifier(nil, quiet())
	text := filler(2) + "Please review the attached deviation report."

	got := c.Assess(context.Background(), text, "Deviation on PO 4711")
	if got.Level != LevelHigh {
		t.Errorf("level = %s, want high with complex subject", got.Level)
	}
}

func TestAssessSimpleMarkers(t *testing.T) {
	c := NewClassifier(nil, quiet())
	text := "Thank you for the quick update, the shipment details are confirmed on our side and we have passed them on internally."

	got := c.Assess(context.Background(), text, "")
	if got.Level != LevelLow || got.Reason != "routine phrasing" {
		t.Errorf("got %+v, want low/routine phrasing", got)
	}
}

func TestAssessLongText(t *testing.T) {
	c := NewClassifier(nil, quiet())
	got := c.Assess(context.Background(), filler(100), "")
	if got.Level != LevelHigh || got.Reason != "long text" {
		t.Errorf("got %+v, want high/long text", got)
	}
}

func TestAssessTabular(t *testing.T) {
	c := NewClassifier(nil, quiet())
	table := filler(2) + "\n" + strings.Join([]string{
		"Pos   Article        Qty    Price",
		"10    Bracket A4     500    1.20",
		"20    Bracket A5     250    1.45",
		"30    Screw M6       9000   0.03",
	}, "\n")

	got := c.Assess(context.Background(), table, "")
	if got.Level != LevelMedium || got.Reason != "tabular content" {
		t.Errorf("got %+v, want medium/tabular content", got)
	}
}

func TestAssessModelPath(t *testing.T) {
	est := &fakeEstimator{rating: 4}
	c := NewClassifier(est, quiet())

	got := c.Assess(context.Background(), filler(3), "mixed topics")
	if got.Method != MethodModel {
		t.Fatalf("method = %s, want model", got.Method)
	}
	if got.Level != LevelHigh || got.Score != 80 {
		t.Errorf("got %+v, want high/80 from rating 4", got)
	}
	if est.calls != 1 {
		t.Errorf("model calls = %d, want 1", est.calls)
	}
}

func TestAssessModelFailureFallsBack(t *testing.T) {
	est := &fakeEstimator{err: errors.New("timeout")}
	c := NewClassifier(est, quiet())

	got := c.Assess(context.Background(), filler(3), "")
	if got.Level != LevelMedium || got.Method != MethodFallback {
		t.Errorf("got %+v, want medium/fallback", got)
	}
}

func TestAssessModelOutOfRangeFallsBack(t *testing.T) {
	est := &fakeEstimator{rating: 9}
	c := NewClassifier(est, quiet())

	got := c.Assess(context.Background(), filler(3), "")
	if got.Method != MethodFallback {
		t.Errorf("method = %s, want fallback on out-of-range rating", got.Method)
	}
}

func TestAssessNilEstimator(t *testing.T) {
	c := NewClassifier(nil, quiet())
	got := c.Assess(context.Background(), filler(3), "")
	if got.Level != LevelMedium || got.Method != MethodFallback {
		t.Errorf("got %+v, want medium/fallback without estimator", got)
	}
}
