package automation

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestParamHoldsInitialValue(t *testing.T) {
	p := NewParam(3)
	if got := p.At(10); got != 3 {
		t.Fatalf("At(10) = %f, want 3", got)
	}
}

func TestParamSetAndRamp(t *testing.T) {
	p := NewParam(0)
	p.SetValueAt(10, 1)
	p.LinearRampTo(20, 2)
	for _, tc := range []struct{ t, want float64 }{
		{0.5, 0},
		{1, 10},
		{1.5, 15},
		{2, 20},
		{3, 20},
	} {
		if got := p.At(tc.t); !near(got, tc.want) {
			t.Fatalf("At(%v) = %f, want %f", tc.t, got, tc.want)
		}
	}
}

func TestParamThreePointEnvelope(t *testing.T) {
	p := NewParam(0)
	p.SetValueAt(0, 1)
	p.LinearRampTo(1200, 1.1)
	p.LinearRampTo(0, 1.3)
	if got := p.At(1.05); !near(got, 600) {
		t.Fatalf("attack midpoint = %f, want 600", got)
	}
	if got := p.At(1.2); !near(got, 600) {
		t.Fatalf("decay midpoint = %f, want 600", got)
	}
	if got := p.At(2); got != 0 {
		t.Fatalf("after envelope = %f, want 0", got)
	}
}

func TestParamEqualTimesKeepInsertionOrder(t *testing.T) {
	p := NewParam(0)
	p.SetValueAt(1, 1)
	p.SetValueAt(2, 1)
	if got := p.At(1); got != 2 {
		t.Fatalf("At(1) = %f, want later insert 2", got)
	}
}

func TestParamLeadingRampStartsAtZero(t *testing.T) {
	p := NewParam(0)
	p.LinearRampTo(10, 2)
	if got := p.At(1); !near(got, 5) {
		t.Fatalf("At(1) = %f, want 5", got)
	}
}

func TestParamScheduleAfterReads(t *testing.T) {
	p := NewParam(1)
	if got := p.At(0.5); got != 1 {
		t.Fatalf("At(0.5) = %f", got)
	}
	p.SetValueAt(1, 1)
	p.LinearRampTo(0, 1.1)
	if got := p.At(1.05); !near(got, 0.5) {
		t.Fatalf("At(1.05) = %f, want 0.5", got)
	}
}

func TestParamCancelAndHoldTruncatesRamp(t *testing.T) {
	p := NewParam(0)
	p.SetValueAt(0, 0)
	p.LinearRampTo(100, 1)
	p.CancelAndHoldAt(0.25)
	p.SetValueAt(0, 0.25)
	p.LinearRampTo(100, 1.25)
	if got := p.At(0.125); !near(got, 12.5) {
		t.Fatalf("At(0.125) = %f, want 12.5 on the truncated ramp", got)
	}
	if got := p.At(0.25); got != 0 {
		t.Fatalf("At(0.25) = %f, want reset to 0", got)
	}
	if got := p.At(0.75); !near(got, 50) {
		t.Fatalf("At(0.75) = %f, want 50", got)
	}
}

func TestParamCancelAndHoldOnEmptyTimeline(t *testing.T) {
	p := NewParam(7)
	p.CancelAndHoldAt(1)
	if p.Len() != 0 {
		t.Fatalf("Len = %d, want 0", p.Len())
	}
}
