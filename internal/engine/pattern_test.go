package engine

import (
	"testing"

	"seowatch/internal/rules"
)

func TestEvaluatePatternConsecutiveDecline(t *testing.T) {
	res := EvaluatePattern([]float64{30, 20, 10}, rules.PatternConsecutiveDecline, 3)
	if !res.Hit {
		t.Fatalf("strictly decreasing series must fire")
	}
	res = EvaluatePattern([]float64{30, 20, 25}, rules.PatternConsecutiveDecline, 3)
	if res.Hit {
		t.Fatalf("one violating step must break the pattern")
	}
	res = EvaluatePattern([]float64{30, 30, 20}, rules.PatternConsecutiveDecline, 3)
	if res.Hit {
		t.Fatalf("a flat step must break the strict decline")
	}
}

func TestEvaluatePatternConsecutiveGrowth(t *testing.T) {
	res := EvaluatePattern([]float64{10, 20, 30}, rules.PatternConsecutiveGrowth, 3)
	if !res.Hit {
		t.Fatalf("strictly increasing series must fire")
	}
	res = EvaluatePattern([]float64{10, 25, 20}, rules.PatternConsecutiveGrowth, 3)
	if res.Hit {
		t.Fatalf("one violating step must break the pattern")
	}
}

func TestEvaluatePatternUsesTail(t *testing.T) {
	// Only the last `duration` values matter.
	res := EvaluatePattern([]float64{5, 100, 30, 20, 10}, rules.PatternConsecutiveDecline, 3)
	if !res.Hit {
		t.Fatalf("decline over the tail must fire regardless of earlier values")
	}
}

func TestEvaluatePatternInsufficientHistory(t *testing.T) {
	res := EvaluatePattern([]float64{30, 20}, rules.PatternConsecutiveDecline, 3)
	if res.Sufficient {
		t.Fatalf("short series must be reported insufficient")
	}
	if res.Hit {
		t.Fatalf("insufficient data must not fire")
	}
}

func TestEvaluatePatternTrendReversal(t *testing.T) {
	// Decline then growth, each window of length 3.
	res := EvaluatePattern([]float64{30, 20, 10, 15, 20, 25}, rules.PatternTrendReversal, 3)
	if !res.Hit {
		t.Fatalf("decline to growth must report a reversal")
	}
	if res.PreviousTrend != "decline" || res.RecentTrend != "growth" {
		t.Fatalf("unexpected trends %s -> %s", res.PreviousTrend, res.RecentTrend)
	}
	// Growth then decline fires too.
	res = EvaluatePattern([]float64{10, 20, 30, 25, 20, 15}, rules.PatternTrendReversal, 3)
	if !res.Hit {
		t.Fatalf("growth to decline must report a reversal")
	}
}

func TestEvaluatePatternTrendReversalFlat(t *testing.T) {
	res := EvaluatePattern([]float64{10, 10, 10, 10, 10, 10}, rules.PatternTrendReversal, 3)
	if res.Hit {
		t.Fatalf("flat series must not report a reversal")
	}
	if res.PreviousTrend != "stable" || res.RecentTrend != "stable" {
		t.Fatalf("expected stable windows, got %s -> %s", res.PreviousTrend, res.RecentTrend)
	}
}

func TestEvaluatePatternTrendReversalStableSideIsNotReversal(t *testing.T) {
	// Previous window declines, recent window is flat.
	res := EvaluatePattern([]float64{30, 20, 10, 10, 10, 10}, rules.PatternTrendReversal, 3)
	if res.Hit {
		t.Fatalf("a transition through stable is not a reversal")
	}
}

func TestEvaluatePatternTrendReversalRequiresFullWindows(t *testing.T) {
	// duration+2 points satisfy the floor but cannot form two full
	// non-overlapping windows of 4.
	res := EvaluatePattern([]float64{40, 30, 20, 10, 20, 30}, rules.PatternTrendReversal, 4)
	if res.Sufficient {
		t.Fatalf("short previous window must be a skip, not an approximation")
	}
	if res.Hit {
		t.Fatalf("insufficient windows must not fire")
	}
}

func TestClassifyTrendOutlierStep(t *testing.T) {
	// One large up step in an otherwise declining majority: endpoint and
	// step majority disagree, so the window is stable.
	if trend := classifyTrend([]float64{10, 9, 8, 20}); trend != trendStable {
		t.Fatalf("expected stable, got %s", trend)
	}
}

func TestEvaluatePatternUnknownType(t *testing.T) {
	res := EvaluatePattern([]float64{1, 2, 3}, "zigzag", 3)
	if res.Known {
		t.Fatalf("unknown pattern must be flagged")
	}
	if res.Hit {
		t.Fatalf("unknown pattern must fail closed")
	}
}
