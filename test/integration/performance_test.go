package integration

import (
	"testing"
	"time"

	"github.com/iwvelando/property-valuation/internal/valuation"
)

// TestPerformance guards against the engine becoming expensive enough to
// make the HTTP cache matter for correctness.
func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	in := valuation.DefaultInputs()
	in.HoldingPeriodYears = 30
	engine := valuation.New(nil)

	const runs = 1000
	start := time.Now()
	for i := 0; i < runs; i++ {
		if _, err := engine.Evaluate(in); err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	t.Logf("%d evaluations took %v (%v each)", runs, elapsed, elapsed/runs)
	if elapsed > 5*time.Second {
		t.Errorf("evaluations too slow: %v for %d runs", elapsed, runs)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	engine := valuation.New(nil)
	in := valuation.DefaultInputs()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Evaluate(in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFixturePipeline(b *testing.B) {
	for i := 0; i < b.N; i++ {
		loadReports(b)
	}
}
