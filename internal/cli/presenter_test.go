package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agbru/karacalc/internal/bigint"
	apperrors "github.com/agbru/karacalc/internal/errors"
	"github.com/agbru/karacalc/internal/metrics"
	"github.com/agbru/karacalc/internal/orchestration"
)

func TestCLIResultPresenter_ComparisonTable(t *testing.T) {
	t.Parallel()
	results := []orchestration.CalculationResult{
		{Name: "Karatsuba", Product: bigint.FromUint64(6), Duration: 2 * time.Millisecond},
		{Name: "math/big", Duration: 0},
		{Name: "Schoolbook", Err: errors.New("boom"), Duration: time.Second},
	}

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentComparisonTable(results, &buf)
	output := buf.String()
	for _, want := range []string{"Comparison Summary", "Algorithm", "Duration", "Status", "2ms", "< 1µs", "✅ Success", "❌ Failure (boom)"} {
		if !strings.Contains(output, want) {
			t.Errorf("table should contain %q, got:\n%s", want, output)
		}
	}
}

func TestCLIResultPresenter_HandleError(t *testing.T) {
	t.Parallel()
	p := CLIResultPresenter{}
	tests := []struct {
		err  error
		code int
	}{
		{nil, apperrors.ExitSuccess},
		{context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{context.Canceled, apperrors.ExitErrorCanceled},
		{apperrors.MismatchError{Algorithms: []string{"a", "b"}}, apperrors.ExitErrorMismatch},
		{errors.New("generic"), apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		if got := p.HandleError(tt.err, time.Millisecond, &bytes.Buffer{}); got != tt.code {
			t.Errorf("HandleError(%v) = %d, want %d", tt.err, got, tt.code)
		}
	}
}

func TestCLIResultPresenter_PresentResult(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	res := orchestration.CalculationResult{Name: "Karatsuba", Product: bigint.FromUint64(56088), Duration: time.Millisecond}
	CLIResultPresenter{}.PresentResult(res, orchestration.PresentationOptions{
		X: bigint.FromUint64(123), Y: bigint.FromUint64(456), ShowValue: true,
	}, &buf)
	if !strings.Contains(buf.String(), "56088") {
		t.Errorf("result should be displayed, got:\n%s", buf.String())
	}
}

func TestPadRight(t *testing.T) {
	t.Parallel()
	if got := padRight("ab", 3); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("ab", -1); got != "ab" {
		t.Errorf("padRight(negative) = %q", got)
	}
}

func TestDisplayMemoryStats(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayMemoryStats(metrics.MemoryDelta{Allocated: 1536, Allocations: 12, GCCycles: 2, PauseNs: 1_500_000, PeakHeap: 2048}, &buf)
	for _, want := range []string{"1.50 KiB (12 allocations)", "2.00 KiB", "GC cycles:       2", "1.50ms"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("memory stats should contain %q, got:\n%s", want, buf.String())
		}
	}
}
