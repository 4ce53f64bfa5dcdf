package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/orchestration"
)

func sampleResult() (orchestration.CalculationResult, bigint.Int, bigint.Int) {
	x := bigint.MustParse("12345678")
	y := bigint.MustParse("87654321")
	return orchestration.CalculationResult{
		Name:     "Karatsuba",
		Product:  bigint.MustParse("1082152022374638"),
		Duration: 100 * time.Millisecond,
	}, x, y
}

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	res, x, y := sampleResult()

	testCases := []struct {
		name       string
		outputFile string
		checkFunc  func(t *testing.T, filePath string)
	}{
		{
			name:       "Write product to file",
			outputFile: filepath.Join(tmpDir, "result.txt"),
			checkFunc: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				if err != nil {
					t.Fatalf("failed to read output file: %v", err)
				}
				s := string(content)
				for _, want := range []string{
					"# Karatsuba Multiplication Result",
					"# Algorithm: Karatsuba",
					"# Product digits: 16",
					"12345678 * 87654321 =\n1082152022374638\n",
				} {
					if !strings.Contains(s, want) {
						t.Errorf("file should contain %q, got:\n%s", want, s)
					}
				}
			},
		},
		{
			name:       "Empty output file (no write)",
			outputFile: "",
		},
		{
			name:       "Create nested directory",
			outputFile: filepath.Join(tmpDir, "nested", "dir", "result.txt"),
			checkFunc: func(t *testing.T, filePath string) {
				if _, err := os.Stat(filePath); err != nil {
					t.Errorf("file should exist in nested directory: %v", err)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := WriteResultToFile(x, y, res.Product, res.Duration, res.Name, OutputConfig{OutputFile: tc.outputFile})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.checkFunc != nil {
				tc.checkFunc(t, tc.outputFile)
			}
		})
	}
}

func TestWriteResultToFile_InvalidPath(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	res, x, y := sampleResult()
	err := WriteResultToFile(x, y, res.Product, res.Duration, res.Name,
		OutputConfig{OutputFile: filepath.Join(blocker, "sub", "out.txt")})
	if err == nil {
		t.Fatal("expected an error when a path component is a regular file")
	}
}

func TestFormatQuietResult(t *testing.T) {
	t.Parallel()
	large := bigint.MustParse("123456789012345678901234567890")
	if got := FormatQuietResult(large); got != "123456789012345678901234567890" {
		t.Errorf("FormatQuietResult() = %q", got)
	}
	if got := FormatQuietResult(bigint.Int{}); got != "0" {
		t.Errorf("FormatQuietResult(zero) = %q, want 0", got)
	}
}

func TestFormatProduct(t *testing.T) {
	t.Parallel()
	short := bigint.MustParse("987654321")
	if s, truncated := FormatProduct(short, false); s != "987654321" || truncated {
		t.Errorf("FormatProduct(short) = %q, %v", s, truncated)
	}
	long := bigint.Pow10(150)
	s, truncated := FormatProduct(long, false)
	if !truncated || !strings.HasPrefix(s, "1"+strings.Repeat("0", DisplayEdges-1)+"...") {
		t.Errorf("FormatProduct(long) = %q, %v", s, truncated)
	}
	if s, truncated := FormatProduct(long, true); truncated || len(s) != 151 {
		t.Errorf("FormatProduct(long, verbose) length %d, truncated %v", len(s), truncated)
	}
}

func TestDisplayQuietResult(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayQuietResult(&buf, bigint.MustParse("55"))
	if buf.String() != "55\n" {
		t.Errorf("DisplayQuietResult() = %q, want %q", buf.String(), "55\n")
	}
}

func TestDisplayResultWithConfig(t *testing.T) {
	t.Parallel()
	res, x, y := sampleResult()
	tmpDir := t.TempDir()

	t.Run("Quiet mode", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := DisplayResultWithConfig(&buf, res, x, y, OutputConfig{Quiet: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "1082152022374638\n" {
			t.Errorf("quiet output = %q", buf.String())
		}
	})

	t.Run("Normal mode with file output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		outputFile := filepath.Join(tmpDir, "test_output.txt")
		if err := DisplayResultWithConfig(&buf, res, x, y, OutputConfig{OutputFile: outputFile}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(outputFile); err != nil {
			t.Errorf("output file should exist: %v", err)
		}
		if !strings.Contains(buf.String(), "Result saved to") {
			t.Errorf("should show file save message, got %q", buf.String())
		}
	})

	t.Run("Quiet mode with file output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		outputFile := filepath.Join(tmpDir, "quiet_output.txt")
		if err := DisplayResultWithConfig(&buf, res, x, y, OutputConfig{OutputFile: outputFile, Quiet: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(outputFile); err != nil {
			t.Errorf("output file should exist: %v", err)
		}
		if strings.Contains(buf.String(), "Result saved to") {
			t.Error("quiet mode should not show file save message")
		}
	})
}
