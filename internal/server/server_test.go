package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/logging"
	"github.com/agbru/karacalc/internal/metrics"
	"github.com/agbru/karacalc/internal/progress"
)

// testLogger discards everything; it implements logging.Logger.
type testLogger struct{}

func newTestLogger() *testLogger                                  { return &testLogger{} }
func (l *testLogger) Info(_ string, _ ...logging.Field)           {}
func (l *testLogger) Error(_ string, _ error, _ ...logging.Field) {}
func (l *testLogger) Debug(_ string, _ ...logging.Field)          {}
func (l *testLogger) Printf(_ string, _ ...any)                   {}
func (l *testLogger) Println(_ ...any)                            {}

// blockingCore never finishes before its context is done.
type blockingCore struct{}

func (blockingCore) Name() string { return "Blocking" }

func (blockingCore) CalculateCore(ctx context.Context, _ progress.ProgressCallback, _, _ bigint.Int, _ karatsuba.Options) (bigint.Int, error) {
	<-ctx.Done()
	return bigint.Int{}, ctx.Err()
}

type multiplyBody struct {
	X          string         `json:"x"`
	Y          string         `json:"y"`
	Product    string         `json:"product"`
	Digits     int            `json:"digits"`
	Algorithm  string         `json:"algorithm"`
	DurationMS float64        `json:"duration_ms"`
	RequestID  string         `json:"request_id"`
	Stats      *StatsResponse `json:"stats"`
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	factory := karatsuba.NewDefaultFactory()
	require.NoError(t, factory.Register("blocking", blockingCore{}))
	s := NewServer(factory, cfg, WithLogger(newTestLogger()), WithMetrics(metrics.NewMetrics()))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestMultiply_Success(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{})

	resp, body := get(t, ts.URL+"/multiply?x=12345678&y=87654321")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got multiplyBody
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "12345678", got.X)
	assert.Equal(t, "87654321", got.Y)
	assert.Equal(t, "1082152022374638", got.Product)
	assert.Equal(t, 16, got.Digits)
	assert.Equal(t, "Karatsuba", got.Algorithm)
	assert.GreaterOrEqual(t, got.DurationMS, 0.0)
	require.NotNil(t, got.Stats)
	assert.Positive(t, got.Stats.SplitNodes)
	assert.Equal(t, resp.Header.Get(RequestIDHeader), got.RequestID)
	_, err := uuid.Parse(got.RequestID)
	assert.NoError(t, err)
}

func TestMultiply_Algorithms(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{})

	x := "123456789012345678998979797979"
	y := "987654321098765432197897897897897"
	want := bigint.MulSchoolbook(bigint.MustParse(x), bigint.MustParse(y)).String()

	for algo, name := range map[string]string{
		"karatsuba":  "Karatsuba",
		"schoolbook": "Schoolbook",
		"mathbig":    "math/big",
		"Karatsuba":  "Karatsuba",
	} {
		t.Run(algo, func(t *testing.T) {
			t.Parallel()
			resp, body := get(t, ts.URL+"/multiply?x="+x+"&y="+y+"&algo="+algo)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			var got multiplyBody
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, want, got.Product)
			assert.Equal(t, name, got.Algorithm)
		})
	}
}

func TestMultiply_CanonicalOperands(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{})

	resp, body := get(t, ts.URL+"/multiply?x=0007&y=1_000")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var got multiplyBody
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "7", got.X)
	assert.Equal(t, "1000", got.Y)
	assert.Equal(t, "7000", got.Product)
}

func TestMultiply_BadRequests(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{Security: SecurityConfig{MaxDigits: 10}})

	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"missing both", "", "x is required; y is required"},
		{"missing y", "x=1", "y is required"},
		{"invalid literal", "x=12a&y=3", "x is not a decimal integer"},
		{"negative", "x=4&y=-5", "y must be non-negative"},
		{"oversized", "x=12345678901&y=2", "x exceeds 10 digits"},
		{"unknown algorithm", "x=1&y=2&algo=fft", `unknown algorithm "fft"`},
		{"malformed algorithm", "x=1&y=2&algo=a-b", "algo failed alphanum validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, body := get(t, ts.URL+"/multiply?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var got ErrorResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Contains(t, got.Error, tt.wantErr)
			assert.Equal(t, resp.Header.Get(RequestIDHeader), got.RequestID)
		})
	}
}

func TestMultiply_Timeout(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{RequestTimeout: 20 * time.Millisecond})

	resp, body := get(t, ts.URL+"/multiply?x=2&y=3&algo=blocking")
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	var got ErrorResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Contains(t, got.Error, "exceeded")
}

func TestMultiply_TimeoutReferenceAlgorithm(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{RequestTimeout: 20 * time.Millisecond})

	operand := strings.Repeat("9", 200_000)
	start := time.Now()
	resp, body := get(t, ts.URL+"/multiply?algo=schoolbook&x="+operand+"&y="+operand)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode, string(body))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestMultiply_ShuttingDown(t *testing.T) {
	t.Parallel()
	s, ts := newTestServer(t, Config{})
	s.shuttingDown.Store(true)

	resp, _ := get(t, ts.URL+"/multiply?x=2&y=3")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "shutting_down")
}

func TestRequestID_Propagation(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{})

	id := uuid.NewString()
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/multiply?x=6&y=7", http.NoBody)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var got multiplyBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, id, got.RequestID)
	assert.Equal(t, "42", got.Product)

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.NotEqual(t, "not-a-uuid", resp2.Header.Get(RequestIDHeader))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{})

	resp, body := get(t, ts.URL+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got HealthResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "ok", got.Status)
	assert.Contains(t, got.Algorithms, "karatsuba")
	assert.Contains(t, got.Algorithms, "blocking")
	assert.NotEmpty(t, got.Uptime)
}

func TestRouting(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{})

	resp, body := get(t, ts.URL+"/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "no such endpoint")

	resp, err := http.Post(ts.URL+"/multiply?x=1&y=2", "text/plain", http.NoBody)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/multiply", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint_RecordsTraffic(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, Config{})

	get(t, ts.URL+"/multiply?x=12&y=34")
	get(t, ts.URL+"/multiply?x=oops&y=34")

	resp, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, `karacalc_multiplications_total{algorithm="Karatsuba",result="success"} 1`)
	assert.Contains(t, text, `karacalc_requests_total{path="/multiply",status="200"} 1`)
	assert.Contains(t, text, `karacalc_requests_total{path="/multiply",status="400"} 1`)
}

func TestListenAndServe_GracefulShutdown(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := NewServer(karatsuba.NewDefaultFactory(), Config{Addr: addr, ShutdownTimeout: time.Second},
		WithLogger(newTestLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancellation")
	}
}

func TestListenAndServe_InvalidAddress(t *testing.T) {
	t.Parallel()
	s := NewServer(karatsuba.NewDefaultFactory(), Config{Addr: "127.0.0.1:-1"}, WithLogger(newTestLogger()))
	err := s.ListenAndServe(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "server:"), err.Error())
}

func TestNewServer_Defaults(t *testing.T) {
	t.Parallel()
	s := NewServer(karatsuba.NewDefaultFactory(), Config{Addr: ":0"}, WithLogger(newTestLogger()))
	assert.Equal(t, "karatsuba", s.cfg.DefaultAlgo)
	assert.Equal(t, DefaultRequestTimeout, s.cfg.RequestTimeout)
	assert.Equal(t, DefaultShutdownTimeout, s.cfg.ShutdownTimeout)
	assert.Equal(t, DefaultMaxDigits, s.cfg.Security.MaxDigits)
	assert.NotNil(t, s.metrics)
}

func TestNewServer_PartialSecurityKeepsCORS(t *testing.T) {
	t.Parallel()
	s, ts := newTestServer(t, Config{Security: SecurityConfig{MaxDigits: 10}})
	assert.Equal(t, 10, s.cfg.Security.MaxDigits)
	assert.True(t, s.cfg.Security.EnableCORS)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/multiply", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = get(t, ts.URL+"/multiply?x=12345678901&y=2")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNewServer_ExplicitCORSKept(t *testing.T) {
	t.Parallel()
	cfg := Config{Security: SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.test"}}}
	s := NewServer(karatsuba.NewDefaultFactory(), cfg, WithLogger(newTestLogger()))
	assert.Equal(t, []string{"http://a.test"}, s.cfg.Security.AllowedOrigins)
	assert.Equal(t, DefaultMaxDigits, s.cfg.Security.MaxDigits)
}

func TestValidate_LiteralTag(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validate.Struct(multiplyQuery{X: "1_000", Y: "+7"}))
	assert.Error(t, validate.Struct(multiplyQuery{X: "1.5", Y: "7"}))
	assert.Error(t, validate.Struct(multiplyQuery{X: "12", Y: "0x10"}))
	assert.Error(t, validate.Struct(multiplyQuery{X: "12", Y: "7", Algo: "toom-3"}))
}

func TestIsLiteral(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]bool{
		"0":     true,
		"1_000": true,
		"+12":   true,
		"-12":   true,
		"":      false,
		"-":     false,
		"_":     false,
		"1.5":   false,
		" 1":    false,
		"0x10":  false,
	} {
		assert.Equal(t, want, isLiteral(in), in)
	}
}
