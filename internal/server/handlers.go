package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/logging"
	"github.com/agbru/karacalc/internal/sysmon"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("literal", func(fl validator.FieldLevel) bool {
		return isLiteral(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("server: registering literal validation: %v", err))
	}
	return v
}

// isLiteral reports whether s looks like a signed decimal literal. Range
// and sign are checked by bigint.Parse.
func isLiteral(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "+"), "-")
	digits := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '_':
		default:
			return false
		}
	}
	return digits > 0
}

// multiplyQuery is the query string of GET /multiply.
type multiplyQuery struct {
	X    string `validate:"required,literal"`
	Y    string `validate:"required,literal"`
	Algo string `validate:"omitempty,max=32,alphanum"`
}

// StatsResponse is the recursion summary of a Karatsuba run.
type StatsResponse struct {
	SplitNodes     int64 `json:"split_nodes"`
	BaseCases      int64 `json:"base_cases"`
	MaxDepth       int   `json:"max_depth"`
	ParallelSpawns int64 `json:"parallel_spawns"`
}

// MultiplyResponse is the body of a successful GET /multiply. Integers are
// encoded as JSON strings.
type MultiplyResponse struct {
	X          bigint.Int     `json:"x"`
	Y          bigint.Int     `json:"y"`
	Product    bigint.Int     `json:"product"`
	Digits     int            `json:"digits"`
	Algorithm  string         `json:"algorithm"`
	DurationMS float64        `json:"duration_ms"`
	RequestID  string         `json:"request_id"`
	Stats      *StatsResponse `json:"stats,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string   `json:"status"`
	Uptime     string   `json:"uptime"`
	Algorithms []string `json:"algorithms"`
	CPUPercent float64  `json:"cpu_percent"`
	MemPercent float64  `json:"mem_percent"`
}

func (s *Server) handleMultiply(w http.ResponseWriter, r *http.Request) {
	if s.shuttingDown.Load() {
		s.writeError(w, r, http.StatusServiceUnavailable, "server is shutting down")
		return
	}

	ctx, span := tracer.Start(r.Context(), "GET /multiply")
	defer span.End()

	q := multiplyQuery{
		X:    r.URL.Query().Get("x"),
		Y:    r.URL.Query().Get("y"),
		Algo: r.URL.Query().Get("algo"),
	}
	if err := validate.Struct(q); err != nil {
		s.writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	x, err := s.parseOperand("x", q.X)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	y, err := s.parseOperand("y", q.Y)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	algo := q.Algo
	if algo == "" {
		algo = s.cfg.DefaultAlgo
	}
	calc, err := s.factory.Get(algo)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest,
			fmt.Sprintf("unknown algorithm %q (available: %s)", algo, strings.Join(s.factory.List(), ", ")))
		return
	}
	span.SetAttributes(
		attribute.String("karacalc.algorithm", algo),
		attribute.Int("karacalc.x_digits", x.DigitLength()),
		attribute.Int("karacalc.y_digits", y.DigitLength()),
	)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	product, stats, err := s.calculate(ctx, calc, x, y)
	elapsed := time.Since(start)
	s.metrics.ObserveMultiplication(calc.Name(), elapsed, product.DigitLength(), stats, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			s.writeError(w, r, http.StatusGatewayTimeout,
				fmt.Sprintf("calculation exceeded the %s limit", s.cfg.RequestTimeout))
		case errors.Is(err, context.Canceled):
			s.writeError(w, r, http.StatusServiceUnavailable, "calculation canceled")
		default:
			s.logger.Error("multiplication failed", err, logging.String("algorithm", algo))
			s.writeError(w, r, http.StatusInternalServerError, "multiplication failed")
		}
		return
	}

	resp := MultiplyResponse{
		X:          x,
		Y:          y,
		Product:    product,
		Digits:     product.DigitLength(),
		Algorithm:  calc.Name(),
		DurationMS: float64(elapsed.Nanoseconds()) / 1e6,
		RequestID:  RequestIDFromContext(r.Context()),
	}
	if stats != nil {
		resp.Stats = &StatsResponse{
			SplitNodes:     stats.SplitNodes,
			BaseCases:      stats.BaseCases,
			MaxDepth:       stats.MaxDepth,
			ParallelSpawns: stats.ParallelSpawns,
		}
	}
	span.SetAttributes(attribute.Int("karacalc.product_digits", resp.Digits))
	s.writeJSON(w, r, http.StatusOK, resp)
}

// parseOperand parses one operand and enforces the digit limit.
func (s *Server) parseOperand(name, literal string) (bigint.Int, error) {
	limit := s.cfg.Security.MaxDigits
	// Underscores may at most double a literal; anything longer is too big.
	if len(literal) > 2*limit+1 {
		return bigint.Int{}, fmt.Errorf("%s exceeds %d digits", name, limit)
	}
	v, err := bigint.Parse(literal)
	switch {
	case errors.Is(err, bigint.ErrUnsupportedOperand):
		return bigint.Int{}, fmt.Errorf("%s must be non-negative", name)
	case err != nil:
		return bigint.Int{}, fmt.Errorf("%s: %w", name, err)
	}
	if v.DigitLength() > limit {
		return bigint.Int{}, fmt.Errorf("%s exceeds %d digits", name, limit)
	}
	return v, nil
}

// calculate runs calc. Stats is nil unless the algorithm recorded a
// recursion.
func (s *Server) calculate(ctx context.Context, calc karatsuba.Calculator, x, y bigint.Int) (bigint.Int, *karatsuba.Stats, error) {
	if sc, ok := calc.(karatsuba.StatsCalculator); ok {
		product, stats, err := sc.CalculateWithStats(ctx, nil, 0, x, y, s.cfg.Options)
		if err != nil || stats == (karatsuba.Stats{}) {
			return product, nil, err
		}
		return product, &stats, nil
	}
	product, err := calc.Calculate(ctx, nil, 0, x, y, s.cfg.Options)
	return product, nil, err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.shuttingDown.Load() {
		status, code = "shutting_down", http.StatusServiceUnavailable
	}
	load := sysmon.Sample()
	s.writeJSON(w, r, code, HealthResponse{
		Status:     status,
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Algorithms: s.factory.List(),
		CPUPercent: load.CPUPercent,
		MemPercent: load.MemPercent,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", err,
			logging.String("request_id", RequestIDFromContext(r.Context())))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, ErrorResponse{
		Error:     msg,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// validationMessage renders validator errors as "x: required".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "literal":
			msgs = append(msgs, field+" is not a decimal integer")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
