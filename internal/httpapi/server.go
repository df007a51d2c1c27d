package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/tenonchecker/internal/httpapi/middleware"
	"github.com/hamed0406/tenonchecker/internal/tenon"
)

type Server struct {
	Logger  *zap.Logger
	Checker tenon.Checker
}

func NewServer(l *zap.Logger, c tenon.Checker) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Checker: c}
}

// Router wires the relay routes. An empty allowedOrigins allows any origin;
// empty keys disables auth.
func (s *Server) Router(keys []string, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key", apimw.RequestIDHeader},
			ExposedHeaders: []string{apimw.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	r.Use(apimw.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/check", func(r chi.Router) {
		r.Use(apimw.RequireKey(keys))
		r.Post("/", s.handleCheck(tenon.KindAuto))
		r.Post("/url", s.handleCheck(tenon.KindURL))
		r.Post("/src", s.handleCheck(tenon.KindSrc))
		r.Post("/fragment", s.handleCheck(tenon.KindFragment))
	})

	return r
}

type checkPayload struct {
	Target  string        `json:"target"`
	Options tenon.Options `json:"options"`
}

func (s *Server) handleCheck(kind tenon.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p checkPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad payload"})
			return
		}

		res, err := s.run(r.Context(), kind, p)
		reqID := apimw.GetRequestID(r.Context())
		if err != nil {
			status := statusFor(err)
			s.Logger.Info("check_failed",
				zap.String("request_id", reqID),
				zap.String("kind", kind.String()),
				zap.Int("status", status),
				zap.Error(err),
			)
			body := map[string]any{"error": err.Error()}
			var se *tenon.ServiceError
			if errors.As(err, &se) {
				body["status"] = se.Status
			}
			writeJSON(w, status, body)
			return
		}

		s.Logger.Info("check_done",
			zap.String("request_id", reqID),
			zap.String("kind", kind.String()),
			zap.Int("tenon_status", res.Status()),
		)
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) run(ctx context.Context, kind tenon.Kind, p checkPayload) (tenon.Result, error) {
	opts := p.Options
	if opts == nil {
		opts = tenon.Options{}
	}
	switch kind {
	case tenon.KindURL:
		return s.Checker.CheckURLWithOptions(ctx, p.Target, opts)
	case tenon.KindSrc:
		return s.Checker.CheckSrcWithOptions(ctx, p.Target, opts)
	case tenon.KindFragment:
		return s.Checker.CheckFragmentWithOptions(ctx, p.Target, opts)
	default:
		return s.Checker.AnalyzeWithOptions(ctx, p.Target, opts)
	}
}

func statusFor(err error) int {
	var (
		se *tenon.ServiceError
		de *tenon.DecodeError
		te *tenon.TransportError
	)
	switch {
	case errors.Is(err, tenon.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &se):
		return http.StatusUnprocessableEntity
	case errors.As(err, &de), errors.As(err, &te):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
