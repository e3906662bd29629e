package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/utils/errutil"
	"github.com/anglerlab/finbot/pkg/utils/logging"
	"github.com/anglerlab/finbot/pkg/utils/safe"
)

// maxQueryBytes bounds the request body to keep oracle prompts sane
const maxQueryBytes = 16 * 1024

// AskUseCase is the pipeline surface the server needs
type AskUseCase interface {
	Ask(ctx context.Context, query string) *model.GroundedAnswer
}

type Server struct {
	router *chi.Mux
	askUC  AskUseCase
}

type Options func(*Server)

func New(askUC AskUseCase, opts ...Options) (*Server, error) {
	if askUC == nil {
		return nil, goerr.New("ask usecase is required")
	}

	r := chi.NewRouter()

	s := &Server{
		router: r,
		askUC:  askUC,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", askHandler(s.askUC))
		r.Get("/health", healthHandler)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type askRequest struct {
	Query string `json:"query"`
}

type citationResponse struct {
	Kind    string `json:"kind"`
	Source  string `json:"source,omitempty"`
	Section string `json:"section,omitempty"`
	Tool    string `json:"tool,omitempty"`
	Label   string `json:"label"`
}

type askResponse struct {
	ID        string             `json:"id"`
	Query     string             `json:"query"`
	Answer    string             `json:"answer"`
	Citations []citationResponse `json:"citations"`
	NoContent bool               `json:"no_content"`
	Degraded  bool               `json:"degraded"`
	CreatedAt time.Time          `json:"created_at"`
}

// askHandler answers one question per request. The pipeline never returns an
// error; transport concerns are the only failure mode here.
func askHandler(askUC AskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		body := http.MaxBytesReader(w, r.Body, maxQueryBytes)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to decode ask request"), http.StatusBadRequest)
			return
		}

		answer := askUC.Ask(r.Context(), req.Query)

		resp := askResponse{
			ID:        string(answer.ID),
			Query:     answer.Query,
			Answer:    answer.Answer,
			Citations: make([]citationResponse, len(answer.Citations)),
			NoContent: answer.NoContent,
			Degraded:  answer.Degraded,
			CreatedAt: answer.CreatedAt,
		}
		for i, c := range answer.Citations {
			resp.Citations[i] = citationResponse{
				Kind:    string(c.Kind),
				Source:  c.Source,
				Section: string(c.Section),
				Tool:    string(c.Tool),
				Label:   c.Label(),
			}
		}

		data, err := json.Marshal(resp)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal ask response"), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		safe.Write(r.Context(), w, data)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, []byte(`{"status":"ok"}`))
}
