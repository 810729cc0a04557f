package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/stater"
	"github.com/aretw0/stater/internal/logging"
	"github.com/aretw0/stater/internal/presentation/graph"
	"github.com/aretw0/stater/pkg/adapters/telegram"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/aretw0/stater/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

// maxBodySize caps request bodies. Updates are small.
const maxBodySize = 1 << 20

// Config wires the server to a router.
type Config struct {
	Router *stater.Router
	// Sessions serializes updates per conversation and holds the state store.
	Sessions *session.Manager
	// Streams receives dispatch events for GET /events. Register Streams.Hooks on the router.
	Streams *StreamManager
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server implements the generated ServerInterface over a router: webhooks in, introspection out.
type Server struct {
	router   *stater.Router
	sessions *session.Manager
	streams  *StreamManager
	logger   *slog.Logger
}

var _ ServerInterface = (*Server)(nil)

// NewHandler creates the HTTP handler for cfg. Routes follow api/openapi.yaml,
// which is served at GET /openapi.yaml and browsable at GET /swagger.
func NewHandler(cfg Config) http.Handler {
	s := &Server{
		router:   cfg.Router,
		sessions: cfg.Sessions,
		streams:  cfg.Streams,
		logger:   cfg.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.streams == nil {
		s.streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			s.logger.Error("Failed to load OpenAPI spec", "err", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML)
	})
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return HandlerWithOptions(s, ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			s.logger.Warn("invalid request parameters", "path", r.URL.Path, "err", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
		},
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Stater API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Health{Status: "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Info{App: "stater-http", Version: stater.Version})
}

// GetRoutes handles the GET /routes request.
func (s *Server) GetRoutes(w http.ResponseWriter, r *http.Request) {
	handlers := s.router.Handlers()
	resp := RoutesResponse{Stats: s.router.Stats(), Handlers: make([]HandlerInfo, len(handlers))}
	for i, h := range handlers {
		resp.Handlers[i] = HandlerInfo{
			Name:     h.Name(),
			Origin:   h.Origin(),
			Trigger:  h.Trigger().String(),
			Priority: i,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(s.router.Table(), nil))
}

// Explain handles the POST /explain request.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	var body ExplainJSONRequestBody
	if err := decode(r, &body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Explain: invalid request body", "err", err)
		return
	}
	state := domain.DefaultState
	if body.State != nil {
		state = domain.StateID(*body.State)
	}
	body.Update.NormalizeCommand()
	s.writeJSON(w, http.StatusOK, s.router.Explain(&body.Update, state))
}

// PostUpdate handles the POST /updates request.
func (s *Server) PostUpdate(w http.ResponseWriter, r *http.Request) {
	var u PostUpdateJSONRequestBody
	if err := decode(r, &u); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostUpdate: invalid request body", "err", err)
		return
	}
	u.NormalizeCommand()
	s.dispatch(w, r, &u)
}

// PostTelegram handles the POST /telegram webhook request.
// Update kinds stater does not route are acknowledged and dropped, so Telegram stops retrying them.
func (s *Server) PostTelegram(w http.ResponseWriter, r *http.Request) {
	var tu PostTelegramJSONRequestBody
	if err := decode(r, &tu); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostTelegram: invalid request body", "err", err)
		return
	}
	u, err := telegram.Normalize(tu)
	if errors.Is(err, telegram.ErrUnsupportedUpdate) {
		s.logger.Debug("PostTelegram: update dropped", "update_id", tu.UpdateID)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, &u)
}

// dispatch runs u under its conversation lock. Handler failures are reported in
// the body with status 200: the update was consumed and must not be redelivered.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, u *domain.Update) {
	out, err := s.sessions.Dispatch(r.Context(), s.router, u)
	resp := DispatchResponse{
		Handler:  out.Handler,
		Fallback: out.Fallback,
		State:    string(out.State),
	}
	if out.Origin != "" {
		resp.Origin = &out.Origin
	}
	if err != nil {
		msg := err.Error()
		resp.Error = &msg
		if errors.Is(err, stater.ErrMalformedUpdate) {
			s.writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	var chatID int64
	if params.ChatId != nil {
		chatID = *params.ChatId
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(chatID)
	defer cancel()

	io.WriteString(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "chat_id", chatID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			io.WriteString(w, "data: "+msg+"\n\n")
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}

