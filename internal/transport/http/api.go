package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"trivia-contest-service/internal/app"
	"trivia-contest-service/internal/domain"
)

// ActiveSource answers "what is active now"; either the directory itself or
// a Redis cache wrapped around it.
type ActiveSource interface {
	GetActive(ctx context.Context) (domain.Question, bool, error)
}

// Handler wires the contest services into the polling JSON API.
type Handler struct {
	directory  *app.Directory
	ledger     *app.Ledger
	registry   *app.Registry
	gate       *app.RevealGate
	active     ActiveSource
	adminToken string
	invalidate func(context.Context)
	upgrader   websocket.Upgrader
	now        func() time.Time
}

// Option tweaks optional handler wiring.
type Option func(*Handler)

// WithActiveSource routes active-question reads through a cache.
func WithActiveSource(src ActiveSource, invalidate func(context.Context)) Option {
	return func(h *Handler) {
		h.active = src
		h.invalidate = invalidate
	}
}

func NewHandler(directory *app.Directory, ledger *app.Ledger, registry *app.Registry, gate *app.RevealGate, adminToken string, opts ...Option) *Handler {
	h := &Handler{
		directory:  directory,
		ledger:     ledger,
		registry:   registry,
		gate:       gate,
		active:     directory,
		adminToken: adminToken,
		invalidate: func(context.Context) {},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the HTTP mux.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("POST /api/heartbeat", h.heartbeat)
	mux.HandleFunc("POST /api/logout", h.logout)
	mux.HandleFunc("GET /api/questions/active", h.activeQuestion)
	mux.HandleFunc("GET /api/schedule", h.schedule)
	mux.HandleFunc("POST /api/submissions", h.submit)
	mux.HandleFunc("GET /api/submissions/own", h.ownSubmission)
	mux.HandleFunc("POST /api/submissions/{id}/viewed", h.markViewed)
	mux.HandleFunc("GET /api/settings", h.settings)

	mux.HandleFunc("POST /api/admin/questions", h.requireAdmin(h.createQuestion))
	mux.HandleFunc("POST /api/admin/questions/{id}/force-end", h.requireAdmin(h.forceEnd))
	mux.HandleFunc("PUT /api/admin/questions/{id}/window", h.requireAdmin(h.updateWindow))
	mux.HandleFunc("GET /api/admin/questions", h.requireAdmin(h.adminQuestions))
	mux.HandleFunc("GET /api/admin/submissions", h.requireAdmin(h.adminSubmissions))
	mux.HandleFunc("GET /api/admin/winner", h.requireAdmin(h.adminWinner))
	mux.HandleFunc("POST /api/admin/reveal", h.requireAdmin(h.toggleReveal))
	mux.HandleFunc("GET /api/admin/feed", h.requireAdmin(h.submissionFeed))
	return mux
}

// requireAdmin gates operator endpoints behind the static shared secret.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			// websocket clients cannot set headers from browsers
			token = r.URL.Query().Get("token")
		}
		if h.adminToken == "" || token != h.adminToken {
			writeJSONError(w, http.StatusUnauthorized, "admin token required")
			return
		}
		next(w, r)
	}
}
