// Package httpui serves a small local HTTP panel for driving the voice chat
// controller from a browser, a script or a home automation hook.
package httpui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"voice-chat/internal/application"
	"voice-chat/internal/domain"
)

// Controller is the part of application.Controller the panel drives.
type Controller interface {
	State() domain.State
	Toggle()
	SubmitText(text string)
}

type Panel struct {
	addr        string
	server      *http.Server
	ctrl        Controller
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	rateLimiter *RateLimiter
	authToken   string
}

const maxTextBytes = 4096

// Config configures the panel listener.
type Config struct {
	Addr      string
	AuthToken string

	// TrustProxy keys the rate limiter on X-Forwarded-For and X-Real-IP.
	// Enable it only behind a reverse proxy that sets those headers.
	TrustProxy bool
}

type stateResponse struct {
	State domain.State     `json:"state"`
	View  application.View `json:"view"`
}

func NewPanel(cfg Config, ctrl Controller, logger *slog.Logger) *Panel {
	p := &Panel{
		addr:        cfg.Addr,
		ctrl:        ctrl,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute, cfg.TrustProxy), // 30 requests per minute per IP
		authToken:   cfg.AuthToken,
	}
	p.mux.HandleFunc("GET /state", p.handleState)
	p.mux.HandleFunc("POST /toggle", p.rateLimiter.Middleware(p.requireToken(p.handleToggle)))
	p.mux.HandleFunc("POST /text", p.rateLimiter.Middleware(p.requireToken(p.handleText)))
	p.mux.HandleFunc("GET /health", p.handleHealth)
	return p
}

func (p *Panel) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	p.server = &http.Server{
		Addr:         p.addr,
		Handler:      p.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		p.logger.Info("HTTP panel starting", "addr", p.addr)
		if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			p.logger.Error("HTTP server error", "error", err)
		}
	}()

	p.running = true
	return nil
}

func (p *Panel) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}

	if p.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.server.Shutdown(ctx); err != nil {
			p.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := p.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	p.running = false
	return nil
}

func (p *Panel) Handler() http.Handler {
	return p.mux
}

func (p *Panel) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != p.authToken {
				p.logger.Warn("unauthorized panel request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (p *Panel) handleState(w http.ResponseWriter, r *http.Request) {
	state := p.ctrl.State()
	writeJSON(w, http.StatusOK, stateResponse{State: state, View: application.Render(state)})
}

func (p *Panel) handleToggle(w http.ResponseWriter, r *http.Request) {
	p.ctrl.Toggle()
	p.logger.Debug("toggle via HTTP", "remote_addr", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (p *Panel) handleText(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTextBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "text too long", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	p.ctrl.SubmitText(text)
	p.logger.Info("received text via HTTP", "text", text)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "received", "text": text})
}

func (p *Panel) handleHealth(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{"status": status, "running": running})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
