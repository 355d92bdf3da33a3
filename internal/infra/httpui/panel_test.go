package httpui_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"voice-chat/internal/application"
	"voice-chat/internal/domain"
	"voice-chat/internal/infra/httpui"
)

type mockController struct {
	mu      sync.Mutex
	state   domain.State
	toggles int
	texts   []string
}

func (m *mockController) State() domain.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockController) Toggle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggles++
}

func (m *mockController) SubmitText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
}

func newPanel(token string, ctrl httpui.Controller) *httpui.Panel {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpui.NewPanel(httpui.Config{Addr: ":0", AuthToken: token}, ctrl, logger)
}

func TestPanel_State(t *testing.T) {
	ctrl := &mockController{state: domain.State{Transcript: "hello", Loading: true}}
	handler := newPanel("", ctrl).Handler()

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code: got %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		State domain.State     `json:"state"`
		View  application.View `json:"view"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if body.State.Transcript != "hello" || !body.State.Loading {
		t.Errorf("state: got %+v", body.State)
	}
	if body.View.Button.Label != application.LabelStart || !body.View.Button.Disabled {
		t.Errorf("button: got %+v", body.View.Button)
	}
	if len(body.View.Sections) != 1 || body.View.Sections[0].Title != "You said:" {
		t.Errorf("sections: got %+v", body.View.Sections)
	}
}

func TestPanel_ToggleAndText(t *testing.T) {
	ctrl := &mockController{}
	handler := newPanel("", ctrl).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/toggle", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("toggle status: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/text", bytes.NewReader([]byte("  what is a verb?  "))))
	if rec.Code != http.StatusAccepted {
		t.Errorf("text status: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/text", bytes.NewReader(nil)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty text status: got %d", rec.Code)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.toggles != 1 {
		t.Errorf("toggles: got %d, want 1", ctrl.toggles)
	}
	if len(ctrl.texts) != 1 || ctrl.texts[0] != "what is a verb?" {
		t.Errorf("texts: got %q", ctrl.texts)
	}
}

func TestPanel_Token(t *testing.T) {
	authToken := "test-secret-token-123"

	tests := []struct {
		name       string
		token      string
		method     string
		wantStatus int
	}{
		{
			name:       "valid token in header",
			token:      authToken,
			method:     "header",
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "valid token in query",
			token:      authToken,
			method:     "query",
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "invalid token",
			token:      "wrong-token",
			method:     "header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing token",
			token:      "",
			method:     "header",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newPanel(authToken, &mockController{}).Handler()

			var req *http.Request
			if tt.method == "query" {
				req = httptest.NewRequest(http.MethodPost, "/toggle?token="+tt.token, nil)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/toggle", nil)
				if tt.token != "" {
					req.Header.Set("X-Auth-Token", tt.token)
				}
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status code: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	// Reads stay open without a token.
	handler := newPanel(authToken, &mockController{}).Handler()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/state", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("state without token: got %d", rec.Code)
	}
}

func TestPanel_RateLimit(t *testing.T) {
	handler := newPanel("", &mockController{}).Handler()

	var last int
	for i := 0; i < 31; i++ {
		req := httptest.NewRequest(http.MethodPost, "/toggle", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("31st request: got %d, want %d", last, http.StatusTooManyRequests)
	}

	req := httptest.NewRequest(http.MethodPost, "/toggle", nil)
	req.RemoteAddr = "10.0.0.8:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Errorf("other client: got %d", rec.Code)
	}
}

func TestPanel_RateLimitIgnoresSpoofedForwarding(t *testing.T) {
	handler := newPanel("", &mockController{}).Handler()

	var last int
	for i := 0; i < 31; i++ {
		req := httptest.NewRequest(http.MethodPost, "/toggle", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("rotating X-Forwarded-For should not bypass the limit, got %d", last)
	}
}

func TestPanel_RateLimitBehindProxy(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := httpui.NewPanel(httpui.Config{Addr: ":0", TrustProxy: true}, &mockController{}, logger).Handler()

	for i := 0; i < 31; i++ {
		req := httptest.NewRequest(http.MethodPost, "/toggle", nil)
		req.RemoteAddr = "127.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d, 127.0.0.1", i))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("request %d: got %d, each forwarded client has its own bucket", i, rec.Code)
		}
	}
}

func TestPanel_TextTooLong(t *testing.T) {
	ctrl := &mockController{}
	handler := newPanel("", ctrl).Handler()

	body := strings.Repeat("é", 3000)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/text", strings.NewReader(body)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.texts) != 0 {
		t.Errorf("truncated text should not be submitted, got %d texts", len(ctrl.texts))
	}
}

func TestPanel_Health(t *testing.T) {
	panel := newPanel("", &mockController{})
	handler := panel.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before start: got %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := panel.Start(ctx); err != nil {
		t.Fatalf("starting panel: %v", err)
	}
	defer panel.Stop()

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("after start: got %d", rec.Code)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := httpui.NewRateLimiter(2, time.Minute, false)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own bucket")
	}
}
