package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goodpapers/backend/internal/logger"
)

func TestUserFromPath(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/users/{userId}", func(r chi.Router) {
		r.Use(UserFromPath)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetUserID(r.Context())
			if !ok || id != 7 {
				t.Errorf("GetUserID() = %d, %v", id, ok)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	tests := []struct {
		path string
		want int
	}{
		{"/users/7", http.StatusNoContent},
		{"/users/abc", http.StatusBadRequest},
		{"/users/0", http.StatusBadRequest},
		{"/users/-3", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(log))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("OK")) })
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	if entries[0].Level != zap.InfoLevel || entries[1].Level != zap.ErrorLevel {
		t.Errorf("levels = %v, %v", entries[0].Level, entries[1].Level)
	}
	fields := entries[1].ContextMap()
	if fields["status"] != int64(500) || fields["path"] != "/boom" {
		t.Errorf("fields = %v", fields)
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Error("request_id missing")
	}
}
