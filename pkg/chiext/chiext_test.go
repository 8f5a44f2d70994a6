package chiext

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestStaticEmbedFS(t *testing.T) {
	fsys := fstest.MapFS{
		"web/index.html":     {Data: []byte("index")},
		"web/assets/app.js":  {Data: []byte("js")},
		"web/assets/app.css": {Data: []byte("css")},
	}
	static, err := StaticEmbedFS(StaticFSConfig{
		FileSystem: fsys,
		Root:       "web",
		Fallback:   func(r *http.Request) bool { return strings.HasPrefix(r.URL.Path, "/app/") },
	})
	if err != nil {
		t.Fatal(err)
	}
	handler := static(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("next"))
	}))

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/", "index"},
		{http.MethodGet, "/index.html", "index"},
		{http.MethodGet, "/assets/app.js", "js"},
		{http.MethodGet, "/app/deep/link", "index"},
		{http.MethodGet, "/api/state", "next"},
		{http.MethodPost, "/", "next"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStaticEmbedFSBadRoot(t *testing.T) {
	if _, err := StaticEmbedFS(StaticFSConfig{FileSystem: fstest.MapFS{}, Root: "missing"}); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	if buf.Len() != 0 {
		t.Errorf("logged a successful request at warn: %s", buf.String())
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	if !strings.Contains(buf.String(), "status=422") {
		t.Errorf("log = %q, want status=422", buf.String())
	}
}
