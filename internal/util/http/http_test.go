package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, UserAgentName+"/") {
				http.Error(w, "bad user agent "+ua, http.StatusBadRequest)
				return
			}
			if r.Header.Get("X-Test") != "yes" {
				http.Error(w, "missing header", http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte("image bytes"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		path    string
		opts    FetchOptions
		want    string
		wantErr string
	}{
		{name: "ok", path: "/ok", opts: FetchOptions{Headers: map[string]string{"X-Test": "yes"}}, want: "image bytes"},
		{name: "not found", path: "/missing", wantErr: "HTTP 404"},
		{name: "too large", path: "/big", opts: FetchOptions{MaxBytes: 10}, wantErr: "exceeds 10 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Fetch(context.Background(), srv.URL+tt.path, tt.opts)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Fetch() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Fetch() = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fetch(ctx, "http://127.0.0.1:1/never", FetchOptions{}); err == nil {
		t.Errorf("Fetch() with cancelled context expected error")
	}
}
