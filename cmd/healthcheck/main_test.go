package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: "127.0.0.1:8080"},
		{raw: "garbage", want: "127.0.0.1:8080"},
		{raw: ":9090", want: "127.0.0.1:9090"},
		{raw: "0.0.0.0:8080", want: "127.0.0.1:8080"},
		{raw: "[::]:8080", want: "[::1]:8080"},
		{raw: "10.0.0.5:8080", want: "10.0.0.5:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddr(tt.raw))
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   int
	}{
		{name: "ok", status: http.StatusOK, body: `{"status":"ok"}`, want: 0},
		{name: "unauthenticated still serving", status: http.StatusOK, body: `{"status":"unauthenticated"}`, want: 0},
		{name: "unavailable", status: http.StatusServiceUnavailable, body: `{"error":"health unavailable"}`, want: 1},
		{name: "malformed", status: http.StatusOK, body: `<html>`, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/health", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			var stderr bytes.Buffer
			got := check(context.Background(), srv.Client(), srv.URL, &stderr)
			assert.Equal(t, tt.want, got)
			if tt.want != 0 {
				assert.NotEmpty(t, stderr.String())
			}
		})
	}
}

func TestCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var stderr bytes.Buffer
	assert.Equal(t, 1, check(context.Background(), http.DefaultClient, url, &stderr))
}
