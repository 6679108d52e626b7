// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/quill/internal/config"
)

var _ suture.Service = (*HTTPServerService)(nil)

// stubServer fails fast: ListenAndServe returns listenErr, or blocks until
// Shutdown when listenErr is nil.
type stubServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stopped     chan struct{}
}

func newStubServer(listenErr, shutdownErr error) *stubServer {
	return &stubServer{
		listenErr:   listenErr,
		shutdownErr: shutdownErr,
		started:     make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

func (s *stubServer) ListenAndServe() error {
	close(s.started)
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.stopped
	return http.ErrServerClosed
}

func (s *stubServer) Shutdown(context.Context) error {
	close(s.stopped)
	return s.shutdownErr
}

// freePort reserves a loopback port and releases it for the server under test.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	return port
}

func opsConfig(port int) *config.ServerConfig {
	return &config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         port,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// getUntilUp polls url until the server answers or the deadline passes.
func getUntilUp(t *testing.T, url string) *http.Response {
	t.Helper()
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := client.Get(url)
		if err == nil {
			return resp
		}
		if time.Now().After(deadline) {
			t.Fatalf("ops server never answered %s: %v", url, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewOpsServerService(t *testing.T) {
	svc := NewOpsServerService(opsConfig(9464), http.NotFoundHandler())

	server, ok := svc.server.(*http.Server)
	if !ok {
		t.Fatalf("server type = %T, want *http.Server", svc.server)
	}
	if server.Addr != "127.0.0.1:9464" {
		t.Errorf("Addr = %q, want 127.0.0.1:9464", server.Addr)
	}
	if server.ReadTimeout != 2*time.Second || server.ReadHeaderTimeout != 2*time.Second {
		t.Errorf("read timeouts = %v/%v, want 2s", server.ReadTimeout, server.ReadHeaderTimeout)
	}
	if server.WriteTimeout != 3*time.Second || svc.shutdownTimeout != 3*time.Second {
		t.Errorf("write/shutdown timeout = %v/%v, want 3s", server.WriteTimeout, svc.shutdownTimeout)
	}
	if svc.String() != "ops-http-server" {
		t.Errorf("String() = %q, want ops-http-server", svc.String())
	}
}

func TestNewHTTPServerService_DefaultShutdownTimeout(t *testing.T) {
	for _, in := range []time.Duration{0, -time.Second} {
		svc := NewHTTPServerService(newStubServer(nil, nil), in)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout(%v) = %v, want 10s", in, svc.shutdownTimeout)
		}
		if svc.String() != "http-server" {
			t.Errorf("String() = %q, want http-server", svc.String())
		}
	}
}

func TestOpsServerService_ServesUnderSupervisor(t *testing.T) {
	port := freePort(t)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "ok")
	})
	svc := NewOpsServerService(opsConfig(port), handler)

	sup := suture.New("ops-test", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := sup.ServeBackground(ctx)

	base := "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	resp := getUntilUp(t, base+"/healthz")
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", resp.StatusCode, body)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop")
	}

	// The listener is released once Serve returns.
	if _, err := (&http.Client{Timeout: 200 * time.Millisecond}).Get(base + "/healthz"); err == nil {
		t.Error("ops server still answering after shutdown")
	}
}

func TestHTTPServerService_ServeDirect(t *testing.T) {
	port := freePort(t)
	svc := NewOpsServerService(opsConfig(port), http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	resp := getUntilUp(t, "http://"+net.JoinHostPort("127.0.0.1", strconv.Itoa(port))+"/")
	_ = resp.Body.Close()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestHTTPServerService_ServeFailures(t *testing.T) {
	errBind := errors.New("bind: address already in use")
	errDrain := errors.New("drain deadline exceeded")

	tests := []struct {
		name    string
		server  *stubServer
		cancel  bool
		wantErr error
	}{
		{"listen fails", newStubServer(errBind, nil), false, errBind},
		{"shutdown fails", newStubServer(nil, errDrain), true, errDrain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewHTTPServerService(tt.server, time.Second)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()
			<-tt.server.started
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Serve() error = %v, want %v", err, tt.wantErr)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return")
			}
		})
	}
}
