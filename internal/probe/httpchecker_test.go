package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPChecker_StatusOK(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	chk := NewHTTPChecker(ClientConfig{Timeout: 2 * time.Second})
	out := chk.Check(context.Background(), s.URL)
	if !out.Success {
		t.Fatalf("want success, got %+v", out)
	}
	if out.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", out.StatusCode)
	}
	if out.Message != "" {
		t.Fatalf("want empty message on success, got %q", out.Message)
	}
	if out.LatencyMS < 0 {
		t.Fatalf("latency should be >= 0, got %f", out.LatencyMS)
	}
}

func TestHTTPChecker_SendsUserAgent(t *testing.T) {
	var got string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(204)
	}))
	defer s.Close()

	chk := NewHTTPChecker(ClientConfig{UserAgent: "sitewatch-test/1.0", Timeout: 2 * time.Second})
	out := chk.Check(context.Background(), s.URL)
	if !out.Success {
		t.Fatalf("want success, got %+v", out)
	}
	if got != "sitewatch-test/1.0" {
		t.Fatalf("want configured user agent, got %q", got)
	}
}

func TestHTTPChecker_Status500(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", 500)
	}))
	defer s.Close()

	chk := NewHTTPChecker(ClientConfig{Timeout: 2 * time.Second})
	out := chk.Check(context.Background(), s.URL)
	if out.Success {
		t.Fatalf("want failure, got %+v", out)
	}
	if out.StatusCode != 500 {
		t.Fatalf("want status 500, got %d", out.StatusCode)
	}
	if !strings.HasPrefix(out.Message, "500") {
		t.Fatalf("want message to start with 500, got %q", out.Message)
	}
}

func TestHTTPChecker_RedirectFollowed(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(ClientConfig{Timeout: 2 * time.Second})
	out := chk.Check(context.Background(), s.URL+"/old")
	if !out.Success || out.StatusCode != 200 {
		t.Fatalf("want redirect to resolve to 200, got %+v", out)
	}
}

func TestHTTPChecker_TimeoutSetsStatusZero(t *testing.T) {
	// Server sleeps longer than client timeout
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	chk := NewHTTPChecker(ClientConfig{Timeout: 50 * time.Millisecond})
	out := chk.Check(context.Background(), s.URL)
	if out.Success {
		t.Fatalf("want failure due to timeout, got %+v", out)
	}
	if out.StatusCode != 0 {
		t.Fatalf("want status 0 on transport error, got %d", out.StatusCode)
	}
	if out.Message == "" {
		t.Fatalf("want non-empty error message")
	}
}

func TestHTTPChecker_ConnectionRefused(t *testing.T) {
	// grab a free port and close it so nothing is listening
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	chk := NewHTTPChecker(ClientConfig{Timeout: time.Second})
	out := chk.Check(context.Background(), "http://"+addr)
	if out.Success {
		t.Fatalf("want failure, got %+v", out)
	}
	if strings.Contains(out.Message, "http://"+addr) {
		t.Fatalf("want bare reason without request prefix, got %q", out.Message)
	}
}

func TestHTTPChecker_InvalidURL(t *testing.T) {
	chk := NewHTTPChecker(ClientConfig{})
	out := chk.Check(context.Background(), "://nope")
	if out.Success || out.Message == "" {
		t.Fatalf("want failure with reason, got %+v", out)
	}
}

func TestNewHTTPChecker_DefaultTimeout(t *testing.T) {
	chk := NewHTTPChecker(ClientConfig{})
	if chk.Client.Timeout != defaultTimeout {
		t.Fatalf("want default timeout %v, got %v", defaultTimeout, chk.Client.Timeout)
	}
}
