package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestServer starts an httptest server with the given handler and a
// client pointed at it.
func newTestServer(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestSignup_Success(t *testing.T) {
	var got SignupRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != SignupPath || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})

	err := client.Signup(context.Background(), SignupRequest{Name: "Ana", Email: "ana@x.io", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Ana" || got.Email != "ana@x.io" || got.Password != "secret1" {
		t.Errorf("backend received %+v", got)
	}
}

func TestSignup_RejectionKeepsBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "Email already registered")
	})

	err := client.Signup(context.Background(), SignupRequest{Email: "a@b.co"})
	statusErr := AsStatusError(err)
	if statusErr == nil {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", statusErr.Status)
	}
	if statusErr.Body != "Email already registered" {
		t.Errorf("expected verbatim body, got %q", statusErr.Body)
	}
}

func TestLogin_Success(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"token":"jwt-abc","user":{"name":"Ana"}}`)
	})

	resp, err := client.Login(context.Background(), LoginRequest{Email: "ana@x.io", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "jwt-abc" {
		t.Errorf("expected token jwt-abc, got %q", resp.Token)
	}
	if resp.User == nil || resp.User.Name != "Ana" {
		t.Errorf("expected user name Ana, got %+v", resp.User)
	}
}

func TestLogin_RejectionMessage(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Account locked"}`)
	})

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "pw"})
	statusErr := AsStatusError(err)
	if statusErr == nil {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.Message != "Account locked" {
		t.Errorf("expected server message, got %q", statusErr.Message)
	}
}

func TestCurrentUser_SendsBearer(t *testing.T) {
	var auth string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"username":"ana","email":"ana@x.io","registeredAt":"2024-03-01T10:00:00Z"}`)
	})

	user, err := client.CurrentUser(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer tok" {
		t.Errorf("expected bearer header, got %q", auth)
	}
	if user.Username != "ana" || user.RegisteredAt != "2024-03-01T10:00:00Z" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestCurrentUser_AuthFailure(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.CurrentUser(context.Background(), "tok")
		if !IsAuthFailure(err) {
			t.Errorf("status %d: expected auth failure, got %v", status, err)
		}
	}
}

func TestCurrentUser_NotFoundIsNotAuthFailure(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.CurrentUser(context.Background(), "tok")
	if err == nil || IsAuthFailure(err) {
		t.Fatalf("expected non-auth status error, got %v", err)
	}
}

func TestTransportErrorIsNotStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second)
	_, err := client.PostChat(context.Background(), client.URL(ChatPath), "hi")
	if err == nil {
		t.Fatal("expected transport error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Errorf("transport failure should not be a StatusError")
	}
}

func TestPostChat_ReturnsRawBody(t *testing.T) {
	var got ChatRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, "plain reply")
	})

	body, err := client.PostChat(context.Background(), client.URL(ChatPath), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Message != "hello" {
		t.Errorf("expected message hello, got %q", got.Message)
	}
	if body != "plain reply" {
		t.Errorf("expected raw body, got %q", body)
	}
}

func TestURL_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://api.local/", 0)
	if got := client.URL(LoginPath); got != "http://api.local/api/auth/login" {
		t.Errorf("unexpected URL %q", got)
	}
}
