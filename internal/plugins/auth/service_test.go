package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/neurocare/neurocare-web/internal/backend"
	"github.com/neurocare/neurocare-web/internal/localstore"
)

// --- Mock Backend ---

// mockBackend implements backend.Client for testing.
type mockBackend struct {
	signupFn      func(ctx context.Context, req backend.SignupRequest) error
	loginFn       func(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error)
	logoutFn      func(ctx context.Context, token string) error
	currentUserFn func(ctx context.Context, token string) (*backend.CurrentUser, error)
	postChatFn    func(ctx context.Context, endpoint, message string) (string, error)

	mu    sync.Mutex
	calls int
}

func (m *mockBackend) record() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *mockBackend) Signup(ctx context.Context, req backend.SignupRequest) error {
	m.record()
	if m.signupFn != nil {
		return m.signupFn(ctx, req)
	}
	return nil
}

func (m *mockBackend) Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error) {
	m.record()
	if m.loginFn != nil {
		return m.loginFn(ctx, req)
	}
	return &backend.LoginResponse{Token: "opaque-token"}, nil
}

func (m *mockBackend) Logout(ctx context.Context, token string) error {
	m.record()
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

func (m *mockBackend) CurrentUser(ctx context.Context, token string) (*backend.CurrentUser, error) {
	m.record()
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, token)
	}
	return &backend.CurrentUser{}, nil
}

func (m *mockBackend) PostChat(ctx context.Context, endpoint, message string) (string, error) {
	m.record()
	if m.postChatFn != nil {
		return m.postChatFn(ctx, endpoint, message)
	}
	return "", nil
}

func (m *mockBackend) URL(path string) string { return "http://backend.test" + path }

// --- Test Helpers ---

func newTestService(client *mockBackend) *authService {
	return NewAuthService(client, NewMachine()).(*authService)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func validRegister() RegisterInput {
	return RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1", Confirm: "secret1"}
}

// --- Validation Tests ---

func TestLogin_EmptyPasswordMakesNoCall(t *testing.T) {
	client := &mockBackend{}
	svc := newTestService(client)
	store := localstore.NewMemoryStore()

	out := svc.Login(context.Background(), "b1", store, LoginInput{Email: "ana@example.com"})
	if out.State != StateFailure || out.Message != msgRequiredFields {
		t.Fatalf("expected required-fields failure, got %+v", out)
	}
	if client.calls != 0 {
		t.Errorf("expected no backend calls, got %d", client.calls)
	}
}

func TestValidateRegister_Order(t *testing.T) {
	tests := []struct {
		name string
		edit func(*RegisterInput)
		want string
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }, msgRequiredFields},
		{"missing name", func(in *RegisterInput) { in.Name = "" }, msgNameRequired},
		{"short password", func(in *RegisterInput) { in.Password, in.Confirm = "12345", "12345" }, msgPasswordTooShort},
		{"six chars ok", func(in *RegisterInput) { in.Password, in.Confirm = "123456", "123456" }, ""},
		{"mismatch", func(in *RegisterInput) { in.Confirm = "other12" }, msgPasswordMismatch},
		{"bad email", func(in *RegisterInput) { in.Email = "ana@example" }, msgInvalidEmail},
		{"short beats mismatch", func(in *RegisterInput) { in.Password = "123" }, msgPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.edit(&in)
			if got := ValidateRegister(in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateLogin_NoLengthRule(t *testing.T) {
	if got := ValidateLogin(LoginInput{Email: "a@b.co", Password: "x"}); got != "" {
		t.Errorf("login should not enforce password length, got %q", got)
	}
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	var sent backend.SignupRequest
	client := &mockBackend{signupFn: func(_ context.Context, req backend.SignupRequest) error {
		sent = req
		return nil
	}}
	svc := newTestService(client)

	out := svc.Register(context.Background(), "b1", RegisterInput{
		Name: "  Ana ", Email: " ana@example.com ", Password: "secret1", Confirm: "secret1",
	})
	if !out.Succeeded() || out.Message != msgSignupSuccess {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.Redirect == nil || out.Redirect.To != "/login" || out.Redirect.After != RegisterRedirectDelay {
		t.Errorf("unexpected redirect: %+v", out.Redirect)
	}
	if sent.Name != "Ana" || sent.Email != "ana@example.com" {
		t.Errorf("expected trimmed fields, got %+v", sent)
	}
}

func TestRegister_RejectionShowsBodyVerbatim(t *testing.T) {
	client := &mockBackend{signupFn: func(context.Context, backend.SignupRequest) error {
		return &backend.StatusError{Status: http.StatusBadRequest, Body: "Email already registered"}
	}}
	out := newTestService(client).Register(context.Background(), "b1", validRegister())
	if out.State != StateFailure || out.Message != "Email already registered" {
		t.Fatalf("expected verbatim body, got %+v", out)
	}
}

func TestRegister_EmptyRejectionBody(t *testing.T) {
	client := &mockBackend{signupFn: func(context.Context, backend.SignupRequest) error {
		return &backend.StatusError{Status: http.StatusInternalServerError}
	}}
	out := newTestService(client).Register(context.Background(), "b1", validRegister())
	if out.Message != msgSignupFailed {
		t.Fatalf("expected %q, got %q", msgSignupFailed, out.Message)
	}
}

func TestRegister_NetworkError(t *testing.T) {
	client := &mockBackend{signupFn: func(context.Context, backend.SignupRequest) error {
		return errors.New("dial tcp: connection refused")
	}}
	out := newTestService(client).Register(context.Background(), "b1", validRegister())
	if out.Message != msgNetworkError {
		t.Fatalf("expected network error, got %q", out.Message)
	}
}

// --- Login Tests ---

func TestLogin_PersistsTokenAndName(t *testing.T) {
	client := &mockBackend{loginFn: func(context.Context, backend.LoginRequest) (*backend.LoginResponse, error) {
		return &backend.LoginResponse{Token: "tok", User: &backend.LoginUser{Name: "Ana"}}, nil
	}}
	svc := newTestService(client)
	store := localstore.NewMemoryStore()
	_ = store.Set(context.Background(), localstore.KeyProfile, `{"name":"Previous"}`)

	out := svc.Login(context.Background(), "b1", store, LoginInput{Email: "ana@example.com", Password: "pw"})
	if !out.Succeeded() {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.Redirect == nil || out.Redirect.To != "/dashboard" || out.Redirect.After != LoginRedirectDelay {
		t.Errorf("unexpected redirect: %+v", out.Redirect)
	}

	ctx := context.Background()
	if tok, _ := localstore.Token(ctx, store); tok != "tok" {
		t.Errorf("token = %q", tok)
	}
	if name, _ := localstore.Identity(ctx, store); name != "Ana" {
		t.Errorf("identity = %q", name)
	}
	if store.Has(localstore.KeyProfile) {
		t.Error("stale profile should be cleared on login")
	}
}

func TestLogin_NameFallsBackToTokenSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "sub@example.com"})
	client := &mockBackend{loginFn: func(context.Context, backend.LoginRequest) (*backend.LoginResponse, error) {
		return &backend.LoginResponse{Token: token}, nil
	}}
	store := localstore.NewMemoryStore()

	newTestService(client).Login(context.Background(), "b1", store, LoginInput{Email: "ana@example.com", Password: "pw"})
	if name, _ := localstore.Identity(context.Background(), store); name != "sub@example.com" {
		t.Errorf("identity = %q, want token subject", name)
	}
}

func TestLogin_NameFallsBackToTypedEmail(t *testing.T) {
	store := localstore.NewMemoryStore()
	newTestService(&mockBackend{}).Login(context.Background(), "b1", store, LoginInput{Email: "ana@example.com", Password: "pw"})
	if name, _ := localstore.Identity(context.Background(), store); name != "ana@example.com" {
		t.Errorf("identity = %q, want typed email", name)
	}
}

func TestLogin_RejectionUsesServerMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"server message", "Account locked", "Account locked"},
		{"no message", "", msgLoginFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockBackend{loginFn: func(context.Context, backend.LoginRequest) (*backend.LoginResponse, error) {
				return nil, &backend.StatusError{Status: http.StatusUnauthorized, Message: tt.message}
			}}
			store := localstore.NewMemoryStore()
			out := newTestService(client).Login(context.Background(), "b1", store, LoginInput{Email: "a@b.co", Password: "pw"})
			if out.Message != tt.want {
				t.Errorf("got %q, want %q", out.Message, tt.want)
			}
			if store.Has(localstore.KeyToken) {
				t.Error("failed login must not store a token")
			}
		})
	}
}

func TestLogin_BusyFlagRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	client := &mockBackend{loginFn: func(context.Context, backend.LoginRequest) (*backend.LoginResponse, error) {
		close(entered)
		<-release
		return &backend.LoginResponse{Token: "tok"}, nil
	}}
	svc := newTestService(client)
	in := LoginInput{Email: "a@b.co", Password: "pw"}

	done := make(chan Outcome)
	go func() {
		done <- svc.Login(context.Background(), "b1", localstore.NewMemoryStore(), in)
	}()
	<-entered

	if got := svc.machine.State("b1:" + formLogin); got != StateSubmitting {
		t.Errorf("expected submitting, got %s", got)
	}
	second := svc.Login(context.Background(), "b1", localstore.NewMemoryStore(), in)
	if second.Message != msgBusy {
		t.Errorf("expected busy rejection, got %+v", second)
	}

	close(release)
	if first := <-done; !first.Succeeded() {
		t.Errorf("first submission should succeed, got %+v", first)
	}
	if got := svc.machine.State("b1:" + formLogin); got != StateIdle {
		t.Errorf("expected idle after completion, got %s", got)
	}
}

// --- Logout / Session Tests ---

func TestLogout_ClearsKeysEvenIfBackendFails(t *testing.T) {
	var gotToken string
	client := &mockBackend{logoutFn: func(_ context.Context, token string) error {
		gotToken = token
		return errors.New("unreachable")
	}}
	store := localstore.NewMemoryStore()
	ctx := context.Background()
	for _, k := range localstore.SessionKeys {
		_ = store.Set(ctx, k, "x")
	}

	if err := newTestService(client).Logout(ctx, store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotToken != "x" {
		t.Errorf("expected token sent to backend, got %q", gotToken)
	}
	for _, k := range localstore.SessionKeys {
		if store.Has(k) {
			t.Errorf("key %q should be cleared", k)
		}
	}
}

func TestHasSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
	live := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})

	tests := []struct {
		name  string
		token string
		user  string
		want  bool
	}{
		{"nothing stored", "", "", false},
		{"live token", live, "", true},
		{"opaque token", "opaque", "", true},
		{"expired token only", expired, "", false},
		{"identity marker only", "", "Ana", true},
		{"expired token with marker", expired, "Ana", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockBackend{})
			svc.now = func() time.Time { return now }
			store := localstore.NewMemoryStore()
			ctx := context.Background()
			if tt.token != "" {
				_ = store.Set(ctx, localstore.KeyToken, tt.token)
			}
			if tt.user != "" {
				_ = store.Set(ctx, localstore.KeyUser, tt.user)
			}
			got, err := svc.HasSession(ctx, store)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Machine Tests ---

func TestMachine_Transitions(t *testing.T) {
	m := NewMachine()
	var seen []State
	m.OnTransition = func(_ string, _, to State) { seen = append(seen, to) }

	if !m.Begin("k") {
		t.Fatal("first Begin should succeed")
	}
	if m.Begin("k") {
		t.Fatal("second Begin should be rejected while submitting")
	}
	m.Finish("k", StateFailure)
	m.Reset("k")

	want := []State{StateSubmitting, StateFailure, StateIdle}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, seen[i], want[i])
		}
	}
	if m.State("k") != StateIdle {
		t.Error("expected idle after reset")
	}
}

func TestTokenExpired_OpaqueTokenNeverExpires(t *testing.T) {
	if TokenExpired("not-a-jwt", time.Now()) {
		t.Error("opaque tokens should not be treated as expired")
	}
	if TokenSubject("not-a-jwt") != "" {
		t.Error("opaque tokens have no subject")
	}
}
