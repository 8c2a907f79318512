package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neurocare/neurocare-web/internal/apperror"
	"github.com/neurocare/neurocare-web/internal/backend"
	"github.com/neurocare/neurocare-web/internal/localstore"
)

// Form kinds, used to key the busy flag.
const (
	formLogin    = "login"
	formRegister = "register"
)

// AuthService defines the business logic contract for the auth forms.
// Handlers call these methods -- they never touch the backend directly.
type AuthService interface {
	// Register validates and submits the registration form.
	Register(ctx context.Context, browserID string, input RegisterInput) Outcome

	// Login validates and submits the login form. On success the token and
	// display name are written to store.
	Login(ctx context.Context, browserID string, store localstore.Store, input LoginInput) Outcome

	// Logout invalidates the token at the backend (best effort) and clears
	// every session key from store.
	Logout(ctx context.Context, store localstore.Store) error

	// HasSession reports whether store holds a usable session marker.
	HasSession(ctx context.Context, store localstore.Store) (bool, error)
}

// authService implements AuthService on top of the backend client.
type authService struct {
	backend backend.Client
	machine *Machine
	now     func() time.Time
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(client backend.Client, machine *Machine) AuthService {
	return &authService{
		backend: client,
		machine: machine,
		now:     time.Now,
	}
}

// Register creates an account at the backend. Success schedules a
// redirect to the login page.
func (s *authService) Register(ctx context.Context, browserID string, input RegisterInput) Outcome {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if msg := ValidateRegister(input); msg != "" {
		return failure(msg)
	}

	return s.submit(browserID+":"+formRegister, func() Outcome {
		err := s.backend.Signup(ctx, backend.SignupRequest{
			Name:     input.Name,
			Email:    input.Email,
			Password: input.Password,
		})
		if err != nil {
			if statusErr := backend.AsStatusError(err); statusErr != nil {
				msg := strings.TrimSpace(statusErr.Body)
				if msg == "" {
					msg = msgSignupFailed
				}
				return failure(msg)
			}
			slog.Error("signup request failed", slog.Any("error", err))
			return failure(msgNetworkError)
		}

		slog.Info("account registered", slog.String("email", input.Email))
		return Outcome{
			State:    StateSuccess,
			Message:  msgSignupSuccess,
			Redirect: &Redirect{To: "/login", After: RegisterRedirectDelay},
		}
	})
}

// Login signs in at the backend and persists the session locally.
func (s *authService) Login(ctx context.Context, browserID string, store localstore.Store, input LoginInput) Outcome {
	input.Email = strings.TrimSpace(input.Email)
	if msg := ValidateLogin(input); msg != "" {
		return failure(msg)
	}

	return s.submit(browserID+":"+formLogin, func() Outcome {
		resp, err := s.backend.Login(ctx, backend.LoginRequest{
			Email:    input.Email,
			Password: input.Password,
		})
		if err != nil {
			if statusErr := backend.AsStatusError(err); statusErr != nil {
				msg := statusErr.Message
				if msg == "" {
					msg = msgLoginFailed
				}
				return failure(msg)
			}
			slog.Error("login request failed", slog.Any("error", err))
			return failure(msgNetworkError)
		}

		if err := s.persistSession(ctx, store, resp, input.Email); err != nil {
			slog.Error("storing session failed", slog.Any("error", err))
			return failure(apperror.SafeMessage(err))
		}

		return Outcome{
			State:    StateSuccess,
			Message:  msgLoginSuccess,
			Redirect: &Redirect{To: "/dashboard", After: LoginRedirectDelay},
		}
	})
}

// persistSession writes the token and display name for a successful login.
// Display name falls back from the returned user's name, to its email, to
// the token subject, to the email that was typed in.
func (s *authService) persistSession(ctx context.Context, store localstore.Store, resp *backend.LoginResponse, typedEmail string) error {
	name := ""
	if resp.User != nil {
		name = firstNonEmpty(resp.User.Name, resp.User.Email)
	}
	name = firstNonEmpty(name, TokenSubject(resp.Token), typedEmail)

	if resp.Token != "" {
		if err := store.Set(ctx, localstore.KeyToken, resp.Token); err != nil {
			return apperror.NewInternal(fmt.Errorf("storing token: %w", err))
		}
	}
	if err := store.Set(ctx, localstore.KeyUser, name); err != nil {
		return apperror.NewInternal(fmt.Errorf("storing display name: %w", err))
	}
	// A profile cached for a previous account must not leak into this one.
	if err := store.Remove(ctx, localstore.KeyProfile); err != nil {
		return apperror.NewInternal(fmt.Errorf("clearing profile: %w", err))
	}
	return nil
}

// Logout invalidates the token at the backend and wipes local state. A
// backend failure is logged, never returned: the browser is signed out
// either way.
func (s *authService) Logout(ctx context.Context, store localstore.Store) error {
	token, err := localstore.Token(ctx, store)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("reading token: %w", err))
	}

	if token != "" {
		if err := s.backend.Logout(ctx, token); err != nil {
			slog.Warn("backend logout failed", slog.Any("error", err))
		}
	}

	if err := localstore.Clear(ctx, store); err != nil {
		return apperror.NewInternal(fmt.Errorf("clearing local state: %w", err))
	}
	return nil
}

// HasSession reports whether the browser holds a live token or, failing
// that, a bare identity marker.
func (s *authService) HasSession(ctx context.Context, store localstore.Store) (bool, error) {
	token, err := localstore.Token(ctx, store)
	if err != nil {
		return false, err
	}
	if token != "" && !TokenExpired(token, s.now()) {
		return true, nil
	}

	identity, err := localstore.Identity(ctx, store)
	if err != nil {
		return false, err
	}
	return identity != "", nil
}

// submit runs call between Begin and Reset of the busy flag. The deferred
// Reset returns the form to Idle on every path.
func (s *authService) submit(key string, call func() Outcome) Outcome {
	if !s.machine.Begin(key) {
		return failure(msgBusy)
	}
	defer s.machine.Reset(key)

	outcome := call()
	s.machine.Finish(key, outcome.State)
	return outcome
}

// firstNonEmpty returns the first non-blank value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
