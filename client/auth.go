package client

import (
	"context"
	"sync"
	"time"

	"delliapp/models"
)

type AuthEventType string

const (
	SignedIn       AuthEventType = "signed_in"
	SignedOut      AuthEventType = "signed_out"
	TokenRefreshed AuthEventType = "token_refreshed"
	UserUpdated    AuthEventType = "user_updated"
)

// User is the identity carried by a session.
type User struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

type AuthSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type AuthEvent struct {
	Type    AuthEventType
	Session *AuthSession // nil after sign-out
}

// Auth holds the current session and notifies listeners of changes.
type Auth struct {
	c *Client

	mu        sync.Mutex
	session   *AuthSession
	listeners map[int]func(AuthEvent)
	nextID    int
}

func NewAuth(c *Client) *Auth {
	return &Auth{c: c, listeners: map[int]func(AuthEvent){}}
}

// OnAuthStateChange registers fn and returns its unsubscribe func.
func (a *Auth) OnAuthStateChange(fn func(AuthEvent)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

func (a *Auth) Session() *AuthSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *Auth) emit(typ AuthEventType, s *AuthSession) {
	a.mu.Lock()
	a.session = s
	fns := make([]func(AuthEvent), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	if s != nil {
		a.c.setToken(s.Token)
	} else {
		a.c.setToken("")
	}
	for _, fn := range fns {
		fn(AuthEvent{Type: typ, Session: s})
	}
}

// Restore reinstates a session kept from an earlier run.
func (a *Auth) Restore(s *AuthSession) {
	if s == nil || s.Token == "" || time.Now().After(s.ExpiresAt) {
		return
	}
	a.emit(TokenRefreshed, s)
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	var s AuthSession
	err := check(a.c.r(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&s).
		Post("/api/auth/login"))
	if err != nil {
		return nil, err
	}
	a.emit(SignedIn, &s)
	return &s, nil
}

func (a *Auth) SignUp(ctx context.Context, name, email, password string) (*AuthSession, error) {
	var s AuthSession
	err := check(a.c.r(ctx).
		SetBody(map[string]string{"name": name, "email": email, "password": password}).
		SetResult(&s).
		Post("/api/auth/register"))
	if err != nil {
		return nil, err
	}
	a.emit(SignedIn, &s)
	return &s, nil
}

// SendOTP asks for a one-time code by email.
func (a *Auth) SendOTP(ctx context.Context, email string) error {
	return check(a.c.r(ctx).SetBody(map[string]string{"email": email}).Post("/api/auth/otp"))
}

func (a *Auth) VerifyOTP(ctx context.Context, email, code string) (*AuthSession, error) {
	var s AuthSession
	err := check(a.c.r(ctx).
		SetBody(map[string]string{"email": email, "code": code}).
		SetResult(&s).
		Post("/api/auth/otp/verify"))
	if err != nil {
		return nil, err
	}
	a.emit(SignedIn, &s)
	return &s, nil
}

// SignOut drops the session locally; tokens are stateless on the server.
func (a *Auth) SignOut() {
	a.emit(SignedOut, nil)
}

type profileResponse struct {
	User       models.Profile `json:"user"`
	MemberRole string         `json:"member_role"`
}

// Profile fetches the signed-in user's profile.
func (a *Auth) Profile(ctx context.Context) (*Profile, error) {
	var resp profileResponse
	if err := check(a.c.r(ctx).SetResult(&resp).Get("/api/profile")); err != nil {
		return nil, err
	}
	return &Profile{Profile: resp.User, MemberRole: resp.MemberRole}, nil
}

// UpdateProfile saves profile edits and announces them to listeners.
func (a *Auth) UpdateProfile(ctx context.Context, name, phone *string) error {
	body := map[string]*string{"name": name, "phone": phone}
	if err := check(a.c.r(ctx).SetBody(body).Put("/api/profile")); err != nil {
		return err
	}
	if s := a.Session(); s != nil {
		a.emit(UserUpdated, s)
	}
	return nil
}
