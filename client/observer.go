package client

import (
	"context"
	"sync"
	"time"

	"delliapp/models"

	"go.uber.org/zap"
)

// Profile is the signed-in user's record plus their role at the current restaurant.
type Profile struct {
	models.Profile
	MemberRole string `json:"member_role,omitempty"`
}

// ProfileFetcher loads the profile of the current session.
type ProfileFetcher interface {
	Profile(ctx context.Context) (*Profile, error)
}

// AuthState is a snapshot of the observer.
type AuthState struct {
	Identity *User
	Profile  *Profile
	Loading  bool
}

// Observer tracks the signed-in identity and its cached profile.
type Observer struct {
	fetch   ProfileFetcher
	log     *zap.Logger
	timeout time.Duration

	mu        sync.Mutex
	state     AuthState
	listeners map[int]func(AuthState)
	nextID    int

	unsubscribe func()
}

// NewObserver subscribes to auth and loads the profile of an existing session.
func NewObserver(auth *Auth, fetch ProfileFetcher, log *zap.Logger) *Observer {
	o := &Observer{
		fetch:     fetch,
		log:       log,
		timeout:   10 * time.Second,
		state:     AuthState{Loading: true},
		listeners: map[int]func(AuthState){},
	}
	o.unsubscribe = auth.OnAuthStateChange(o.handle)
	if s := auth.Session(); s != nil {
		o.handle(AuthEvent{Type: TokenRefreshed, Session: s})
	} else {
		o.set(AuthState{})
	}
	return o
}

func (o *Observer) handle(e AuthEvent) {
	switch e.Type {
	case SignedOut:
		o.set(AuthState{})
		return
	case TokenRefreshed:
		// a refresh with the same user keeps the cached profile
		if cur := o.State(); cur.Identity != nil && e.Session != nil && cur.Identity.ID == e.Session.User.ID && cur.Profile != nil {
			return
		}
	}
	if e.Session == nil {
		return
	}
	user := e.Session.User
	o.set(AuthState{Identity: &user, Loading: true})

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	p, err := o.fetch.Profile(ctx)
	if err != nil {
		o.log.Warn("profile fetch failed", zap.String("user_id", user.ID), zap.Error(err))
		o.set(AuthState{Identity: &user})
		return
	}
	o.set(AuthState{Identity: &user, Profile: p})
}

func (o *Observer) set(s AuthState) {
	o.mu.Lock()
	o.state = s
	fns := make([]func(AuthState), 0, len(o.listeners))
	for _, fn := range o.listeners {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (o *Observer) State() AuthState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Observer) Identity() *User   { return o.State().Identity }
func (o *Observer) Profile() *Profile { return o.State().Profile }
func (o *Observer) Loading() bool     { return o.State().Loading }

// Role is the platform role of the signed-in user, or "".
func (o *Observer) Role() string {
	if id := o.Identity(); id != nil {
		return string(id.Role)
	}
	return ""
}

// Subscribe calls fn after every state change.
func (o *Observer) Subscribe(fn func(AuthState)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

// Close detaches the observer from the auth stream.
func (o *Observer) Close() {
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
}
