package client

import (
	"context"

	"delliapp/tenancy"

	"go.uber.org/zap"
)

type SessionConfig struct {
	BaseURL string
	// Host is the storefront host, e.g. loja1.delliapp.com.br or localhost.
	Host string
	// ClientParam is the value of the ?client= escape hatch on loopback hosts.
	ClientParam string
	HostConfig  tenancy.HostConfig
	// StatePath is the local store file; empty keeps state in memory.
	StatePath string
	Log       *zap.Logger
}

// Session bundles the state containers of one storefront session. Build it once and
// pass it around; Close detaches the listeners.
type Session struct {
	Client   *Client
	Auth     *Auth
	Observer *Observer
	Tenant   *TenantResolver
	Cart     *Cart
	Store    *LocalStore

	unsubscribe []func()
}

func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	store := NewMemoryStore()
	if cfg.StatePath != "" {
		var err error
		if store, err = OpenLocalStore(cfg.StatePath); err != nil {
			return nil, err
		}
	}
	cart, err := NewCart(store)
	if err != nil {
		return nil, err
	}

	c := New(cfg.BaseURL, WithHost(cfg.Host))
	auth := NewAuth(c)
	var saved AuthSession
	if ok, err := store.Get(KeyAuthSession, &saved); err == nil && ok {
		auth.Restore(&saved)
	}

	s := &Session{Client: c, Auth: auth, Cart: cart, Store: store}
	s.Observer = NewObserver(auth, auth, log)
	s.Tenant = NewTenantResolver(c, cfg.HostConfig, cfg.Host, cfg.ClientParam, s.Observer.Role, log)

	s.unsubscribe = append(s.unsubscribe,
		auth.OnAuthStateChange(func(e AuthEvent) {
			var err error
			if e.Session == nil {
				err = store.Delete(KeyAuthSession)
			} else {
				err = store.Set(KeyAuthSession, e.Session)
			}
			if err != nil {
				log.Warn("persist auth session", zap.Error(err))
			}
		}),
		s.Observer.Subscribe(func(st AuthState) {
			if st.Loading {
				return
			}
			if st.Identity == nil {
				s.Tenant.Reset()
			}
			s.Tenant.Refresh(context.Background())
		}),
	)

	s.Tenant.Refresh(ctx)
	return s, nil
}

// Close detaches every listener. The session must not be used afterwards.
func (s *Session) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.Observer.Close()
}
