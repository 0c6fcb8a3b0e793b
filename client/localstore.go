package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys of the client-local state.
const (
	KeyCart           = "cart"
	KeyWidgetPosition = "widget_position"
	KeyRoleSwitch     = "role_switch"
	KeyAnonOrders     = "anon_orders"
	KeyAuthSession    = "auth_session"
)

// LocalStore is a small JSON document on disk holding client state between runs.
type LocalStore struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// NewMemoryStore is a LocalStore that never touches disk.
func NewMemoryStore() *LocalStore {
	return &LocalStore{data: map[string]json.RawMessage{}}
}

// OpenLocalStore loads path, starting empty when it does not exist yet.
func OpenLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{path: path, data: map[string]json.RawMessage{}}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local store: %w", err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &s.data); err != nil {
			return nil, fmt.Errorf("decode local store: %w", err)
		}
	}
	return s, nil
}

// Get decodes key into v and reports whether it was present.
func (s *LocalStore) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores v under key and writes the file.
func (s *LocalStore) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return s.flush()
}

func (s *LocalStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.flush()
}

// flush writes through a temp file so a crash never leaves half a document.
func (s *LocalStore) flush() error {
	if s.path == "" {
		return nil
	}
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// WidgetPosition is where the floating cart widget was last dropped.
type WidgetPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *LocalStore) WidgetPosition() (WidgetPosition, error) {
	var p WidgetPosition
	_, err := s.Get(KeyWidgetPosition, &p)
	return p, err
}

func (s *LocalStore) SetWidgetPosition(p WidgetPosition) error {
	return s.Set(KeyWidgetPosition, p)
}

// RoleSwitch is the role a developer picked to preview the staff screens.
func (s *LocalStore) RoleSwitch() (string, error) {
	var r string
	_, err := s.Get(KeyRoleSwitch, &r)
	return r, err
}

func (s *LocalStore) SetRoleSwitch(role string) error {
	if role == "" {
		return s.Delete(KeyRoleSwitch)
	}
	return s.Set(KeyRoleSwitch, role)
}
