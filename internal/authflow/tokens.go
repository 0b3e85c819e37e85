package authflow

import (
	"log"
	"sync"

	"labdash/internal/config"
	"labdash/internal/eventbus"
)

// TokenStore holds the current backend access token. The token also lives in
// the config file; the store keeps the in-memory copy the HTTP client reads
// on every request, so clearing takes effect immediately.
type TokenStore struct {
	mu    sync.RWMutex
	token string

	cfg    *config.Config
	cfgSvc config.ConfigService
	bus    eventbus.EventBus
}

// NewTokenStore creates a token store seeded from the loaded config.
func NewTokenStore(cfg *config.Config, cfgSvc config.ConfigService, bus eventbus.EventBus) *TokenStore {
	return &TokenStore{
		token:  cfg.AccessToken,
		cfg:    cfg,
		cfgSvc: cfgSvc,
		bus:    bus,
	}
}

// Token returns the current access token, empty when logged out.
func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set stores a new token and persists it.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.persist(token)
	if s.bus != nil {
		s.bus.Publish(eventbus.TokenUpdatedEvent{})
	}
}

// Clear drops the current token. This is the "clear session token"
// collaborator invoked when the backend reports login_required.
func (s *TokenStore) Clear() {
	s.Set("")
}

func (s *TokenStore) persist(token string) {
	if s.cfg == nil || s.cfgSvc == nil {
		return
	}
	s.cfg.AccessToken = token
	if err := s.cfgSvc.Save(s.cfg); err != nil {
		log.Printf("TokenStore: failed to persist token: %v", err)
	}
}
