package auth

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"
)

// Coordinator is the per-backend entry point the registry manages. Each
// coordinator recognizes inbound auth flows by the "target" discriminator in
// the callback parameters and silently ignores everyone else's.
type Coordinator interface {
	Name() string
	ReceiveAuthFlow(ctx context.Context, params url.Values)
	LogOut() error
}

// Manager is the string-keyed coordinator registry, populated at startup.
type Manager struct {
	logger *zap.Logger

	mu           sync.RWMutex
	coordinators map[string]Coordinator
	order        []string
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger:       logger,
		coordinators: make(map[string]Coordinator),
	}
}

// Register adds a coordinator under its backend name, replacing any
// previous registration for that name.
func (m *Manager) Register(c Coordinator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := c.Name()
	if _, exists := m.coordinators[name]; !exists {
		m.order = append(m.order, name)
	}
	m.coordinators[name] = c
}

func (m *Manager) Get(name string) (Coordinator, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.coordinators[name]
	return c, ok
}

// ReceiveAuthFlow fans the redirect callback parameters out to every
// registered coordinator. Coordinators that do not recognize the target
// ignore the call.
func (m *Manager) ReceiveAuthFlow(ctx context.Context, params url.Values) {
	m.mu.RLock()
	names := append([]string(nil), m.order...)
	m.mu.RUnlock()

	m.logger.Debug("received auth flow parameters",
		zap.String("target", params.Get("target")))

	for _, name := range names {
		if c, ok := m.Get(name); ok {
			c.ReceiveAuthFlow(ctx, params)
		}
	}
}

// LogOut removes the named backend's persisted credential.
func (m *Manager) LogOut(name string) error {
	c, ok := m.Get(name)
	if !ok {
		return fmt.Errorf("no auth coordinator registered for %q", name)
	}
	return c.LogOut()
}
