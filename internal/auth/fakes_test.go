package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/ayush/portfolio-api/backend/internal/models"
	"github.com/ayush/portfolio-api/backend/internal/store"
)

// memUsers is an in-memory UserStore with the same unique constraints as
// the real stores.
type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	seq     int
	creates int
	err     error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, other := range m.byID {
		if other.Email == u.Email || other.Username == u.Username {
			return fmt.Errorf("insert user: %w", store.ErrDuplicate)
		}
	}
	m.seq++
	m.creates++
	u.ID = fmt.Sprintf("u%d", m.seq)
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (m *memUsers) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

type memImages struct {
	destroyed []string
	err       error
}

func (m *memImages) Destroy(_ context.Context, publicID string) error {
	m.destroyed = append(m.destroyed, publicID)
	return m.err
}
