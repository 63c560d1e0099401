package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"
)

// User is a demo account record.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRepository is the persistence contract the handlers consume.
type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, name, email string) (User, error)
	Update(ctx context.Context, id, name, email string) (User, error)
	Delete(ctx context.Context, id string) error
}

// UserStore is an in-memory UserRepository with simulated latency.
type UserStore struct {
	mu      sync.RWMutex
	items   map[string]User
	latency time.Duration
}

// NewUserStore creates a store pre-seeded with demo fixtures.
func NewUserStore(latency time.Duration) *UserStore {
	s := &UserStore{
		items:   make(map[string]User),
		latency: latency,
	}

	now := time.Now().UTC()
	for _, u := range []User{
		{ID: xid.New().String(), Name: "Ada Wanjiru", Email: "ada@example.com"},
		{ID: xid.New().String(), Name: "Bruno Keller", Email: "bruno@example.com"},
	} {
		u.CreatedAt = now
		u.UpdatedAt = now
		s.items[u.ID] = u
	}

	return s
}

func (s *UserStore) List(ctx context.Context) ([]User, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.items))
	for _, u := range s.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (User, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.items[id]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, nil
}

func (s *UserStore) Create(ctx context.Context, name, email string) (User, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	u := User{
		ID:        xid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.items[u.ID] = u
	s.mu.Unlock()

	return u, nil
}

func (s *UserStore) Update(ctx context.Context, id, name, email string) (User, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.items[id]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	u.Name = name
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
	s.items[id] = u

	return u, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	delete(s.items, id)
	return nil
}
