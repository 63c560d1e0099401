package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"
)

// Product is a demo catalog entry.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PriceCent int64     `json:"price_cents"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductRepository is the persistence contract the handlers consume.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, name string, priceCent int64) (Product, error)
	Update(ctx context.Context, id, name string, priceCent int64) (Product, error)
	Delete(ctx context.Context, id string) error
}

// ProductStore is an in-memory ProductRepository with simulated latency.
type ProductStore struct {
	mu      sync.RWMutex
	items   map[string]Product
	latency time.Duration
}

// NewProductStore creates a store pre-seeded with demo fixtures.
func NewProductStore(latency time.Duration) *ProductStore {
	s := &ProductStore{
		items:   make(map[string]Product),
		latency: latency,
	}

	now := time.Now().UTC()
	for _, p := range []Product{
		{ID: xid.New().String(), Name: "Espresso Cup", PriceCent: 1250},
		{ID: xid.New().String(), Name: "Pour Over Kettle", PriceCent: 4900},
		{ID: xid.New().String(), Name: "Burr Grinder", PriceCent: 12900},
	} {
		p.CreatedAt = now
		p.UpdatedAt = now
		s.items[p.ID] = p
	}

	return s
}

func (s *ProductStore) List(ctx context.Context) ([]Product, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (Product, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok {
		return Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, nil
}

func (s *ProductStore) Create(ctx context.Context, name string, priceCent int64) (Product, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return Product{}, err
	}

	now := time.Now().UTC()
	p := Product{
		ID:        xid.New().String(),
		Name:      name,
		PriceCent: priceCent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.items[p.ID] = p
	s.mu.Unlock()

	return p, nil
}

func (s *ProductStore) Update(ctx context.Context, id, name string, priceCent int64) (Product, error) {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.items[id]
	if !ok {
		return Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	p.Name = name
	p.PriceCent = priceCent
	p.UpdatedAt = time.Now().UTC()
	s.items[id] = p

	return p, nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	if err := simulateLatency(ctx, s.latency); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	delete(s.items, id)
	return nil
}
