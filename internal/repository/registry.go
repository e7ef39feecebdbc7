// Package repository position registry
package repository

import (
	"fmt"
	"sync"

	"Paper-Trading-Service/internal/model"
)

// Registry in-memory index of open positions, a derived cache of the
// persisted active set. Only the trading service mutates it. Lookups by
// symbol are a linear scan over the primary map, which is fine for the
// position counts this service holds (tens, not thousands).
type Registry struct {
	mu        sync.RWMutex
	positions map[string]*model.Position // position id -> position
	byKey     map[string]string          // idempotency key -> position id
}

// NewRegistry constructor
func NewRegistry() *Registry {
	return &Registry{
		positions: make(map[string]*model.Position),
		byKey:     make(map[string]string),
	}
}

// Insert adds an open position, fails if a position with the same
// idempotency key is already present
func (r *Registry) Insert(position *model.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := position.IdempotencyKey()
	if _, ok := r.byKey[key]; ok {
		return fmt.Errorf("registry - Insert: position with key %q already exists", key)
	}
	if _, ok := r.positions[position.ID]; ok {
		return fmt.Errorf("registry - Insert: position with id %q already exists", position.ID)
	}

	stored := *position
	r.positions[stored.ID] = &stored
	r.byKey[key] = stored.ID
	return nil
}

// Remove deletes a position by id and returns it, fails if absent
func (r *Registry) Remove(id string) (*model.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	position, ok := r.positions[id]
	if !ok {
		return nil, fmt.Errorf("registry - Remove: position with id %q doesn't exist", id)
	}
	delete(r.positions, id)
	delete(r.byKey, position.IdempotencyKey())
	return position, nil
}

// Find returns a snapshot copy of a position by id or nil
func (r *Registry) Find(id string) *model.Position {
	r.mu.RLock()
	defer r.mu.RUnlock()

	position, ok := r.positions[id]
	if !ok {
		return nil
	}
	snapshot := *position
	return &snapshot
}

// FindBySymbol returns snapshot copies of all open positions on a symbol,
// callers never observe a position mutating mid-iteration
func (r *Registry) FindBySymbol(symbol string) []model.Position {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []model.Position
	for _, position := range r.positions {
		if position.Pair == symbol {
			result = append(result, *position)
		}
	}
	return result
}

// FindByIdempotencyKey returns a snapshot copy or nil
func (r *Registry) FindByIdempotencyKey(name, pair string, kind model.Kind) *model.Position {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[model.IdempotencyKey(name, pair, kind)]
	if !ok {
		return nil
	}
	position := *r.positions[id]
	return &position
}

// Len number of open positions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.positions)
}
