// Package inventory keeps per-model part stock levels and answers availability
// queries against them. The whole table is persisted on every mutation.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

var (
	ErrModelNotFound   = errors.New("model not found")
	ErrPartNotFound    = errors.New("part not found")
	ErrInvalidQuantity = errors.New("invalid part quantity")
	ErrInvalidModel    = errors.New("invalid model name")
	ErrPersistence     = errors.New("inventory persistence failed")
)

type (
	PartStock struct {
		Quantity     int `json:"quantity"`
		MinThreshold int `json:"min_threshold"`
	}
	ModelStock map[string]PartStock
	Snapshot   map[string]ModelStock
)

// PartLevel reports the stock of a part after consumption.
type PartLevel struct {
	Part         string `json:"part"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"min_threshold"`
}

type ConsumeResult struct {
	Model string `json:"model"`
	// Levels lists consumed parts now at or below their threshold.
	Levels  []PartLevel `json:"low_stock"`
	Unknown []string    `json:"unknown_parts,omitempty"`
}

func (s PartStock) Low() bool {
	return s.Quantity <= s.MinThreshold
}

func (m ModelStock) clone() ModelStock {
	out := make(ModelStock, len(m))
	for part, stock := range m {
		out[part] = stock
	}
	return out
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s))
	for model, parts := range s {
		out[model] = parts.clone()
	}
	return out
}

type Store struct {
	mu        sync.RWMutex
	models    Snapshot
	persister Persister
}

// NewStore wraps an existing snapshot. A nil persister keeps the store in memory only.
func NewStore(snapshot Snapshot, p Persister) *Store {
	if snapshot == nil {
		snapshot = make(Snapshot)
	}
	return &Store{models: snapshot.clone(), persister: p}
}

// Open loads the persisted snapshot, seeding and saving the default table
// when nothing has been persisted yet.
func Open(ctx context.Context, p Persister) (*Store, error) {
	if p == nil {
		return NewStore(DefaultSnapshot(), nil), nil
	}

	snapshot, err := p.Load(ctx)
	if err == nil {
		return NewStore(snapshot, p), nil
	}
	if !errors.Is(err, ErrNoSnapshot) {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	s := NewStore(DefaultSnapshot(), p)
	if err := p.Save(ctx, s.models); err != nil {
		log.Printf("inventory: failed to save default inventory: %v", err)
	} else {
		log.Printf("inventory: default inventory created")
	}

	return s, nil
}

// Resolve maps a user-supplied model name to the stored key. Matching is
// case-insensitive: exact first, then substring containment in either
// direction, scanning keys in lexicographic order of their uppercase form.
func (s *Store) Resolve(model string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.resolveLocked(model)
}

func (s *Store) resolveLocked(model string) (string, error) {
	query := strings.ToUpper(model)
	if query == "" {
		return "", ErrModelNotFound
	}

	keys := make([]string, 0, len(s.models))
	for k := range s.models {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ui, uj := strings.ToUpper(keys[i]), strings.ToUpper(keys[j])
		if ui != uj {
			return ui < uj
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		if strings.ToUpper(k) == query {
			return k, nil
		}
	}

	for _, k := range keys {
		upper := strings.ToUpper(k)
		if strings.Contains(query, upper) || strings.Contains(upper, query) {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrModelNotFound, model)
}

func (s *Store) Lookup(model, part string) (PartStock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, err := s.resolveLocked(model)
	if err != nil {
		return PartStock{}, err
	}

	stock, ok := s.models[key][part]
	if !ok {
		return PartStock{}, fmt.Errorf("%w: %s/%s", ErrPartNotFound, key, part)
	}

	return stock, nil
}

// ModelStatus returns the resolved model key and a copy of its part table.
func (s *Store) ModelStatus(model string) (string, ModelStock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, err := s.resolveLocked(model)
	if err != nil {
		return "", nil, err
	}

	return key, s.models[key].clone(), nil
}

func (s *Store) Status() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.models.clone()
}

func (s *Store) Models() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	models := make([]string, 0, len(s.models))
	for m := range s.models {
		models = append(models, m)
	}
	sort.Strings(models)

	return models
}

// Consume decrements stock for the parts used by a finished service.
// Quantities are clamped at zero and parts the model does not stock are
// reported back untouched. On a persistence failure the in-memory table
// keeps the new levels and ErrPersistence is returned.
func (s *Store) Consume(ctx context.Context, model string, used map[string]int) (ConsumeResult, error) {
	for part, qty := range used {
		if qty < 0 {
			return ConsumeResult{}, fmt.Errorf("%w: %s=%d", ErrInvalidQuantity, part, qty)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.resolveLocked(model)
	if err != nil {
		return ConsumeResult{}, err
	}

	parts := make([]string, 0, len(used))
	for part := range used {
		parts = append(parts, part)
	}
	sort.Strings(parts)

	stock := s.models[key].clone()
	result := ConsumeResult{Model: key}
	for _, part := range parts {
		current, ok := stock[part]
		if !ok {
			result.Unknown = append(result.Unknown, part)
			continue
		}

		current.Quantity = max(0, current.Quantity-used[part])
		stock[part] = current

		if current.Low() {
			result.Levels = append(result.Levels, PartLevel{
				Part:         part,
				Quantity:     current.Quantity,
				MinThreshold: current.MinThreshold,
			})
		}
	}

	s.models[key] = stock

	return result, s.persistLocked(ctx)
}

// AddModel adds a model or replaces its whole part table. A name equal to an
// existing key ignoring case replaces that entry and keeps its key.
func (s *Store) AddModel(ctx context.Context, name string, parts ModelStock) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidModel
	}
	for part, stock := range parts {
		if part == "" || stock.Quantity < 0 || stock.MinThreshold < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidQuantity, part)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.models {
		if strings.EqualFold(key, name) {
			name = key
			break
		}
	}
	s.models[name] = ModelStock(parts).clone()

	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	if err := s.persister.Save(ctx, s.models); err != nil {
		log.Printf("inventory: failed to persist inventory: %v", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return nil
}
