// Package cart implements the client-local shopping cart: an insertion-ordered
// collection of (product, quantity) pairs mirrored to the persistent local
// store on every mutation. The cart has no server-side counterpart.
package cart

import (
	"encoding/json"
	"sync"

	"stylecart/internal/api"
	"stylecart/internal/localstore"
	"stylecart/internal/logging"
)

// Item is one cart entry: a copy of the product plus a quantity >= 1.
type Item struct {
	Product  api.Product `json:"product"`
	Quantity int         `json:"quantity"`
}

// Persister is the slice of the local store the cart needs.
type Persister interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Store holds the cart in memory and re-serializes the whole collection to
// the persistent store after every mutation. At most one item exists per
// product identifier.
type Store struct {
	mu    sync.Mutex
	items []Item
	store Persister
}

// NewStore creates a cart backed by the given persister and loads any
// previously saved cart. A missing or corrupt saved cart yields an empty
// cart; it is logged, never fatal.
func NewStore(store Persister) *Store {
	s := &Store{store: store}
	s.load()
	return s
}

func (s *Store) load() {
	raw, err := s.store.Get(localstore.KeyCart)
	if err != nil {
		if err != localstore.ErrNotFound {
			logging.Get(logging.CategoryCart).Warn("could not read saved cart: %v", err)
		}
		return
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logging.Get(logging.CategoryCart).Warn("discarding corrupt saved cart: %v", err)
		return
	}

	// Drop any persisted entries that violate the invariants rather than
	// carrying them into memory.
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		id := it.Product.ID()
		if id == "" || it.Quantity < 1 || seen[id] {
			continue
		}
		seen[id] = true
		s.items = append(s.items, it)
	}
	logging.Cart("loaded %d item(s) from local store", len(s.items))
}

// persist writes the full collection back to the local store.
// Caller must hold s.mu.
func (s *Store) persist() {
	data, err := json.Marshal(s.itemsLocked())
	if err != nil {
		logging.Get(logging.CategoryCart).Error("could not serialize cart: %v", err)
		return
	}
	if err := s.store.Set(localstore.KeyCart, string(data)); err != nil {
		logging.Get(logging.CategoryCart).Error("could not persist cart: %v", err)
	}
}

// itemsLocked returns a non-nil slice so an empty cart persists as [].
func (s *Store) itemsLocked() []Item {
	if s.items == nil {
		return []Item{}
	}
	return s.items
}

// Add puts quantity units of product in the cart. If an item with the same
// product identifier already exists its quantity is incremented, otherwise
// a new item is appended.
func (s *Store) Add(product api.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := product.ID()
	for i := range s.items {
		if s.items[i].Product.ID() == id {
			s.items[i].Quantity += quantity
			logging.Cart("add %s: quantity now %d", id, s.items[i].Quantity)
			s.persist()
			return
		}
	}

	s.items = append(s.items, Item{Product: product, Quantity: quantity})
	logging.Cart("add %s: new item, quantity %d", id, quantity)
	s.persist()
}

// Remove deletes the item with the given product identifier.
// Removing an absent item is a no-op.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

func (s *Store) removeLocked(productID string) {
	for i := range s.items {
		if s.items[i].Product.ID() == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			logging.Cart("remove %s", productID)
			s.persist()
			return
		}
	}
}

// SetQuantity overwrites the quantity of the matching item. A quantity <= 0
// removes the item instead of storing a non-positive value. Unknown product
// identifiers are a no-op.
func (s *Store) SetQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return
	}

	for i := range s.items {
		if s.items[i].Product.ID() == productID {
			s.items[i].Quantity = quantity
			logging.Cart("set %s quantity to %d", productID, quantity)
			s.persist()
			return
		}
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	logging.Cart("cleared")
	s.persist()
}

// Items returns a copy of the cart contents in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of distinct items in the cart.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total returns the sum of price*quantity over all items, recomputed on
// every call. A missing price counts as zero.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, it := range s.items {
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}
