// Package memory implements every repository against in-process maps.
// Row locking is emulated with one mutex per product, always acquired in
// ascending product-id order, which reproduces the serialization and
// deadlock-avoidance contract of the SQL backend. Used by tests and as the
// "memory" storage driver for local development.
package memory

import (
	"sort"
	"sync"

	"github.com/storelabs/storefront-service/internal/model"
)

type Store struct {
	mu sync.RWMutex

	products   map[string]*model.Product
	categories map[string]*model.Category
	carts      map[string]*model.Cart                   // keyed by user id
	cartItems  map[string]map[string]*model.CartItem    // cart id -> product id -> item
	orders     map[string]*model.Order
	ledger     []model.StockLedgerEntry

	lockMu   sync.Mutex
	rowLocks map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		products:   make(map[string]*model.Product),
		categories: make(map[string]*model.Category),
		carts:      make(map[string]*model.Cart),
		cartItems:  make(map[string]map[string]*model.CartItem),
		orders:     make(map[string]*model.Order),
		rowLocks:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) rowLock(productID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if l, ok := s.rowLocks[productID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.rowLocks[productID] = l
	return l
}

// lockRows takes the per-product locks in ascending id order and returns the
// release function. Duplicate ids are collapsed so a lock is never taken
// twice.
func (s *Store) lockRows(productIDs []string) func() {
	unique := make(map[string]bool, len(productIDs))
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if !unique[id] {
			unique[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	locks := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		l := s.rowLock(id)
		l.Lock()
		locks = append(locks, l)
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func copyProduct(p *model.Product) *model.Product {
	cp := *p
	return &cp
}
