package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/storelabs/storefront-service/internal/model"
)

type CartRepository struct {
	store *Store
}

func NewCartRepository(store *Store) *CartRepository {
	return &CartRepository{store: store}
}

func (r *CartRepository) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[userID]
	if !ok {
		return nil, nil
	}

	cart := model.Cart{ID: c.ID, UserID: c.UserID, CreatedAt: c.CreatedAt, Items: []model.CartItem{}}
	for _, item := range s.cartItems[c.ID] {
		cp := *item
		if p, ok := s.products[item.ProductID]; ok {
			cp.Product = copyProduct(p)
		}
		cart.Items = append(cart.Items, cp)
	}
	sort.Slice(cart.Items, func(i, j int) bool { return cart.Items[i].ProductID < cart.Items[j].ProductID })
	return &cart, nil
}

func (r *CartRepository) UpsertCart(ctx context.Context, userID string) (*model.Cart, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[userID]; ok {
		cp := *c
		return &cp, nil
	}

	c := &model.Cart{ID: uuid.New().String(), UserID: userID, CreatedAt: time.Now()}
	s.carts[userID] = c
	s.cartItems[c.ID] = make(map[string]*model.CartItem)
	cp := *c
	return &cp, nil
}

func (r *CartRepository) GetItem(ctx context.Context, cartID, productID string) (*model.CartItem, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.cartItems[cartID]
	if !ok {
		return nil, nil
	}
	item, ok := items[productID]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r *CartRepository) UpsertItem(ctx context.Context, item *model.CartItem) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cartItems[item.CartID]; !ok {
		s.cartItems[item.CartID] = make(map[string]*model.CartItem)
	}
	cp := *item
	cp.Product = nil
	s.cartItems[item.CartID][item.ProductID] = &cp
	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, cartID, productID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if items, ok := s.cartItems[cartID]; ok {
		delete(items, productID)
	}
	return nil
}
