package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storelabs/storefront-service/internal/apperr"
	"github.com/storelabs/storefront-service/internal/model"
	"github.com/storelabs/storefront-service/internal/order"
)

type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) PlaceOrder(ctx context.Context, userID string, lines []order.Line) (*model.Order, error) {
	sorted := make([]order.Line, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	ids := make([]string, 0, len(sorted))
	for _, line := range sorted {
		ids = append(ids, line.ProductID)
	}

	// Per-product locks held for the whole "transaction", acquired in
	// ascending id order like the SQL backend's FOR UPDATE loop.
	release := r.store.lockRows(ids)
	defer release()

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validation phase: nothing is mutated until every line checks out.
	total := decimal.Zero
	for _, line := range sorted {
		p, ok := s.products[line.ProductID]
		if !ok {
			return nil, apperr.ErrNotFound
		}
		if p.Stock < line.Quantity {
			return nil, &apperr.InsufficientStockError{ProductID: line.ProductID}
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}

	now := time.Now()
	o := &model.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Total:     total,
		Status:    model.OrderStatusPaid,
		CreatedAt: now,
	}

	for _, line := range sorted {
		p := s.products[line.ProductID]
		o.Items = append(o.Items, model.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})

		p.Stock -= line.Quantity
		p.Version++
		p.UpdatedAt = now

		s.ledger = append(s.ledger, model.StockLedgerEntry{
			ID:        uuid.New().String(),
			ProductID: line.ProductID,
			ChangeQty: -line.Quantity,
			Type:      model.LedgerSale,
			Reference: o.ID,
			CreatedAt: now,
		})
	}

	if c, ok := s.carts[userID]; ok {
		s.cartItems[c.ID] = make(map[string]*model.CartItem)
	}

	s.orders[o.ID] = o

	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string, page, limit int) ([]model.Order, int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]model.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			cp := *o
			cp.Items = append([]model.OrderItem(nil), o.Items...)
			orders = append(orders, cp)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })

	count := len(orders)
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		start := (page - 1) * limit
		if start > count {
			start = count
		}
		end := start + limit
		if end > count {
			end = count
		}
		orders = orders[start:end]
	}
	return orders, count, nil
}
