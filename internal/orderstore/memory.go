package orderstore

import (
	"context"
	"sort"
	"sync"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// MemoryRepository keeps everything in process memory behind one mutex. Used
// by tests and by the store's standalone mode.
type MemoryRepository struct {
	mu           sync.RWMutex
	orders       map[string]*models.Order
	salespersons map[string]*models.Salesperson // keyed by id
	products     map[string]*models.Product
	users        map[string]*models.User // keyed by id
	nextOrder    int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders:       make(map[string]*models.Order),
		salespersons: make(map[string]*models.Salesperson),
		products:     make(map[string]*models.Product),
		users:        make(map[string]*models.User),
		nextOrder:    10001,
	}
}

func (r *MemoryRepository) NextOrderNumber(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.nextOrder
	r.nextOrder++
	return n, nil
}

func (r *MemoryRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.OrderID]; exists {
		return ErrDuplicate
	}
	r.orders[order.OrderID] = order.Clone()
	return nil
}

func (r *MemoryRepository) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return order.Clone(), nil
}

func (r *MemoryRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]*models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orders = append(orders, order.Clone())
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, orderID string, from, to models.Status, info *models.DispatchInfo) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return false, ErrNotFound
	}
	if order.Status != from {
		return false, nil
	}
	order.Status = to
	if info != nil {
		dup := *info
		order.DispatchInfo = &dup
	}
	return true, nil
}

func (r *MemoryRepository) ReplaceOrder(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[order.OrderID]
	if !ok {
		return ErrNotFound
	}
	updated := order.Clone()
	updated.Status = existing.Status
	updated.DispatchInfo = existing.DispatchInfo
	r.orders[order.OrderID] = updated
	return nil
}

func (r *MemoryRepository) DeleteOrder(ctx context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[orderID]; !ok {
		return ErrNotFound
	}
	delete(r.orders, orderID)
	return nil
}

func (r *MemoryRepository) OrdersByDeliveryDate(ctx context.Context, date, location string) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var orders []*models.Order
	for _, order := range r.orders {
		if order.DeliveryDate != date {
			continue
		}
		if location != "" && order.DeliveryLocation != location {
			continue
		}
		orders = append(orders, order.Clone())
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderID < orders[j].OrderID
	})
	return orders, nil
}

func (r *MemoryRepository) GetSalespersonByName(ctx context.Context, name string) (*models.Salesperson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sp := range r.salespersons {
		if sp.Name == name {
			dup := *sp
			return &dup, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CreateSalesperson(ctx context.Context, sp *models.Salesperson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.salespersons {
		if existing.Name == sp.Name {
			return ErrDuplicate
		}
	}
	dup := *sp
	r.salespersons[sp.ID] = &dup
	return nil
}

func (r *MemoryRepository) ListSalespersons(ctx context.Context) ([]*models.Salesperson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*models.Salesperson, 0, len(r.salespersons))
	for _, sp := range r.salespersons {
		dup := *sp
		list = append(list, &dup)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *MemoryRepository) DeleteSalesperson(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.salespersons[id]; !ok {
		return ErrNotFound
	}
	delete(r.salespersons, id)
	return nil
}

func (r *MemoryRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	dup := *p
	return &dup, nil
}

func (r *MemoryRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dup := *p
	r.products[p.ID] = &dup
	return nil
}

func (r *MemoryRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		dup := *p
		list = append(list, &dup)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *MemoryRepository) DeleteProduct(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			dup := *u
			return &dup, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) CreateUser(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	dup := *u
	r.users[u.ID] = &dup
	return nil
}

func (r *MemoryRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		dup := *u
		list = append(list, &dup)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return list, nil
}

func (r *MemoryRepository) DeleteUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}
