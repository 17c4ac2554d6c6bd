package orderstore

import (
	"context"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// Repository is the persistence boundary of the order store. Two
// implementations exist: Postgres for deployment and an in-memory store for
// tests and standalone demo runs.
//
// UpdateStatus is the one operation with compare-and-swap semantics: the
// write applies only while the order's current status still equals `from`,
// so of two racing transition requests at most one succeeds.
type Repository interface {
	NextOrderNumber(ctx context.Context) (int, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)
	// UpdateStatus returns false (and no error) when the order exists but its
	// status no longer equals from.
	UpdateStatus(ctx context.Context, orderID string, from, to models.Status, info *models.DispatchInfo) (bool, error)
	// ReplaceOrder atomically overwrites the mutable fields (company, dates,
	// items) of an existing order, leaving status and dispatch info untouched.
	ReplaceOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, orderID string) error
	// OrdersByDeliveryDate lists orders due on a delivery date; location is an
	// optional exact-match filter.
	OrdersByDeliveryDate(ctx context.Context, date, location string) ([]*models.Order, error)

	GetSalespersonByName(ctx context.Context, name string) (*models.Salesperson, error)
	CreateSalesperson(ctx context.Context, sp *models.Salesperson) error
	ListSalespersons(ctx context.Context) ([]*models.Salesperson, error)
	DeleteSalesperson(ctx context.Context, id string) error

	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	ListProducts(ctx context.Context) ([]*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}
