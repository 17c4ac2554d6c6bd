package orderstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// EventPublisher receives lifecycle notifications after a successful write.
// Publishing is best-effort: a failure is logged and never fails the request.
type EventPublisher interface {
	PublishOrderCreated(order *models.Order) error
	PublishStatusChanged(order *models.Order, from models.Status) error
	PublishOrderDeleted(orderID string) error
}

// StatusFeed pushes status changes to connected dashboard clients.
type StatusFeed interface {
	BroadcastStatus(order *models.Order)
}

// Service owns the store's business rules: the status state machine, the
// password gates, and the atomicity guarantees around edits.
type Service struct {
	repo      Repository
	publisher EventPublisher
	feed      StatusFeed
	logger    *logrus.Logger
	now       func() time.Time

	mu     sync.RWMutex
	tokens map[string]*models.AdminProfile
}

func NewService(repo Repository, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		tokens: make(map[string]*models.AdminProfile),
	}
}

func (s *Service) SetEventPublisher(p EventPublisher) { s.publisher = p }
func (s *Service) SetStatusFeed(f StatusFeed)         { s.feed = f }

// CreateOrder records a new order. Orders always start Confirmed; creation
// itself is gated by the salesperson's password.
func (s *Service) CreateOrder(ctx context.Context, req models.NewOrderRequest) (*models.Order, error) {
	if req.Salesperson == "" || req.SalespersonPassword == "" || req.CompanyName == "" || req.DeliveryDate == "" {
		return nil, fmt.Errorf("%w: salesperson, password, company name and delivery date are required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	if err := s.verifySalespersonPassword(ctx, req.Salesperson, req.SalespersonPassword); err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	number, err := s.repo.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderID:          fmt.Sprintf("ORD-%d", number),
		Salesperson:      req.Salesperson,
		CompanyName:      req.CompanyName,
		CompanyNumber:    req.CompanyNumber,
		DeliveryLocation: req.DeliveryLocation,
		CurrentDate:      req.CurrentDate,
		DeliveryDate:     req.DeliveryDate,
		Status:           models.StatusConfirmed,
		Items:            items,
		CreatedAt:        s.now(),
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.OrderID,
		"salesperson": order.Salesperson,
		"items_count": len(order.Items),
	}).Info("Order created")

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(order); err != nil {
			s.logger.WithError(err).Error("Failed to publish order created event")
		}
	}
	return order, nil
}

// Status returns the current snapshot for an order id.
func (s *Service) Status(ctx context.Context, orderID string) (*models.Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

func (s *Service) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return s.repo.ListOrders(ctx)
}

// ConfirmDispatch advances Confirmed -> Dispatched. Verification order:
// existence, precondition status, then the password against the named
// salesperson. Any failure leaves the order untouched.
func (s *Service) ConfirmDispatch(ctx context.Context, req models.DispatchRequest) (*models.Order, error) {
	if req.OrderID == "" || req.Salesperson == "" || req.Password == "" || req.DriverName == "" || req.VehicleName == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	info := &models.DispatchInfo{
		DriverName:  req.DriverName,
		VehicleName: req.VehicleName,
		// The store's clock is authoritative; any time the client displayed
		// is decorative only.
		DispatchedAt: s.now(),
	}
	return s.transition(ctx, req.OrderID, req.Salesperson, req.Password, models.StatusConfirmed, models.StatusDispatched, info)
}

// ConfirmDelivery advances Dispatched -> Delivered.
func (s *Service) ConfirmDelivery(ctx context.Context, req models.DeliveryRequest) (*models.Order, error) {
	if req.OrderID == "" || req.Salesperson == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	return s.transition(ctx, req.OrderID, req.Salesperson, req.Password, models.StatusDispatched, models.StatusDelivered, nil)
}

func (s *Service) transition(ctx context.Context, orderID, salesperson, password string, from, to models.Status, info *models.DispatchInfo) (*models.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Salesperson != salesperson {
		return nil, fmt.Errorf("%w: salesperson does not match this order", ErrValidation)
	}
	if !models.CanTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidState, order.Status, to)
	}
	if err := s.verifySalespersonPassword(ctx, salesperson, password); err != nil {
		return nil, err
	}

	applied, err := s.repo.UpdateStatus(ctx, orderID, from, to, info)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost the race against a concurrent transition.
		return nil, fmt.Errorf("%w: order status changed concurrently", ErrInvalidState)
	}

	updated, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    orderID,
		"from_status": from,
		"to_status":   to,
	}).Info("Order status advanced")

	if s.publisher != nil {
		if err := s.publisher.PublishStatusChanged(updated, from); err != nil {
			s.logger.WithError(err).Error("Failed to publish status change event")
		}
	}
	if s.feed != nil {
		s.feed.BroadcastStatus(updated)
	}
	return updated, nil
}

// EditOrder atomically replaces company name, delivery date, and items. The
// edit is gated by the password of the salesperson already recorded on the
// order; a rejected password leaves the order fully unchanged.
func (s *Service) EditOrder(ctx context.Context, orderID string, req models.EditRequest) (*models.Order, error) {
	if req.SalespersonName == "" || req.SalespersonPassword == "" {
		return nil, fmt.Errorf("%w: salesperson name and password are required", ErrValidation)
	}
	if len(req.UpdatedItems) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Salesperson != req.SalespersonName {
		return nil, fmt.Errorf("%w: salesperson does not match this order", ErrValidation)
	}
	if err := s.verifySalespersonPassword(ctx, req.SalespersonName, req.SalespersonPassword); err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, req.UpdatedItems)
	if err != nil {
		return nil, err
	}

	updated := order.Clone()
	updated.Items = items
	if req.CompanyName != "" {
		updated.CompanyName = req.CompanyName
	}
	if req.DeliveryDate != "" {
		updated.DeliveryDate = req.DeliveryDate
	}

	if err := s.repo.ReplaceOrder(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    orderID,
		"items_count": len(items),
	}).Info("Order edited")
	return s.repo.GetOrder(ctx, orderID)
}

// DeleteOrder removes an order, gated by the recorded salesperson's password.
func (s *Service) DeleteOrder(ctx context.Context, orderID, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.verifySalespersonPassword(ctx, order.Salesperson, password); err != nil {
		return err
	}
	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		return err
	}

	s.logger.WithField("order_id", orderID).Info("Order deleted")
	if s.publisher != nil {
		if err := s.publisher.PublishOrderDeleted(orderID); err != nil {
			s.logger.WithError(err).Error("Failed to publish order deleted event")
		}
	}
	return nil
}

func (s *Service) verifySalespersonPassword(ctx context.Context, name, password string) error {
	sp, err := s.repo.GetSalespersonByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// A missing credential record verifies nothing.
			return ErrInvalidPassword
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(sp.PasswordHash), []byte(password)) != nil {
		return ErrInvalidPassword
	}
	return nil
}

func (s *Service) resolveItems(ctx context.Context, selectors []models.ItemSelector) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(selectors))
	for _, sel := range selectors {
		if sel.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		product, err := s.repo.GetProduct(ctx, sel.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown product %s", ErrValidation, sel.ProductID)
			}
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  sel.Quantity,
		})
	}
	return items, nil
}

// Login verifies an account and issues a bearer token for the session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.AdminProfile, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", ErrValidation)
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrValidation)
	}

	token := uuid.New().String()
	profile := &models.AdminProfile{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}

	s.mu.Lock()
	s.tokens[token] = profile
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"email": user.Email,
		"role":  user.Role,
	}).Info("User logged in")
	return profile, token, nil
}

// ValidateToken resolves a bearer token to the profile it was issued for.
func (s *Service) ValidateToken(token string) (*models.AdminProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.tokens[token]
	return profile, ok
}

// RevokeToken invalidates a bearer token (logout).
func (s *Service) RevokeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// CreateSalesperson registers a salesperson with a bcrypt-hashed password.
func (s *Service) CreateSalesperson(ctx context.Context, name, password string) (*models.Salesperson, error) {
	if name == "" || password == "" {
		return nil, fmt.Errorf("%w: name and password are required", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	sp := &models.Salesperson{
		ID:           uuid.New().String(),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateSalesperson(ctx, sp); err != nil {
		return nil, err
	}
	s.logger.WithField("name", name).Info("Salesperson created")
	return sp, nil
}

func (s *Service) ListSalespersons(ctx context.Context) ([]*models.Salesperson, error) {
	return s.repo.ListSalespersons(ctx)
}

func (s *Service) DeleteSalesperson(ctx context.Context, id string) error {
	return s.repo.DeleteSalesperson(ctx, id)
}

// CreateProduct registers a product in the catalog.
func (s *Service) CreateProduct(ctx context.Context, name, defaultUnits string) (*models.Product, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	p := &models.Product{
		ID:           uuid.New().String(),
		Name:         name,
		DefaultUnits: defaultUnits,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// CreateUser registers a dashboard account.
func (s *Service) CreateUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"email": email, "role": role}).Info("User created")
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

// DeliveriesByDate lists orders due on a delivery date, optionally filtered
// by location.
func (s *Service) DeliveriesByDate(ctx context.Context, date, location string) ([]*models.Order, error) {
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	return s.repo.OrdersByDeliveryDate(ctx, date, location)
}
