package lifecycle

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

// Controller owns the client side of the order lifecycle: it triggers
// transitions through confirmation dialogs and reflects store state back.
// The store itself enforces the transitions; the controller never assumes a
// submission succeeded and always re-reads the snapshot afterwards.
type Controller struct {
	client *Client
	logger *logrus.Logger
}

func NewController(client *Client, logger *logrus.Logger) *Controller {
	return &Controller{client: client, logger: logger}
}

// CheckStatus looks an order up by its (case-normalized) id.
func (c *Controller) CheckStatus(ctx context.Context, rawID string) (*models.Order, error) {
	return c.client.Status(ctx, rawID)
}

// ConfirmDispatch drives one dispatch confirmation through the dialog. The
// dialog supplies password, driver, and vehicle; the order supplies id and
// the accountable salesperson. On success the returned snapshot is re-fetched
// from the store, not assumed.
func (c *Controller) ConfirmDispatch(ctx context.Context, dialog *Dialog, order *models.Order) (*models.Order, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: order", ErrMissingFields)
	}

	err := dialog.Submit(func() error {
		_, err := c.client.ConfirmDispatch(ctx, models.DispatchRequest{
			OrderID:     order.OrderID,
			Salesperson: order.Salesperson,
			Password:    dialog.Password(),
			DriverName:  dialog.DriverName(),
			VehicleName: dialog.VehicleName(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.WithField("order_id", order.OrderID).Info("Dispatch confirmed")
	return c.client.Status(ctx, order.OrderID)
}

// ConfirmDelivery drives one delivery confirmation through the dialog.
func (c *Controller) ConfirmDelivery(ctx context.Context, dialog *Dialog, order *models.Order) (*models.Order, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: order", ErrMissingFields)
	}

	err := dialog.Submit(func() error {
		_, err := c.client.ConfirmDelivery(ctx, models.DeliveryRequest{
			OrderID:     order.OrderID,
			Salesperson: order.Salesperson,
			Password:    dialog.Password(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.WithField("order_id", order.OrderID).Info("Delivery confirmed")
	return c.client.Status(ctx, order.OrderID)
}

// EditOrder replaces the mutable fields of an order under authorization.
func (c *Controller) EditOrder(ctx context.Context, orderID string, req models.EditRequest) (*models.Order, error) {
	return c.client.Edit(ctx, orderID, req)
}

// DeleteOrder removes an order under authorization.
func (c *Controller) DeleteOrder(ctx context.Context, orderID, password string) error {
	return c.client.Delete(ctx, orderID, password)
}
