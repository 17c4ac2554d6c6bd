package models

import (
	"time"
)

// Status is the lifecycle state of an order. The happy path is
// Confirmed -> Dispatched -> Delivered; Cancelled exists in the data model
// but no operation in this system sets it.
type Status string

const (
	StatusConfirmed  Status = "Confirmed"
	StatusDispatched Status = "Dispatched"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusDispatched, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Next returns the single forward step on the happy path. The second return
// value is false when s has no forward step.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusConfirmed:
		return StatusDispatched, true
	case StatusDispatched:
		return StatusDelivered, true
	}
	return "", false
}

// CanTransition reports whether an order may move from one status directly to
// another. Only the two forward steps are legal; the preconditions for
// Cancelled are undefined, so it is never a legal target here.
func CanTransition(from, to Status) bool {
	next, ok := from.Next()
	return ok && next == to
}

type Order struct {
	OrderID          string        `json:"orderId"`
	Salesperson      string        `json:"salesperson"`
	CompanyName      string        `json:"companyName"`
	CompanyNumber    string        `json:"companyNumber"`
	DeliveryLocation string        `json:"deliveryLocation"`
	CurrentDate      string        `json:"currentDate"`
	DeliveryDate     string        `json:"deliveryDate"`
	Status           Status        `json:"status"`
	Items            []OrderItem   `json:"items"`
	DispatchInfo     *DispatchInfo `json:"dispatchInfo,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"qty"`
}

// DispatchInfo is present once an order reaches Dispatched. DispatchedAt is
// always stamped by the store's clock, never supplied by a client.
type DispatchInfo struct {
	DriverName   string    `json:"driverName"`
	VehicleName  string    `json:"vehicleName"`
	DispatchedAt time.Time `json:"dispatchedAt"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing shared item slices.
func (o *Order) Clone() *Order {
	dup := *o
	dup.Items = make([]OrderItem, len(o.Items))
	copy(dup.Items, o.Items)
	if o.DispatchInfo != nil {
		info := *o.DispatchInfo
		dup.DispatchInfo = &info
	}
	return &dup
}

type OrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
}

// NewOrderRequest is the body of POST /orders.
type NewOrderRequest struct {
	Salesperson         string         `json:"salesperson"`
	SalespersonPassword string         `json:"salespersonPassword"`
	CompanyName         string         `json:"companyName"`
	CompanyNumber       string         `json:"companyNumber"`
	CurrentDate         string         `json:"currentDate"`
	DeliveryDate        string         `json:"deliveryDate"`
	DeliveryLocation    string         `json:"deliveryLocation"`
	Items               []ItemSelector `json:"items"`
}

// ItemSelector references a product by id with a quantity; the store resolves
// the display name at write time.
type ItemSelector struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qty"`
}

// DispatchRequest is the body of PUT /orders/confirm-dispatch.
type DispatchRequest struct {
	OrderID     string `json:"orderId"`
	Salesperson string `json:"salesperson"`
	Password    string `json:"password"`
	DriverName  string `json:"driverName"`
	VehicleName string `json:"vehicleName"`
}

// DeliveryRequest is the body of PUT /orders/confirm-delivery.
type DeliveryRequest struct {
	OrderID     string `json:"orderId"`
	Salesperson string `json:"salesperson"`
	Password    string `json:"password"`
}

// EditRequest is the body of PATCH /orders/{orderId}. CompanyName and
// DeliveryDate are optional; an empty value leaves the field unchanged.
// UpdatedItems is a full replacement of the item list.
type EditRequest struct {
	SalespersonName     string         `json:"salespersonName"`
	SalespersonPassword string         `json:"salespersonPassword"`
	CompanyName         string         `json:"companyName,omitempty"`
	DeliveryDate        string         `json:"deliveryDate,omitempty"`
	UpdatedItems        []ItemSelector `json:"updatedItems"`
}

// DeleteRequest is the body of DELETE /orders/{orderId}.
type DeleteRequest struct {
	Password string `json:"password"`
}
