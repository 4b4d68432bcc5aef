package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusConfirmed Status = "confirmed"
	StatusPacked    Status = "packed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus tracks the settlement state of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const (
	// PaymentMethodCOD marks cash on delivery; such orders start with a pending payment.
	PaymentMethodCOD = "cod"
	// DefaultCurrency applies when checkout does not name one.
	DefaultCurrency = "INR"
	// DefaultDeliveryWindow is added to the placement time to estimate delivery.
	DefaultDeliveryWindow = 5 * 24 * time.Hour
)

var (
	ErrInvalidStatus              = errors.New("order status is invalid")
	ErrInvalidPaymentStatus       = errors.New("payment status is invalid")
	ErrInvalidTransition          = errors.New("order status transition is not allowed")
	ErrCancelNotAllowed           = fmt.Errorf("%w: order cannot be cancelled at this stage", ErrInvalidTransition)
	ErrCancellationReasonRequired = errors.New("cancellation reason is required")
	ErrInvalidCancellationReason  = errors.New("cancellation reason is invalid")
	ErrMissingUser                = errors.New("user id is required")
	ErrMissingOrderID             = errors.New("order id is required")
	ErrNoItems                    = errors.New("order must contain at least one item")
	ErrInvalidQuantity            = errors.New("quantity must be greater than zero")
	ErrMissingPaymentMethod       = errors.New("payment method is required")
	ErrMissingShippingAddress     = errors.New("shipping address is incomplete")
	ErrNegativeAmount             = errors.New("order amounts must not be negative")
	ErrInvalidAmount              = errors.New("order amounts must be in whole cents")
)

// Item is a line of an order. Price, title and artist are snapshotted at placement.
type Item struct {
	ArtworkID        string
	Quantity         int32
	PriceAtOrderTime decimal.Decimal
	Title            string
	ArtistID         string
}

// LineTotal returns price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.PriceAtOrderTime.Mul(decimal.NewFromInt32(i.Quantity))
}

// Totals holds the monetary breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Currency string
}

// Address is a postal address used for shipping and billing.
type Address struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

// Complete reports whether the address can be shipped to.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Line1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.Country) != ""
}

// Order models the storefront purchase aggregate.
type Order struct {
	ID                   string
	UserID               string
	Items                []Item
	Totals               Totals
	Status               Status
	PaymentStatus        PaymentStatus
	PaymentMethod        string
	ShippingAddress      Address
	BillingAddress       Address
	TrackingNumber       *string
	EstimatedDelivery    *time.Time
	ActualDelivery       *time.Time
	CancellationReason   *CancellationReason
	CancellationComments *string
	Notes                *string
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time

	events []Event
}

// NewOrderParams carries the checkout data needed to place an order.
type NewOrderParams struct {
	ID              string
	UserID          string
	Items           []Item
	Tax             decimal.Decimal
	Shipping        decimal.Decimal
	Discount        decimal.Decimal
	Currency        string
	PaymentMethod   string
	ShippingAddress Address
	BillingAddress  *Address
	TrackingNumber  string
	DeliveryWindow  time.Duration
	Now             time.Time
}

func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// NewOrder validates checkout input and builds an order in the placed state.
func NewOrder(p NewOrderParams) (*Order, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, ErrMissingOrderID
	}
	if strings.TrimSpace(p.UserID) == "" {
		return nil, ErrMissingUser
	}
	if len(p.Items) == 0 {
		return nil, ErrNoItems
	}
	if strings.TrimSpace(p.PaymentMethod) == "" {
		return nil, ErrMissingPaymentMethod
	}
	if !p.ShippingAddress.Complete() {
		return nil, ErrMissingShippingAddress
	}
	subtotal := decimal.Zero
	items := make([]Item, len(p.Items))
	for i, item := range p.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if item.PriceAtOrderTime.IsNegative() {
			return nil, ErrNegativeAmount
		}
		if !wholeCents(item.PriceAtOrderTime) {
			return nil, ErrInvalidAmount
		}
		items[i] = item
		subtotal = subtotal.Add(item.LineTotal())
	}
	if p.Tax.IsNegative() || p.Shipping.IsNegative() || p.Discount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if !wholeCents(p.Tax) || !wholeCents(p.Shipping) || !wholeCents(p.Discount) {
		return nil, ErrInvalidAmount
	}
	total := subtotal.Add(p.Tax).Add(p.Shipping).Sub(p.Discount)
	if total.IsNegative() {
		return nil, ErrNegativeAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	window := p.DeliveryWindow
	if window <= 0 {
		window = DefaultDeliveryWindow
	}
	now := p.Now.UTC()
	method := strings.ToLower(strings.TrimSpace(p.PaymentMethod))
	paymentStatus := PaymentPaid
	if method == PaymentMethodCOD {
		paymentStatus = PaymentPending
	}
	billing := p.ShippingAddress
	if p.BillingAddress != nil && p.BillingAddress.Complete() {
		billing = *p.BillingAddress
	}
	eta := now.Add(window)
	order := &Order{
		ID:     p.ID,
		UserID: p.UserID,
		Items:  items,
		Totals: Totals{
			Subtotal: subtotal,
			Tax:      p.Tax,
			Shipping: p.Shipping,
			Discount: p.Discount,
			Total:    total,
			Currency: currency,
		},
		Status:            StatusPlaced,
		PaymentStatus:     paymentStatus,
		PaymentMethod:     method,
		ShippingAddress:   p.ShippingAddress,
		BillingAddress:    billing,
		EstimatedDelivery: &eta,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if tn := strings.TrimSpace(p.TrackingNumber); tn != "" {
		order.TrackingNumber = &tn
	}
	order.record(OrderPlaced{
		BaseEvent: BaseEvent{Timestamp: now},
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     total,
		Currency:  currency,
	})
	return order, nil
}

// StatusChange carries the optional data that accompanies a status transition.
type StatusChange struct {
	TrackingNumber       *string
	CancellationReason   *CancellationReason
	CancellationComments *string
}

// SetStatus moves the order to next, applying the lifecycle rules.
// Validation happens before any field is touched, so a rejected call leaves the order as it was.
func (o *Order) SetStatus(next Status, change StatusChange, policy RefundPolicy, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if err := o.checkTransition(next, change); err != nil {
		return err
	}
	now = now.UTC()
	previous := o.Status
	previousPayment := o.PaymentStatus

	if change.TrackingNumber != nil {
		if tn := strings.TrimSpace(*change.TrackingNumber); tn != "" {
			o.TrackingNumber = &tn
		}
	}
	switch next {
	case StatusCancelled:
		if policy.refunds(o.PaymentStatus) {
			o.PaymentStatus = PaymentRefunded
		}
		o.TrackingNumber = nil
		o.EstimatedDelivery = nil
		reason := *change.CancellationReason
		o.CancellationReason = &reason
		o.CancellationComments = nil
		if change.CancellationComments != nil {
			if comments := strings.TrimSpace(*change.CancellationComments); comments != "" {
				o.CancellationComments = &comments
			}
		}
	case StatusDelivered:
		if o.ActualDelivery == nil {
			delivered := now
			o.ActualDelivery = &delivered
		}
	}
	o.Status = next
	o.UpdatedAt = now

	o.record(StatusChanged{
		BaseEvent:     BaseEvent{Timestamp: now},
		OrderID:       o.ID,
		UserID:        o.UserID,
		From:          previous,
		To:            next,
		PaymentStatus: o.PaymentStatus,
	})
	if previousPayment != PaymentRefunded && o.PaymentStatus == PaymentRefunded {
		o.record(RefundRequested{
			BaseEvent: BaseEvent{Timestamp: now},
			OrderID:   o.ID,
			UserID:    o.UserID,
			Amount:    o.Totals.Total,
			Currency:  o.Totals.Currency,
		})
	}
	return nil
}

func (o *Order) checkTransition(next Status, change StatusChange) error {
	if next == StatusCancelled {
		if o.Status != StatusPlaced && o.Status != StatusConfirmed {
			return ErrCancelNotAllowed
		}
		if change.CancellationReason == nil || strings.TrimSpace(string(*change.CancellationReason)) == "" {
			return ErrCancellationReasonRequired
		}
		if !change.CancellationReason.Valid() {
			return ErrInvalidCancellationReason
		}
		return nil
	}
	switch o.Status {
	case StatusCancelled:
		return ErrInvalidTransition
	case StatusDelivered:
		if next != StatusDelivered {
			return ErrInvalidTransition
		}
		return nil
	}
	if next.rank() < o.Status.rank() {
		return ErrInvalidTransition
	}
	return nil
}

// UpdatePaymentStatus records a settlement change reported outside the status flow.
func (o *Order) UpdatePaymentStatus(status PaymentStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidPaymentStatus
	}
	if o.Status == StatusCancelled {
		return ErrInvalidTransition
	}
	o.PaymentStatus = status
	o.UpdatedAt = now.UTC()
	return nil
}

// SetNotes replaces the free-form notes. An empty value clears them.
func (o *Order) SetNotes(notes string, now time.Time) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		o.Notes = nil
	} else {
		o.Notes = &notes
	}
	o.UpdatedAt = now.UTC()
}

// OwnedBy reports whether userID placed the order.
func (o *Order) OwnedBy(userID string) bool {
	return o != nil && userID != "" && o.UserID == userID
}

// Progress computes the tracking view for the current status.
func (o *Order) Progress() Progress {
	return StatusProgress(o.Status)
}

// Events returns the domain events recorded since the last ClearEvents.
func (o *Order) Events() []Event {
	return append([]Event(nil), o.events...)
}

// ClearEvents drops recorded events.
func (o *Order) ClearEvents() {
	o.events = nil
}

func (o *Order) record(event Event) {
	o.events = append(o.events, event)
}

// Clone returns a deep copy without recorded events.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.events = nil
	clone.Items = append([]Item(nil), o.Items...)
	clone.TrackingNumber = clonePtr(o.TrackingNumber)
	clone.EstimatedDelivery = clonePtr(o.EstimatedDelivery)
	clone.ActualDelivery = clonePtr(o.ActualDelivery)
	clone.CancellationReason = clonePtr(o.CancellationReason)
	clone.CancellationComments = clonePtr(o.CancellationComments)
	clone.Notes = clonePtr(o.Notes)
	return &clone
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusConfirmed, StatusPacked, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}
