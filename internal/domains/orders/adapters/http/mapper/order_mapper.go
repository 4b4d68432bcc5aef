package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

// Address is the HTTP representation of a postal address.
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// PlaceOrderItem references a catalog artwork in a checkout payload.
type PlaceOrderItem struct {
	ArtworkID string `json:"artworkId"`
	Quantity  int32  `json:"quantity"`
}

// PlaceOrderRequest is the checkout payload. Totals are computed server-side from catalog prices.
type PlaceOrderRequest struct {
	UserID          string           `json:"userId"`
	Items           []PlaceOrderItem `json:"items"`
	Tax             decimal.Decimal  `json:"tax"`
	Shipping        decimal.Decimal  `json:"shipping"`
	Discount        decimal.Decimal  `json:"discount"`
	Currency        string           `json:"currency,omitempty"`
	PaymentMethod   string           `json:"paymentMethod"`
	ShippingAddress Address          `json:"shippingAddress"`
	BillingAddress  *Address         `json:"billingAddress,omitempty"`
}

// SetStatusRequest asks for a status transition.
type SetStatusRequest struct {
	UserID               string  `json:"userId"`
	Status               string  `json:"status"`
	TrackingNumber       *string `json:"trackingNumber,omitempty"`
	CancellationReason   *string `json:"cancellationReason,omitempty"`
	CancellationComments *string `json:"cancellationComments,omitempty"`
}

// UpdateDetailsRequest changes payment status or notes.
type UpdateDetailsRequest struct {
	UserID        string  `json:"userId"`
	PaymentStatus *string `json:"paymentStatus,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type Item struct {
	ArtworkID        string `json:"artworkId"`
	Quantity         int32  `json:"quantity"`
	PriceAtOrderTime string `json:"priceAtOrderTime"`
	Title            string `json:"title,omitempty"`
	ArtistID         string `json:"artistId,omitempty"`
}

type Totals struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"userId"`
	Items                []Item     `json:"items"`
	Totals               Totals     `json:"totals"`
	Status               string     `json:"status"`
	PaymentStatus        string     `json:"paymentStatus"`
	PaymentMethod        string     `json:"paymentMethod"`
	ShippingAddress      Address    `json:"shippingAddress"`
	BillingAddress       Address    `json:"billingAddress"`
	TrackingNumber       *string    `json:"trackingNumber,omitempty"`
	EstimatedDelivery    *time.Time `json:"estimatedDelivery,omitempty"`
	ActualDelivery       *time.Time `json:"actualDelivery,omitempty"`
	CancellationReason   *string    `json:"cancellationReason,omitempty"`
	CancellationComments *string    `json:"cancellationComments,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// StepProgress is one step of the tracking view.
type StepProgress struct {
	Step      int    `json:"step"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

// OrderStatus pairs an order with its tracking view.
type OrderStatus struct {
	Order          Order                   `json:"order"`
	StatusProgress map[string]StepProgress `json:"statusProgress"`
	CurrentStep    int                     `json:"currentStep"`
	Cancelled      bool                    `json:"cancelled"`
}

// CancellationReason is one entry of the cancel dialog.
type CancellationReason struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ToPlaceOrderInput maps a checkout payload into the service input.
func ToPlaceOrderInput(req PlaceOrderRequest) ports.PlaceOrderInput {
	items := make([]ports.PlaceOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = ports.PlaceOrderItem{ArtworkID: item.ArtworkID, Quantity: item.Quantity}
	}
	input := ports.PlaceOrderInput{
		UserID:          req.UserID,
		Items:           items,
		Tax:             req.Tax,
		Shipping:        req.Shipping,
		Discount:        req.Discount,
		Currency:        req.Currency,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: toDomainAddress(req.ShippingAddress),
	}
	if req.BillingAddress != nil {
		billing := toDomainAddress(*req.BillingAddress)
		input.BillingAddress = &billing
	}
	return input
}

// ToSetStatusInput maps a status request for the given order.
func ToSetStatusInput(orderID string, req SetStatusRequest) ports.SetStatusInput {
	input := ports.SetStatusInput{
		OrderID: orderID,
		UserID:  req.UserID,
		Status:  domain.Status(req.Status),
		Change: domain.StatusChange{
			TrackingNumber:       req.TrackingNumber,
			CancellationComments: req.CancellationComments,
		},
	}
	if req.CancellationReason != nil {
		reason := domain.CancellationReason(*req.CancellationReason)
		input.Change.CancellationReason = &reason
	}
	return input
}

// ToUpdateDetailsInput maps a details request for the given order.
func ToUpdateDetailsInput(orderID string, req UpdateDetailsRequest) ports.UpdateDetailsInput {
	input := ports.UpdateDetailsInput{OrderID: orderID, UserID: req.UserID, Notes: req.Notes}
	if req.PaymentStatus != nil {
		status := domain.PaymentStatus(*req.PaymentStatus)
		input.PaymentStatus = &status
	}
	return input
}

// FromOrder maps the aggregate into its HTTP representation.
func FromOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]Item, len(order.Items))
	for i, item := range order.Items {
		items[i] = Item{
			ArtworkID:        item.ArtworkID,
			Quantity:         item.Quantity,
			PriceAtOrderTime: item.PriceAtOrderTime.StringFixed(2),
			Title:            item.Title,
			ArtistID:         item.ArtistID,
		}
	}
	out := Order{
		ID:     order.ID,
		UserID: order.UserID,
		Items:  items,
		Totals: Totals{
			Subtotal: order.Totals.Subtotal.StringFixed(2),
			Tax:      order.Totals.Tax.StringFixed(2),
			Shipping: order.Totals.Shipping.StringFixed(2),
			Discount: order.Totals.Discount.StringFixed(2),
			Total:    order.Totals.Total.StringFixed(2),
			Currency: order.Totals.Currency,
		},
		Status:               string(order.Status),
		PaymentStatus:        string(order.PaymentStatus),
		PaymentMethod:        order.PaymentMethod,
		ShippingAddress:      fromDomainAddress(order.ShippingAddress),
		BillingAddress:       fromDomainAddress(order.BillingAddress),
		TrackingNumber:       order.TrackingNumber,
		EstimatedDelivery:    order.EstimatedDelivery,
		ActualDelivery:       order.ActualDelivery,
		CancellationComments: order.CancellationComments,
		Notes:                order.Notes,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
	if order.CancellationReason != nil {
		reason := string(*order.CancellationReason)
		out.CancellationReason = &reason
	}
	return out
}

// FromOrderList maps orders preserving their order.
func FromOrderList(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromOrder(order))
	}
	return out
}

// FromOrderStatus builds the tracking response from one snapshot of the order.
func FromOrderStatus(order *domain.Order) OrderStatus {
	progress := order.Progress()
	steps := make(map[string]StepProgress, len(progress.Steps))
	for status, step := range progress.Steps {
		steps[string(status)] = StepProgress{Step: step.Step, Label: step.Label, Completed: step.Completed}
	}
	return OrderStatus{
		Order:          FromOrder(order),
		StatusProgress: steps,
		CurrentStep:    progress.CurrentStep,
		Cancelled:      progress.Cancelled,
	}
}

// FromCancellationReasons lists the cancel dialog options.
func FromCancellationReasons(options []domain.CancellationReasonOption) []CancellationReason {
	out := make([]CancellationReason, len(options))
	for i, option := range options {
		out[i] = CancellationReason{Value: string(option.Value), Label: option.Label}
	}
	return out
}

func toDomainAddress(a Address) domain.Address {
	return domain.Address(a)
}

func fromDomainAddress(a domain.Address) Address {
	return Address(a)
}
