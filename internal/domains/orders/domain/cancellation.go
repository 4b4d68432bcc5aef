package domain

import (
	"fmt"
	"strings"
)

// CancellationReason is the customer's stated reason for cancelling.
type CancellationReason string

const (
	ReasonChangedMind      CancellationReason = "changed_mind"
	ReasonFoundBetterPrice CancellationReason = "found_better_price"
	ReasonDelayedDelivery  CancellationReason = "delayed_delivery"
	ReasonWrongItem        CancellationReason = "wrong_item"
	ReasonDuplicateOrder   CancellationReason = "duplicate_order"
	ReasonOther            CancellationReason = "other"
)

// CancellationReasonOption pairs a reason with its display label.
type CancellationReasonOption struct {
	Value CancellationReason
	Label string
}

var cancellationReasons = []CancellationReasonOption{
	{Value: ReasonChangedMind, Label: "Changed my mind"},
	{Value: ReasonFoundBetterPrice, Label: "Found better price elsewhere"},
	{Value: ReasonDelayedDelivery, Label: "Delivery taking too long"},
	{Value: ReasonWrongItem, Label: "Ordered wrong item"},
	{Value: ReasonDuplicateOrder, Label: "Duplicate order"},
	{Value: ReasonOther, Label: "Other reason"},
}

// CancellationReasons lists the accepted reasons in display order.
func CancellationReasons() []CancellationReasonOption {
	return append([]CancellationReasonOption(nil), cancellationReasons...)
}

// Valid reports whether r is one of the accepted reasons.
func (r CancellationReason) Valid() bool {
	for _, opt := range cancellationReasons {
		if opt.Value == r {
			return true
		}
	}
	return false
}

// Label returns the display text for r, or the raw value when unknown.
func (r CancellationReason) Label() string {
	for _, opt := range cancellationReasons {
		if opt.Value == r {
			return opt.Label
		}
	}
	return string(r)
}

// RefundPolicy decides what happens to the payment status on cancellation.
type RefundPolicy string

const (
	// RefundPaidOnly marks the payment refunded only when it had been collected.
	RefundPaidOnly RefundPolicy = "paid_only"
	// RefundAlways marks every cancelled order refunded, whatever its payment status.
	RefundAlways RefundPolicy = "always"
)

// ParseRefundPolicy accepts the configuration spelling of a policy. Empty selects RefundPaidOnly.
func ParseRefundPolicy(raw string) (RefundPolicy, error) {
	switch RefundPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RefundPaidOnly:
		return RefundPaidOnly, nil
	case RefundAlways:
		return RefundAlways, nil
	default:
		return "", fmt.Errorf("unknown refund policy %q", raw)
	}
}

func (p RefundPolicy) refunds(current PaymentStatus) bool {
	if current == PaymentRefunded {
		return false
	}
	if p == RefundAlways {
		return true
	}
	return current == PaymentPaid
}
