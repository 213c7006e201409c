package booking

import "fmt"

// PaymentStatus tracks the state of funds for a booking, independent of the
// booking lifecycle itself.
type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentPaid       PaymentStatus = "paid"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentFailed     PaymentStatus = "failed"
)

// IsValid returns true if the status is a recognized payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentAuthorized, PaymentPaid, PaymentRefunded, PaymentFailed:
		return true
	}
	return false
}

// Refundable reports whether funds are held and can be returned.
func (s PaymentStatus) Refundable() bool {
	return s == PaymentAuthorized || s == PaymentPaid
}

// String returns the string representation of the status.
func (s PaymentStatus) String() string {
	return string(s)
}

// ParsePaymentStatus converts a string to a PaymentStatus, returning an error if invalid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}
