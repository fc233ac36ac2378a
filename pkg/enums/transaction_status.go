package enums

import "fmt"

// TransactionStatus tracks the coarse lifecycle of an escrow transaction.
type TransactionStatus string

const (
	TransactionStatusPendingPayment   TransactionStatus = "pending_payment"
	TransactionStatusPendingDelivery  TransactionStatus = "pending_delivery"
	TransactionStatusCompleted        TransactionStatus = "completed"
	TransactionStatusDisputed         TransactionStatus = "disputed"
	TransactionStatusCancelled        TransactionStatus = "cancelled"
	TransactionStatusEmergencyStopped TransactionStatus = "emergency_stopped"
	TransactionStatusResolvedAdmin    TransactionStatus = "resolved_admin"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusPendingPayment,
	TransactionStatusPendingDelivery,
	TransactionStatusCompleted,
	TransactionStatusDisputed,
	TransactionStatusCancelled,
	TransactionStatusEmergencyStopped,
	TransactionStatusResolvedAdmin,
}

// String implements fmt.Stringer.
func (t TransactionStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionStatus.
func (t TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the transaction accepts no further transitions.
func (t TransactionStatus) IsTerminal() bool {
	switch t {
	case TransactionStatusCompleted, TransactionStatusCancelled,
		TransactionStatusEmergencyStopped, TransactionStatusResolvedAdmin:
		return true
	default:
		return false
	}
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
