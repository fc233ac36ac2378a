package enums

import "fmt"

// EscrowStage is the fine-grained sub-state of a transaction tracking the
// manual payment/delivery/proof handshake between the two parties.
type EscrowStage string

const (
	EscrowStageAwaitingPayment   EscrowStage = "awaiting_payment"
	EscrowStagePaymentConfirmed  EscrowStage = "payment_confirmed"
	EscrowStageAwaitingDelivery  EscrowStage = "awaiting_delivery"
	EscrowStageProofSubmitted    EscrowStage = "proof_submitted"
	EscrowStageDeliveryConfirmed EscrowStage = "delivery_confirmed"
	EscrowStageCompleted         EscrowStage = "completed"
	EscrowStageDisputed          EscrowStage = "disputed"
)

var validEscrowStages = []EscrowStage{
	EscrowStageAwaitingPayment,
	EscrowStagePaymentConfirmed,
	EscrowStageAwaitingDelivery,
	EscrowStageProofSubmitted,
	EscrowStageDeliveryConfirmed,
	EscrowStageCompleted,
	EscrowStageDisputed,
}

// String implements fmt.Stringer.
func (s EscrowStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known EscrowStage.
func (s EscrowStage) IsValid() bool {
	for _, candidate := range validEscrowStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the escrow handshake has ended.
func (s EscrowStage) IsTerminal() bool {
	switch s {
	case EscrowStageCompleted, EscrowStageDisputed:
		return true
	default:
		return false
	}
}

// ParseEscrowStage converts raw input into an EscrowStage.
func ParseEscrowStage(value string) (EscrowStage, error) {
	for _, candidate := range validEscrowStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid escrow stage %q", value)
}
