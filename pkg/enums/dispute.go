package enums

import "fmt"

// DisputeStatus tracks whether a dispute still needs admin attention.
type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusResolved DisputeStatus = "resolved"
)

var validDisputeStatuses = []DisputeStatus{
	DisputeStatusOpen,
	DisputeStatusResolved,
}

// IsValid reports whether the value is a known DisputeStatus.
func (d DisputeStatus) IsValid() bool {
	for _, candidate := range validDisputeStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisputeStatus converts raw input into a DisputeStatus.
func ParseDisputeStatus(value string) (DisputeStatus, error) {
	for _, candidate := range validDisputeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute status %q", value)
}

// DisputePriority drives notification urgency for admins.
type DisputePriority string

const (
	DisputePriorityNormal DisputePriority = "normal"
	DisputePriorityHigh   DisputePriority = "high"
)

var validDisputePriorities = []DisputePriority{
	DisputePriorityNormal,
	DisputePriorityHigh,
}

// IsValid reports whether the value is a known DisputePriority.
func (d DisputePriority) IsValid() bool {
	for _, candidate := range validDisputePriorities {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisputePriority converts raw input into a DisputePriority.
func ParseDisputePriority(value string) (DisputePriority, error) {
	for _, candidate := range validDisputePriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute priority %q", value)
}

// DisputeResolution records which party an admin sided with.
type DisputeResolution string

const (
	DisputeResolutionBuyerFavor  DisputeResolution = "buyer_favor"
	DisputeResolutionSellerFavor DisputeResolution = "seller_favor"
)

var validDisputeResolutions = []DisputeResolution{
	DisputeResolutionBuyerFavor,
	DisputeResolutionSellerFavor,
}

// IsValid reports whether the value is a known DisputeResolution.
func (d DisputeResolution) IsValid() bool {
	for _, candidate := range validDisputeResolutions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisputeResolution converts raw input into a DisputeResolution.
func ParseDisputeResolution(value string) (DisputeResolution, error) {
	for _, candidate := range validDisputeResolutions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute resolution %q", value)
}
