package enums

import "fmt"

// ListingStatus tracks the lifecycle of a marketplace listing.
type ListingStatus string

const (
	ListingStatusPendingApproval ListingStatus = "pending_approval"
	ListingStatusActive          ListingStatus = "active"
	ListingStatusSoldOut         ListingStatus = "sold_out"
	ListingStatusRejected        ListingStatus = "rejected"
	ListingStatusExpired         ListingStatus = "expired"
	ListingStatusArchived        ListingStatus = "archived"
	ListingStatusNeedsRepost     ListingStatus = "needs_repost"
)

var validListingStatuses = []ListingStatus{
	ListingStatusPendingApproval,
	ListingStatusActive,
	ListingStatusSoldOut,
	ListingStatusRejected,
	ListingStatusExpired,
	ListingStatusArchived,
	ListingStatusNeedsRepost,
}

// String implements fmt.Stringer.
func (l ListingStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingStatus.
func (l ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the listing can no longer be sold from.
func (l ListingStatus) IsTerminal() bool {
	switch l {
	case ListingStatusRejected, ListingStatusExpired, ListingStatusArchived:
		return true
	default:
		return false
	}
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
