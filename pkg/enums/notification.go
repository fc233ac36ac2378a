package enums

import "fmt"

// NotificationType identifies the structured event kinds emitted by the core
// for downstream formatting and delivery.
type NotificationType string

const (
	NotificationTypeListingApproved   NotificationType = "listing_approved"
	NotificationTypeListingRejected   NotificationType = "listing_rejected"
	NotificationTypeListingLowStock   NotificationType = "listing_low_stock"
	NotificationTypePurchaseCreated   NotificationType = "purchase_created"
	NotificationTypePaymentConfirmed  NotificationType = "payment_confirmed"
	NotificationTypeProofSubmitted    NotificationType = "proof_submitted"
	NotificationTypeDeliveryConfirmed NotificationType = "delivery_confirmed"
	NotificationTypeDisputeOpened     NotificationType = "dispute_opened"
	NotificationTypeDisputeResolved   NotificationType = "dispute_resolved"
	NotificationTypeReminderDue       NotificationType = "reminder_due"
	NotificationTypeEmergencyStop     NotificationType = "emergency_stop"
	NotificationTypeReportFiled       NotificationType = "report_filed"
	NotificationTypeRatingReceived    NotificationType = "rating_received"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeListingApproved,
	NotificationTypeListingRejected,
	NotificationTypeListingLowStock,
	NotificationTypePurchaseCreated,
	NotificationTypePaymentConfirmed,
	NotificationTypeProofSubmitted,
	NotificationTypeDeliveryConfirmed,
	NotificationTypeDisputeOpened,
	NotificationTypeDisputeResolved,
	NotificationTypeReminderDue,
	NotificationTypeEmergencyStop,
	NotificationTypeReportFiled,
	NotificationTypeRatingReceived,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
