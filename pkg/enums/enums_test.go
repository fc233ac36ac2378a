package enums

import "testing"

func TestListingStatusTerminality(t *testing.T) {
	terminal := []ListingStatus{ListingStatusRejected, ListingStatusExpired, ListingStatusArchived}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	open := []ListingStatus{ListingStatusPendingApproval, ListingStatusActive, ListingStatusSoldOut, ListingStatusNeedsRepost}
	for _, s := range open {
		if s.IsTerminal() {
			t.Fatalf("expected %s to be non-terminal", s)
		}
	}
}

func TestTransactionStatusTerminality(t *testing.T) {
	terminal := []TransactionStatus{
		TransactionStatusCompleted,
		TransactionStatusCancelled,
		TransactionStatusEmergencyStopped,
		TransactionStatusResolvedAdmin,
	}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	if TransactionStatusDisputed.IsTerminal() {
		t.Fatal("disputed transactions still await resolution")
	}
	if TransactionStatusPendingDelivery.IsTerminal() {
		t.Fatal("pending_delivery is mid-flight")
	}
}

func TestParseRejectsUnknownValues(t *testing.T) {
	if _, err := ParseListingStatus("half_approved"); err == nil {
		t.Fatal("expected parse failure for unknown listing status")
	}
	if _, err := ParseEscrowStage("teleported"); err == nil {
		t.Fatal("expected parse failure for unknown escrow stage")
	}
	if _, err := ParseDisputeResolution("coin_flip"); err == nil {
		t.Fatal("expected parse failure for unknown resolution")
	}
	if _, err := ParseListingCategory("vehicles"); err == nil {
		t.Fatal("expected parse failure for unknown category")
	}
}

func TestAdminRoleRanking(t *testing.T) {
	if !AdminRoleOwner.AtLeast(AdminRoleAdmin) {
		t.Fatal("owner outranks admin")
	}
	if !AdminRoleAdmin.AtLeast(AdminRoleModerator) {
		t.Fatal("admin outranks moderator")
	}
	if AdminRoleModerator.AtLeast(AdminRoleAdmin) {
		t.Fatal("moderator must not outrank admin")
	}
	if AdminRole("stranger").AtLeast(AdminRoleModerator) {
		t.Fatal("unknown roles rank below everything")
	}
}
