package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

// Service is the capability gate for privileged operations. The configured
// owner is a distinguished, non-revocable admin; everyone else holds a
// persisted grant.
type Service interface {
	RoleOf(ctx context.Context, userID string) (enums.AdminRole, bool, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	IsOwner(userID string) bool
	Require(ctx context.Context, userID string, minimum enums.AdminRole) error
	Grant(ctx context.Context, userID string, role enums.AdminRole, grantedBy string) (*models.AdminGrant, error)
	Revoke(ctx context.Context, userID, revokedBy string) error
	ListGrants(ctx context.Context) ([]models.AdminGrant, error)
}

type service struct {
	db      *gorm.DB
	ownerID string
}

// NewService constructs the authorization service.
func NewService(db *gorm.DB, ownerID string) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("owner id required")
	}
	return &service{db: db, ownerID: ownerID}, nil
}

// RoleOf resolves a user's staff role. The second return is false for
// ordinary users.
func (s *service) RoleOf(ctx context.Context, userID string) (enums.AdminRole, bool, error) {
	if userID == s.ownerID {
		return enums.AdminRoleOwner, true, nil
	}
	var grant models.AdminGrant
	err := s.db.WithContext(ctx).First(&grant, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin grant")
	}
	return grant.Role, true, nil
}

// IsAdmin reports whether the user holds admin rank or better.
func (s *service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	role, ok, err := s.RoleOf(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	return role.AtLeast(enums.AdminRoleAdmin), nil
}

// IsOwner reports whether the user is the configured owner.
func (s *service) IsOwner(userID string) bool {
	return userID == s.ownerID
}

// Require fails with a forbidden error unless the user holds at least the
// given role.
func (s *service) Require(ctx context.Context, userID string, minimum enums.AdminRole) error {
	role, ok, err := s.RoleOf(ctx, userID)
	if err != nil {
		return err
	}
	if !ok || !role.AtLeast(minimum) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
	}
	return nil
}

// Grant assigns or updates a staff role. Only the owner may mint admins;
// admins may mint moderators. The owner role itself is never grantable.
func (s *service) Grant(ctx context.Context, userID string, role enums.AdminRole, grantedBy string) (*models.AdminGrant, error) {
	if !role.IsValid() || role == enums.AdminRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be admin or moderator")
	}
	if userID == s.ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner role is fixed")
	}
	required := enums.AdminRoleAdmin
	if role == enums.AdminRoleAdmin {
		required = enums.AdminRoleOwner
	}
	if err := s.Require(ctx, grantedBy, required); err != nil {
		return nil, err
	}

	grant := &models.AdminGrant{UserID: userID, Role: role, GrantedBy: grantedBy}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "granted_by", "updated_at"}),
		}).
		Create(grant).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert admin grant")
	}
	return grant, nil
}

// Revoke removes a staff grant. The owner cannot be revoked.
func (s *service) Revoke(ctx context.Context, userID, revokedBy string) error {
	if userID == s.ownerID {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner cannot be revoked")
	}
	if err := s.Require(ctx, revokedBy, enums.AdminRoleOwner); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AdminGrant{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: delete admin grant")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no grant for user")
	}
	return nil
}

// ListGrants returns all persisted grants. The owner is implicit and not
// included.
func (s *service) ListGrants(ctx context.Context) ([]models.AdminGrant, error) {
	var rows []models.AdminGrant
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	return rows, err
}
