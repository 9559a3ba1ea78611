package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-dashboard/internal/model"
)

// IdentityRepository stores accounts for the authentication provider.
type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Create inserts a new identity. Email is stored lower-cased.
func (r *IdentityRepository) Create(ctx context.Context, identity *model.Identity) error {
	identity.ID = uuid.NewString()
	identity.Email = normalizeEmail(identity.Email)
	if err := r.db.WithContext(ctx).Create(identity).Error; err != nil {
		return fmt.Errorf("create identity: %w", translate(err))
	}
	return nil
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	var identity model.Identity
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&identity).Error; err != nil {
		return nil, fmt.Errorf("find identity: %w", translate(err))
	}
	return &identity, nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*model.Identity, error) {
	var identity model.Identity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&identity).Error; err != nil {
		return nil, fmt.Errorf("find identity: %w", translate(err))
	}
	return &identity, nil
}

func (r *IdentityRepository) FindByResetToken(ctx context.Context, token string) (*model.Identity, error) {
	var identity model.Identity
	if err := r.db.WithContext(ctx).Where("reset_token = ? AND reset_token <> ''", token).First(&identity).Error; err != nil {
		return nil, fmt.Errorf("find identity by reset token: %w", translate(err))
	}
	return &identity, nil
}

// BumpTokenVersion invalidates every token issued before the call.
func (r *IdentityRepository) BumpTokenVersion(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]interface{}{"token_version": gorm.Expr("token_version + 1")})
}

func (r *IdentityRepository) SetResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"reset_token":      token,
		"reset_expires_at": expiresAt,
	})
}

// UpdatePassword stores a new hash, clears any pending reset and revokes
// outstanding tokens.
func (r *IdentityRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash":    passwordHash,
		"reset_token":      "",
		"reset_expires_at": nil,
		"token_version":    gorm.Expr("token_version + 1"),
	})
}

func (r *IdentityRepository) update(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Identity{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update identity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update identity %s: %w", id, ErrNotFound)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
