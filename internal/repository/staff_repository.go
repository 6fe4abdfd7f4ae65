package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

type StaffAccount struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email            string    `gorm:"not null;uniqueIndex"`
	PasswordHash     string    `gorm:"not null"`
	EmailConfirmedAt *time.Time
	Role             string     `gorm:"not null"`
	LocationID       *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (StaffAccount) TableName() string {
	return "staff_accounts"
}

func (r *StaffRepository) GetStaff(ctx context.Context, id uuid.UUID) (*StaffAccount, error) {
	var acc StaffAccount
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&acc).Error; err != nil {
		return nil, classify("get_staff", err)
	}
	return &acc, nil
}

// UpdateCredentials applies only the non-nil changes.
func (r *StaffRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, email *string, confirmedAt *time.Time, passwordHash *string) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if email != nil {
		updates["email"] = *email
		updates["email_confirmed_at"] = confirmedAt
	}
	if passwordHash != nil {
		updates["password_hash"] = *passwordHash
	}

	res := r.db.WithContext(ctx).Model(&StaffAccount{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return classify("update_staff_credentials", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("update_staff_credentials")
	}
	return nil
}
