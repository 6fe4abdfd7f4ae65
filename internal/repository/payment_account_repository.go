package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vehicle-ticket-service/internal/domain/ticket"
)

type PaymentAccountRepository struct {
	db *gorm.DB
}

func NewPaymentAccountRepository(db *gorm.DB) *PaymentAccountRepository {
	return &PaymentAccountRepository{db: db}
}

type PaymentAccountRecord struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LocationID  *uuid.UUID `gorm:"type:uuid"`
	AccountName string     `gorm:"not null"`
	Identifier  string     `gorm:"not null"`
	QRAssetRef  *string    `gorm:"column:qr_asset_ref"`
	Active      bool       `gorm:"not null"`
	CreatedAt   time.Time
}

func (PaymentAccountRecord) TableName() string {
	return "payment_accounts"
}

// QueryPaymentAccounts returns active accounts of a location together with
// the ones shared by every location.
func (r *PaymentAccountRepository) QueryPaymentAccounts(ctx context.Context, locationID *uuid.UUID) ([]ticket.PaymentAccount, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)
	if locationID != nil {
		query = query.Where("location_id = ? OR location_id IS NULL", *locationID)
	}

	var records []PaymentAccountRecord
	if err := query.Order("account_name ASC").Find(&records).Error; err != nil {
		return nil, classify("query_payment_accounts", err)
	}
	accounts := make([]ticket.PaymentAccount, 0, len(records))
	for _, rec := range records {
		accounts = append(accounts, ticket.PaymentAccount{
			ID:          rec.ID,
			LocationID:  rec.LocationID,
			AccountName: rec.AccountName,
			Identifier:  rec.Identifier,
			QRAssetRef:  deref(rec.QRAssetRef),
			Active:      rec.Active,
		})
	}
	return accounts, nil
}
