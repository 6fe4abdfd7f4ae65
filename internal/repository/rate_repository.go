package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vehicle-ticket-service/internal/domain/ticket"
)

type RateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

type RateRowRecord struct {
	ID                int64  `gorm:"primaryKey"`
	VehicleType       string `gorm:"not null"`
	Service           string `gorm:"not null"`
	WheelCategoryCode *string
	Price             decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (RateRowRecord) TableName() string {
	return "rate_rows"
}

type WorkshopRateRecord struct {
	ID              int64            `gorm:"primaryKey"`
	Workshop        string           `gorm:"not null"`
	VehicleType     string           `gorm:"not null"`
	Price           decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	DiscountPercent *decimal.Decimal `gorm:"type:numeric(5,2)"`
}

func (WorkshopRateRecord) TableName() string {
	return "workshop_rate_rows"
}

type VehicleModelRecord struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Brand             string    `gorm:"not null"`
	Model             string    `gorm:"not null"`
	WheelCategoryCode *string
}

func (VehicleModelRecord) TableName() string {
	return "vehicle_models"
}

// QueryRateRows returns the rate matrix in id order; resolution picks the
// first match, so the order must be stable.
func (r *RateRepository) QueryRateRows(ctx context.Context) ([]ticket.RateRow, error) {
	var records []RateRowRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, classify("query_rate_rows", err)
	}
	rows := make([]ticket.RateRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ticket.RateRow{
			VehicleType:       rec.VehicleType,
			Service:           rec.Service,
			WheelCategoryCode: deref(rec.WheelCategoryCode),
			Price:             rec.Price,
		})
	}
	return rows, nil
}

func (r *RateRepository) QueryWorkshopRateRows(ctx context.Context) ([]ticket.WorkshopRateRow, error) {
	var records []WorkshopRateRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, classify("query_workshop_rate_rows", err)
	}
	rows := make([]ticket.WorkshopRateRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ticket.WorkshopRateRow{
			Workshop:        rec.Workshop,
			VehicleType:     rec.VehicleType,
			Price:           rec.Price,
			DiscountPercent: rec.DiscountPercent,
		})
	}
	return rows, nil
}

func (r *RateRepository) QueryVehicleModels(ctx context.Context) ([]ticket.VehicleModelRow, error) {
	var records []VehicleModelRecord
	if err := r.db.WithContext(ctx).Order("brand ASC, model ASC").Find(&records).Error; err != nil {
		return nil, classify("query_vehicle_models", err)
	}
	rows := make([]ticket.VehicleModelRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ticket.VehicleModelRow{
			ID:                rec.ID,
			Brand:             rec.Brand,
			Model:             rec.Model,
			WheelCategoryCode: deref(rec.WheelCategoryCode),
		})
	}
	return rows, nil
}
