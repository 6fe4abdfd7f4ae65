package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/utils"
)

const maxTicketPage = 500

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

type TicketRow struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	EntryType         string    `gorm:"not null"`
	VehiclePlate      string    `gorm:"not null"`
	PlateNormalized   string    `gorm:"not null"`
	VehicleType       string    `gorm:"not null"`
	WheelCategoryCode *string
	Services          datatypes.JSON `gorm:"type:jsonb"`
	WorkshopName      *string
	Amount            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMode       string          `gorm:"not null"`
	PaymentAccountID  *uuid.UUID      `gorm:"type:uuid"`
	ApprovalStatus    string          `gorm:"not null"`
	EntryTime         time.Time       `gorm:"not null"`
	ExitTime          *time.Time
	ApprovedAt        *time.Time
	PaymentDate       *time.Time
	CustomerName      *string
	CustomerPhone     *string
	CustomerDOB       *time.Time `gorm:"column:customer_dob"`
	CustomerLocation  *string
	VehicleBrand      *string
	VehicleModel      *string
	VehicleModelID    *uuid.UUID `gorm:"type:uuid"`
	Remarks           *string
	LocationID        uuid.UUID `gorm:"type:uuid;not null"`
	CreatedBy         uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (TicketRow) TableName() string {
	return "tickets"
}

func filterTickets(query *gorm.DB, f ticket.Filter) *gorm.DB {
	if f.LocationID != nil {
		query = query.Where("location_id = ?", *f.LocationID)
	}
	if f.From != nil {
		query = query.Where("entry_time >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("entry_time <= ?", *f.To)
	}
	if f.ApprovalStatus != nil {
		query = query.Where("approval_status = ?", string(*f.ApprovalStatus))
	}
	if f.PaymentMode != nil {
		query = query.Where("payment_mode = ?", string(*f.PaymentMode))
	}
	if plate := utils.NormalizePlate(f.PlateLike); plate != "" {
		query = query.Where("plate_normalized LIKE ?", "%"+plate+"%")
	}
	return query
}

func (r *TicketRepository) QueryTickets(ctx context.Context, f ticket.Filter) ([]ticket.Ticket, error) {
	query := filterTickets(r.db.WithContext(ctx).Model(&TicketRow{}), f).Order("created_at DESC")

	limit := f.Limit
	if limit <= 0 || limit > maxTicketPage {
		limit = maxTicketPage
	}
	query = query.Limit(limit)
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var rows []TicketRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, classify("query_tickets", err)
	}
	out := make([]ticket.Ticket, 0, len(rows))
	for _, row := range rows {
		t, err := row.toDomain()
		if err != nil {
			return nil, classify("query_tickets", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// CountTickets counts every row matching f. Limit and Offset are ignored.
func (r *TicketRepository) CountTickets(ctx context.Context, f ticket.Filter) (int64, error) {
	var n int64
	if err := filterTickets(r.db.WithContext(ctx).Model(&TicketRow{}), f).Count(&n).Error; err != nil {
		return 0, classify("count_tickets", err)
	}
	return n, nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	var row TicketRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, classify("get_ticket", err)
	}
	t, err := row.toDomain()
	if err != nil {
		return nil, classify("get_ticket", err)
	}
	return &t, nil
}

func (r *TicketRepository) InsertTicket(ctx context.Context, t ticket.Ticket) (*ticket.Ticket, error) {
	row, err := ticketRow(t)
	if err != nil {
		return nil, classify("insert_ticket", err)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, classify("insert_ticket", err)
	}
	out, err := row.toDomain()
	if err != nil {
		return nil, classify("insert_ticket", err)
	}
	return &out, nil
}

// UpdateTicket writes t only if the stored row is still in the expected
// lifecycle state. A lost race comes back as a conflict.
func (r *TicketRepository) UpdateTicket(ctx context.Context, t ticket.Ticket, expected ticket.State) (*ticket.Ticket, error) {
	row, err := ticketRow(t)
	if err != nil {
		return nil, classify("update_ticket", err)
	}
	row.UpdatedAt = time.Now()

	cond, args := stateCondition(expected)
	res := r.db.WithContext(ctx).
		Model(&TicketRow{}).
		Where("id = ?", t.ID).
		Where(cond, args...).
		Updates(row.columns())
	if res.Error != nil {
		return nil, classify("update_ticket", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&TicketRow{}).Where("id = ?", t.ID).Count(&count).Error; err != nil {
			return nil, classify("update_ticket", err)
		}
		if count == 0 {
			return nil, notFound("update_ticket")
		}
		return nil, &ticket.StoreError{Op: "update_ticket", Kind: ticket.StoreConflict}
	}
	out, err := row.toDomain()
	if err != nil {
		return nil, classify("update_ticket", err)
	}
	return &out, nil
}

// stateCondition is the SQL form of ticket.Ticket.State.
func stateCondition(s ticket.State) (string, []interface{}) {
	approved := string(ticket.StatusApproved)
	deferred := string(ticket.PaymentDeferred)
	switch s {
	case ticket.StateAwaitingPayment:
		return "approval_status = ? AND payment_mode = ? AND payment_date IS NULL", []interface{}{approved, deferred}
	case ticket.StateSettled:
		return "approval_status = ? AND (payment_mode <> ? OR payment_date IS NOT NULL)", []interface{}{approved, deferred}
	case ticket.StateRejected:
		return "approval_status = ?", []interface{}{string(ticket.StatusRejected)}
	default:
		return "approval_status = ?", []interface{}{string(ticket.StatusPending)}
	}
}

func (r *TicketRepository) DeleteTicket(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TicketRow{})
	if res.Error != nil {
		return classify("delete_ticket", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("delete_ticket")
	}
	return nil
}

// ActiveLocations lists the locations with tickets entered in [from, to).
func (r *TicketRepository) ActiveLocations(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&TicketRow{}).
		Where("entry_time >= ? AND entry_time < ?", from, to).
		Distinct().
		Pluck("location_id", &ids).Error
	if err != nil {
		return nil, classify("ticket_locations", err)
	}
	return ids, nil
}

func ticketRow(t ticket.Ticket) (TicketRow, error) {
	services := t.ServicesChosen
	if services == nil {
		services = []string{}
	}
	raw, err := json.Marshal(services)
	if err != nil {
		return TicketRow{}, err
	}
	row := TicketRow{
		ID:                t.ID,
		EntryType:         string(t.EntryType),
		VehiclePlate:      t.VehiclePlate,
		PlateNormalized:   utils.NormalizePlate(t.VehiclePlate),
		VehicleType:       t.VehicleTypeLabel,
		WheelCategoryCode: optString(t.WheelCategoryCode),
		Services:          datatypes.JSON(raw),
		WorkshopName:      optString(t.WorkshopName),
		Amount:            t.Amount,
		Discount:          t.Discount,
		PaymentMode:       string(t.PaymentMode),
		PaymentAccountID:  t.PaymentAccountRef,
		ApprovalStatus:    string(t.ApprovalStatus),
		EntryTime:         t.EntryTime,
		ExitTime:          t.ExitTime,
		ApprovedAt:        t.ApprovedAt,
		PaymentDate:       t.PaymentDate,
		CustomerName:      optString(t.Customer.Name),
		CustomerPhone:     optString(t.Customer.Phone),
		CustomerDOB:       t.Customer.DOB,
		CustomerLocation:  optString(t.Customer.Location),
		VehicleBrand:      optString(t.Vehicle.Brand),
		VehicleModel:      optString(t.Vehicle.Model),
		VehicleModelID:    t.Vehicle.ModelRef,
		Remarks:           optString(t.Remarks),
		LocationID:        t.LocationID,
		CreatedBy:         t.CreatedBy,
		CreatedAt:         t.CreatedAt,
	}
	return row, nil
}

// columns lists every mutable column, including cleared ones, so an update
// never leaves stale values behind.
func (row TicketRow) columns() map[string]interface{} {
	return map[string]interface{}{
		"entry_type":          row.EntryType,
		"vehicle_plate":       row.VehiclePlate,
		"plate_normalized":    row.PlateNormalized,
		"vehicle_type":        row.VehicleType,
		"wheel_category_code": row.WheelCategoryCode,
		"services":            row.Services,
		"workshop_name":       row.WorkshopName,
		"amount":              row.Amount,
		"discount":            row.Discount,
		"payment_mode":        row.PaymentMode,
		"payment_account_id":  row.PaymentAccountID,
		"approval_status":     row.ApprovalStatus,
		"entry_time":          row.EntryTime,
		"exit_time":           row.ExitTime,
		"approved_at":         row.ApprovedAt,
		"payment_date":        row.PaymentDate,
		"customer_name":       row.CustomerName,
		"customer_phone":      row.CustomerPhone,
		"customer_dob":        row.CustomerDOB,
		"customer_location":   row.CustomerLocation,
		"vehicle_brand":       row.VehicleBrand,
		"vehicle_model":       row.VehicleModel,
		"vehicle_model_id":    row.VehicleModelID,
		"remarks":             row.Remarks,
		"updated_at":          row.UpdatedAt,
	}
}

// toDomain fails on an unreadable services column so an edit never writes
// back an empty list over it.
func (row TicketRow) toDomain() (ticket.Ticket, error) {
	services := []string{}
	if len(row.Services) > 0 {
		if err := json.Unmarshal(row.Services, &services); err != nil {
			return ticket.Ticket{}, fmt.Errorf("ticket %s: decode services: %w", row.ID, err)
		}
	}
	return ticket.Ticket{
		ID:                row.ID,
		EntryType:         ticket.EntryType(row.EntryType),
		VehiclePlate:      row.VehiclePlate,
		VehicleTypeLabel:  row.VehicleType,
		WheelCategoryCode: deref(row.WheelCategoryCode),
		ServicesChosen:    services,
		WorkshopName:      deref(row.WorkshopName),
		Amount:            row.Amount,
		Discount:          row.Discount,
		PaymentMode:       ticket.PaymentMode(row.PaymentMode),
		PaymentAccountRef: row.PaymentAccountID,
		ApprovalStatus:    ticket.ApprovalStatus(row.ApprovalStatus),
		EntryTime:         row.EntryTime,
		ExitTime:          row.ExitTime,
		ApprovedAt:        row.ApprovedAt,
		PaymentDate:       row.PaymentDate,
		CreatedAt:         row.CreatedAt,
		Customer: ticket.Customer{
			Name:     deref(row.CustomerName),
			Phone:    deref(row.CustomerPhone),
			DOB:      row.CustomerDOB,
			Location: deref(row.CustomerLocation),
		},
		Vehicle: ticket.Vehicle{
			Brand:    deref(row.VehicleBrand),
			Model:    deref(row.VehicleModel),
			ModelRef: row.VehicleModelID,
		},
		Remarks:    deref(row.Remarks),
		LocationID: row.LocationID,
		CreatedBy:  row.CreatedBy,
	}, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
