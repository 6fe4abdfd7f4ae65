package ticket

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryCustomer EntryType = "customer"
	EntryWorkshop EntryType = "workshop"
)

type PaymentMode string

const (
	PaymentCash               PaymentMode = "cash"
	PaymentElectronicTransfer PaymentMode = "electronic_transfer"
	PaymentDeferred           PaymentMode = "deferred"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentElectronicTransfer, PaymentDeferred:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type RateRow struct {
	VehicleType       string          `json:"vehicle_type"`
	Service           string          `json:"service"`
	WheelCategoryCode string          `json:"wheel_category_code,omitempty"`
	Price             decimal.Decimal `json:"price"`
}

type WorkshopRateRow struct {
	Workshop        string           `json:"workshop"`
	VehicleType     string           `json:"vehicle_type"`
	Price           decimal.Decimal  `json:"price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

// VehicleModelRow is one entry of the brand/model catalog used for autofill
// and category-gated brand selection.
type VehicleModelRow struct {
	ID                uuid.UUID `json:"id"`
	Brand             string    `json:"brand"`
	Model             string    `json:"model"`
	WheelCategoryCode string    `json:"wheel_category_code,omitempty"`
}

type PaymentAccount struct {
	ID          uuid.UUID  `json:"id"`
	LocationID  *uuid.UUID `json:"location_id,omitempty"`
	AccountName string     `json:"account_name"`
	Identifier  string     `json:"identifier"`
	QRAssetRef  string     `json:"qr_asset_ref,omitempty"`
	Active      bool       `json:"active"`
}

type Customer struct {
	Name     string     `json:"name,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	DOB      *time.Time `json:"dob,omitempty"`
	Location string     `json:"location,omitempty"`
}

type Vehicle struct {
	Brand    string     `json:"brand,omitempty"`
	Model    string     `json:"model,omitempty"`
	ModelRef *uuid.UUID `json:"model_ref,omitempty"`
}

// Ticket is a manually logged vehicle visit.
type Ticket struct {
	ID                uuid.UUID       `json:"id"`
	EntryType         EntryType       `json:"entry_type"`
	VehiclePlate      string          `json:"vehicle_plate"`
	VehicleTypeLabel  string          `json:"vehicle_type"`
	WheelCategoryCode string          `json:"wheel_category_code,omitempty"`
	ServicesChosen    []string        `json:"services"`
	WorkshopName      string          `json:"workshop_name,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Discount          decimal.Decimal `json:"discount"`
	PaymentMode       PaymentMode     `json:"payment_mode"`
	PaymentAccountRef *uuid.UUID      `json:"payment_account_ref,omitempty"`
	ApprovalStatus    ApprovalStatus  `json:"approval_status"`
	EntryTime         time.Time       `json:"entry_time"`
	ExitTime          *time.Time      `json:"exit_time,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	Customer          Customer        `json:"customer"`
	Vehicle           Vehicle         `json:"vehicle"`
	Remarks           string          `json:"remarks,omitempty"`
	LocationID        uuid.UUID       `json:"location_id"`
	CreatedBy         uuid.UUID       `json:"created_by"`
}

// Category returns the selected wheel category of the ticket.
func (t Ticket) Category() Category {
	return ParseSelectedCategory(t.WheelCategoryCode)
}

// Draft is the operator's in-progress ticket form. Every derived value
// (amount, selectable options) is recomputed from it by pure functions.
type Draft struct {
	EntryType         EntryType        `json:"entry_type"`
	VehiclePlate      string           `json:"vehicle_plate"`
	VehicleTypeLabel  string           `json:"vehicle_type"`
	Category          Category         `json:"category"`
	ServicesChosen    []string         `json:"services"`
	WorkshopName      string           `json:"workshop_name,omitempty"`
	ManualAmount      *decimal.Decimal `json:"manual_amount,omitempty"`
	Discount          decimal.Decimal  `json:"discount"`
	DiscountOverride  bool             `json:"discount_override,omitempty"`
	PaymentMode       PaymentMode      `json:"payment_mode"`
	PaymentAccountRef *uuid.UUID       `json:"payment_account_ref,omitempty"`
	Customer          Customer         `json:"customer"`
	Vehicle           Vehicle          `json:"vehicle"`
	Remarks           string           `json:"remarks,omitempty"`
	LocationID        uuid.UUID        `json:"location_id"`
	UseCustomTime     bool             `json:"use_custom_time,omitempty"`
	CustomEntryTime   *time.Time       `json:"custom_entry_time,omitempty"`
}

// Filter mirrors the store's ticket query capability.
type Filter struct {
	LocationID     *uuid.UUID
	From           *time.Time
	To             *time.Time
	ApprovalStatus *ApprovalStatus
	PaymentMode    *PaymentMode
	PlateLike      string
	Limit          int
	Offset         int
}
