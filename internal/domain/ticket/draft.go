package ticket

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Patch carries the fields an edit changes. Nil fields are left alone.
type Patch struct {
	VehiclePlate      *string          `json:"vehicle_plate,omitempty"`
	VehicleTypeLabel  *string          `json:"vehicle_type,omitempty"`
	Category          *Category        `json:"category,omitempty"`
	ServicesChosen    *[]string        `json:"services,omitempty"`
	WorkshopName      *string          `json:"workshop_name,omitempty"`
	ManualAmount      *decimal.Decimal `json:"manual_amount,omitempty"`
	Discount          *decimal.Decimal `json:"discount,omitempty"`
	PaymentMode       *PaymentMode     `json:"payment_mode,omitempty"`
	PaymentAccountRef *uuid.UUID       `json:"payment_account_ref,omitempty"`
	Customer          *Customer        `json:"customer,omitempty"`
	Vehicle           *Vehicle         `json:"vehicle,omitempty"`
	Remarks           *string          `json:"remarks,omitempty"`
}

// DraftFromTicket rebuilds the form a stored ticket was priced from.
func DraftFromTicket(t Ticket) Draft {
	d := Draft{
		EntryType:         t.EntryType,
		VehiclePlate:      t.VehiclePlate,
		VehicleTypeLabel:  t.VehicleTypeLabel,
		Category:          t.Category(),
		ServicesChosen:    append([]string(nil), t.ServicesChosen...),
		WorkshopName:      t.WorkshopName,
		Discount:          t.Discount,
		PaymentMode:       t.PaymentMode,
		PaymentAccountRef: t.PaymentAccountRef,
		Customer:          t.Customer,
		Vehicle:           t.Vehicle,
		Remarks:           t.Remarks,
		LocationID:        t.LocationID,
	}
	if t.EntryType == EntryWorkshop {
		d.DiscountOverride = true
	}
	if t.EntryType != EntryWorkshop && d.Category == CategoryOther {
		amount := t.Amount
		d.ManualAmount = &amount
	}
	return d
}

// ApplyTo returns d with the patch applied. A workshop or vehicle type change
// without an explicit discount re-enables the workshop discount default.
func (p Patch) ApplyTo(d Draft) Draft {
	if p.VehiclePlate != nil {
		d.VehiclePlate = *p.VehiclePlate
	}
	if p.VehicleTypeLabel != nil {
		d.VehicleTypeLabel = *p.VehicleTypeLabel
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.ServicesChosen != nil {
		d.ServicesChosen = append([]string(nil), (*p.ServicesChosen)...)
	}
	if p.WorkshopName != nil {
		d.WorkshopName = *p.WorkshopName
	}
	if p.ManualAmount != nil {
		amount := *p.ManualAmount
		d.ManualAmount = &amount
	}
	if p.Discount != nil {
		d.Discount = *p.Discount
		d.DiscountOverride = true
	} else if p.WorkshopName != nil || p.VehicleTypeLabel != nil {
		d.DiscountOverride = false
	}
	if p.PaymentMode != nil {
		d.PaymentMode = *p.PaymentMode
	}
	if p.PaymentAccountRef != nil {
		ref := *p.PaymentAccountRef
		d.PaymentAccountRef = &ref
	}
	if p.Customer != nil {
		d.Customer = *p.Customer
	}
	if p.Vehicle != nil {
		d.Vehicle = *p.Vehicle
	}
	if p.Remarks != nil {
		d.Remarks = *p.Remarks
	}
	return d
}
