package history

import (
	"strings"

	"vehicle-ticket-service/internal/domain/ticket"
)

// ApplyProfile fills the draft's customer and vehicle fields from a plate
// lookup. Category, vehicle type and services are never changed once the
// operator has chosen them, and an empty plate clears only autofilled data.
func ApplyProfile(d ticket.Draft, plate string, p *Profile) ticket.Draft {
	d.VehiclePlate = plate
	if strings.TrimSpace(plate) == "" {
		d.Customer = ticket.Customer{}
		d.Vehicle = ticket.Vehicle{}
		return d
	}
	if !Searchable(plate) || p == nil {
		return d
	}

	fill(&d.Customer.Name, p.Customer.Name)
	fill(&d.Customer.Phone, p.Customer.Phone)
	fill(&d.Customer.Location, p.Customer.Location)
	if d.Customer.DOB == nil && p.Customer.DOB != nil {
		dob := *p.Customer.DOB
		d.Customer.DOB = &dob
	}
	fill(&d.Vehicle.Brand, p.VehicleBrand)
	fill(&d.Vehicle.Model, p.VehicleModel)

	if !d.Category.Selected() && p.WheelCategory.Selected() {
		d.Category = p.WheelCategory
	}
	return d
}

func fill(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = v
	}
}
