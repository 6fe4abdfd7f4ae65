package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vehicle-ticket-service/internal/domain/ticket"
)

func selection() ticket.Draft {
	return ticket.Draft{
		Category:         ticket.CategoryFourWheeler,
		VehicleTypeLabel: "SEDAN",
		ServicesChosen:   []string{"Full Wash"},
		Customer:         ticket.Customer{Name: "Typed"},
		Vehicle:          ticket.Vehicle{Brand: "Tata"},
	}
}

func TestApplyProfile_ShortPlateLeavesDraftAlone(t *testing.T) {
	d := selection()
	got := ApplyProfile(d, "KA", &Profile{Customer: ticket.Customer{Name: "Other"}})
	assert.Equal(t, "KA", got.VehiclePlate)
	assert.Equal(t, d.Category, got.Category)
	assert.Equal(t, d.VehicleTypeLabel, got.VehicleTypeLabel)
	assert.Equal(t, d.ServicesChosen, got.ServicesChosen)
	assert.Equal(t, d.Customer, got.Customer)
}

func TestApplyProfile_EmptyPlateClearsAutofill(t *testing.T) {
	got := ApplyProfile(selection(), "  ", nil)
	assert.Equal(t, ticket.Customer{}, got.Customer)
	assert.Equal(t, ticket.Vehicle{}, got.Vehicle)
	assert.Equal(t, ticket.CategoryFourWheeler, got.Category)
	assert.Equal(t, "SEDAN", got.VehicleTypeLabel)
	assert.Equal(t, []string{"Full Wash"}, got.ServicesChosen)
}

func TestApplyProfile_FillsOnlyBlanks(t *testing.T) {
	p := &Profile{
		Customer:      ticket.Customer{Name: "Ravi", Phone: "98450"},
		VehicleBrand:  "Honda",
		VehicleModel:  "City",
		WheelCategory: ticket.CategoryTwoWheeler,
	}
	got := ApplyProfile(selection(), "KA01AB", p)
	assert.Equal(t, "Typed", got.Customer.Name)
	assert.Equal(t, "98450", got.Customer.Phone)
	assert.Equal(t, "Tata", got.Vehicle.Brand)
	assert.Equal(t, "City", got.Vehicle.Model)
	assert.Equal(t, ticket.CategoryFourWheeler, got.Category)

	blank := ApplyProfile(ticket.Draft{}, "KA01AB", p)
	assert.Equal(t, ticket.CategoryTwoWheeler, blank.Category)
	assert.Equal(t, "Ravi", blank.Customer.Name)
}
