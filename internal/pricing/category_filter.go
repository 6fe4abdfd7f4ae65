package pricing

import (
	"sort"
	"strings"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/utils"
)

// MatchesCategory reports whether a row carrying rowCode is selectable under
// the selected category. Rows with a missing or unknown code match any
// selected category.
func MatchesCategory(rowCode string, selected ticket.Category) bool {
	if !selected.Selected() {
		return false
	}
	row := ticket.ParseRowCode(rowCode)
	if row == ticket.CategoryUnclassified {
		return true
	}
	return row == selected
}

func SelectableVehicleTypes(category ticket.Category, rows []ticket.RateRow) []string {
	set := newLabelSet()
	if !category.Selected() {
		return set.values()
	}
	for _, r := range rows {
		if MatchesCategory(r.WheelCategoryCode, category) {
			set.add(r.VehicleType)
		}
	}
	return set.values()
}

func SelectableServices(category ticket.Category, vehicleType string, rows []ticket.RateRow) []string {
	set := newLabelSet()
	if !category.Selected() || strings.TrimSpace(vehicleType) == "" {
		return set.values()
	}
	want := utils.NormalizeLabel(vehicleType)
	for _, r := range rows {
		if utils.NormalizeLabel(r.VehicleType) == want && MatchesCategory(r.WheelCategoryCode, category) {
			set.add(r.Service)
		}
	}
	return set.values()
}

func SelectableBrands(category ticket.Category, models []ticket.VehicleModelRow) []string {
	set := newLabelSet()
	if !category.Selected() {
		return set.values()
	}
	for _, m := range models {
		if MatchesCategory(m.WheelCategoryCode, category) {
			set.add(m.Brand)
		}
	}
	return set.values()
}

func SelectableModels(category ticket.Category, brand string, models []ticket.VehicleModelRow) []string {
	set := newLabelSet()
	if !category.Selected() || strings.TrimSpace(brand) == "" {
		return set.values()
	}
	want := utils.NormalizeLabel(brand)
	for _, m := range models {
		if utils.NormalizeLabel(m.Brand) == want && MatchesCategory(m.WheelCategoryCode, category) {
			set.add(m.Model)
		}
	}
	return set.values()
}

// Selection is the category-gated part of a draft.
type Selection struct {
	Category    ticket.Category `json:"category"`
	VehicleType string          `json:"vehicle_type"`
	Services    []string        `json:"services"`
	Brand       string          `json:"brand,omitempty"`
	Model       string          `json:"model,omitempty"`
}

// Options are the selectable sets for a selection.
type Options struct {
	VehicleTypes []string `json:"vehicle_types"`
	Services     []string `json:"services"`
	Brands       []string `json:"brands"`
	Models       []string `json:"models"`
}

func OptionsFor(sel Selection, rows []ticket.RateRow, models []ticket.VehicleModelRow) Options {
	return Options{
		VehicleTypes: SelectableVehicleTypes(sel.Category, rows),
		Services:     SelectableServices(sel.Category, sel.VehicleType, rows),
		Brands:       SelectableBrands(sel.Category, models),
		Models:       SelectableModels(sel.Category, sel.Brand, models),
	}
}

// Revalidate drops the parts of sel that are no longer selectable under its
// category and keeps everything else as is. An empty catalog has nothing to
// check against, and so does the "other" category when no row covers it.
func Revalidate(sel Selection, rows []ticket.RateRow, models []ticket.VehicleModelRow) Selection {
	out := Selection{Category: sel.Category}
	if !sel.Category.Selected() {
		return out
	}

	if allowed(sel.VehicleType, sel.Category, SelectableVehicleTypes(sel.Category, rows), len(rows)) {
		out.VehicleType = sel.VehicleType
	}
	if out.VehicleType != "" {
		services := SelectableServices(sel.Category, out.VehicleType, rows)
		for _, s := range sel.Services {
			if allowed(s, sel.Category, services, len(rows)) {
				out.Services = append(out.Services, s)
			}
		}
	}

	if allowed(sel.Brand, sel.Category, SelectableBrands(sel.Category, models), len(models)) {
		out.Brand = sel.Brand
	}
	if out.Brand != "" && allowed(sel.Model, sel.Category, SelectableModels(sel.Category, out.Brand, models), len(models)) {
		out.Model = sel.Model
	}
	return out
}

// VehicleTypeConsistent reports whether vehicleType belongs to the rate rows
// of category.
func VehicleTypeConsistent(category ticket.Category, vehicleType string, rows []ticket.RateRow) bool {
	return allowed(vehicleType, category, SelectableVehicleTypes(category, rows), len(rows))
}

func allowed(value string, category ticket.Category, options []string, catalogSize int) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	if catalogSize == 0 {
		return true
	}
	if len(options) == 0 && category == ticket.CategoryOther {
		return true
	}
	return contains(options, value)
}

func contains(values []string, v string) bool {
	want := utils.NormalizeLabel(v)
	for _, s := range values {
		if utils.NormalizeLabel(s) == want {
			return true
		}
	}
	return false
}

type labelSet struct {
	seen map[string]struct{}
	list []string
}

func newLabelSet() *labelSet {
	return &labelSet{seen: map[string]struct{}{}, list: []string{}}
}

func (s *labelSet) add(label string) {
	label = strings.TrimSpace(label)
	key := utils.NormalizeLabel(label)
	if key == "" {
		return
	}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.list = append(s.list, label)
}

func (s *labelSet) values() []string {
	sort.Strings(s.list)
	return s.list
}
