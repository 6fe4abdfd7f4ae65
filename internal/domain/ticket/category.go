package ticket

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is a wheel category, either selected by an operator or parsed
// from a stored row code. Unclassified is only produced for rows whose code
// is missing or unrecognised and matches every selected category.
type Category int

const (
	CategoryNone Category = iota
	CategoryTwoWheeler
	CategoryFourWheeler
	CategoryOther
	CategoryUnclassified
)

const (
	CodeTwoWheeler        = "2"
	CodeFourWheeler       = "4"
	CodeOther             = "3"
	CodeLegacyFourWheeler = "1"
)

// ParseRowCode classifies a category code read from a rate or model row.
func ParseRowCode(code string) Category {
	switch strings.TrimSpace(code) {
	case CodeTwoWheeler:
		return CategoryTwoWheeler
	case CodeFourWheeler, CodeLegacyFourWheeler:
		return CategoryFourWheeler
	case CodeOther:
		return CategoryOther
	default:
		return CategoryUnclassified
	}
}

// ParseSelectedCategory parses an operator selection. Unlike ParseRowCode an
// unknown value means nothing was chosen.
func ParseSelectedCategory(v string) Category {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case CodeTwoWheeler, "2-wheeler", "two_wheeler", "two-wheeler":
		return CategoryTwoWheeler
	case CodeFourWheeler, CodeLegacyFourWheeler, "4-wheeler", "four_wheeler", "four-wheeler":
		return CategoryFourWheeler
	case CodeOther, "other":
		return CategoryOther
	default:
		return CategoryNone
	}
}

// Code is the canonical storage code. Legacy "1" is never written.
func (c Category) Code() string {
	switch c {
	case CategoryTwoWheeler:
		return CodeTwoWheeler
	case CategoryFourWheeler:
		return CodeFourWheeler
	case CategoryOther:
		return CodeOther
	default:
		return ""
	}
}

func (c Category) String() string {
	switch c {
	case CategoryTwoWheeler:
		return "2-wheeler"
	case CategoryFourWheeler:
		return "4-wheeler"
	case CategoryOther:
		return "other"
	case CategoryUnclassified:
		return "unclassified"
	default:
		return ""
	}
}

func (c Category) Selected() bool {
	return c == CategoryTwoWheeler || c == CategoryFourWheeler || c == CategoryOther
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Code())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*c = CategoryNone
	case string:
		*c = ParseSelectedCategory(v)
	case float64:
		*c = ParseSelectedCategory(fmt.Sprintf("%d", int(v)))
	default:
		return fmt.Errorf("invalid wheel category %v", raw)
	}
	return nil
}
