package enums

import "fmt"

// ProductStatus tracks the catalog lifecycle. Products referenced by past
// documents are deactivated, never deleted.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusInactive,
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

// ProductUnit is the unit of measure a product is stocked in.
type ProductUnit string

const (
	ProductUnitUnit  ProductUnit = "unit"
	ProductUnitKilo  ProductUnit = "kilogram"
	ProductUnitLiter ProductUnit = "liter"
	ProductUnitBox   ProductUnit = "box"
)

var validProductUnits = []ProductUnit{
	ProductUnitUnit,
	ProductUnitKilo,
	ProductUnitLiter,
	ProductUnitBox,
}

func (u ProductUnit) String() string {
	return string(u)
}

func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
