package enums

import "fmt"

// OrderSource records the acquisition channel. Informational only.
type OrderSource string

const (
	OrderSourceStorefront OrderSource = "storefront"
	OrderSourceInstagram  OrderSource = "instagram"
	OrderSourceTikTok     OrderSource = "tiktok"
	OrderSourceFair       OrderSource = "fair"
	OrderSourceOther      OrderSource = "other"
)

var validOrderSources = []OrderSource{
	OrderSourceStorefront,
	OrderSourceInstagram,
	OrderSourceTikTok,
	OrderSourceFair,
	OrderSourceOther,
}

// String implements fmt.Stringer.
func (s OrderSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderSource.
func (s OrderSource) IsValid() bool {
	for _, candidate := range validOrderSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderSource converts raw input into an OrderSource.
func ParseOrderSource(value string) (OrderSource, error) {
	for _, candidate := range validOrderSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order source %q", value)
}
