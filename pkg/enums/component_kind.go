package enums

import "fmt"

// ComponentKind identifies the slot a catalog component can fill.
type ComponentKind string

const (
	ComponentKindBaseColor ComponentKind = "base_color"
	ComponentKindKeycap    ComponentKind = "keycap"
	ComponentKindSwitch    ComponentKind = "switch"
	ComponentKindFidget    ComponentKind = "fidget"
)

var validComponentKinds = []ComponentKind{
	ComponentKindBaseColor,
	ComponentKindKeycap,
	ComponentKindSwitch,
	ComponentKindFidget,
}

// String implements fmt.Stringer.
func (k ComponentKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ComponentKind.
func (k ComponentKind) IsValid() bool {
	for _, candidate := range validComponentKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsKeyboardSlot reports whether the kind participates in keyboard bundles.
func (k ComponentKind) IsKeyboardSlot() bool {
	switch k {
	case ComponentKindBaseColor, ComponentKindKeycap, ComponentKindSwitch:
		return true
	default:
		return false
	}
}

// ParseComponentKind converts raw input into a ComponentKind.
func ParseComponentKind(value string) (ComponentKind, error) {
	for _, candidate := range validComponentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid component kind %q", value)
}
