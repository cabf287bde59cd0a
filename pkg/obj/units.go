package obj

import (
	"fmt"
	"strings"
)

// Unit is a linear distance unit.
type Unit int

const (
	UnitCentimeters Unit = iota
	UnitInches
	UnitFeet
	UnitYards
	UnitMiles
	UnitMillimeters
	UnitKilometers
	UnitMeters
)

var unitNames = [...]string{
	UnitCentimeters: "centimeters",
	UnitInches:      "inches",
	UnitFeet:        "feet",
	UnitYards:       "yards",
	UnitMiles:       "miles",
	UnitMillimeters: "millimeters",
	UnitKilometers:  "kilometers",
	UnitMeters:      "meters",
}

// Centimetres per unit.
var unitScale = [...]float64{
	UnitCentimeters: 1,
	UnitInches:      2.54,
	UnitFeet:        30.48,
	UnitYards:       91.44,
	UnitMiles:       160934.4,
	UnitMillimeters: 0.1,
	UnitKilometers:  100000,
	UnitMeters:      100,
}

// String returns the long unit name used in the file header.
func (u Unit) String() string {
	if u < 0 || int(u) >= len(unitNames) {
		return ""
	}
	return unitNames[u]
}

// FromCentimeters converts a distance in centimetres to u.
func (u Unit) FromCentimeters(v float64) float64 {
	if u < 0 || int(u) >= len(unitScale) {
		return v
	}
	return v / unitScale[u]
}

// ParseUnit accepts long names ("meters") and short forms ("m", "cm", "in").
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cm", "centimeter", "centimeters":
		return UnitCentimeters, nil
	case "in", "inch", "inches":
		return UnitInches, nil
	case "ft", "foot", "feet":
		return UnitFeet, nil
	case "yd", "yard", "yards":
		return UnitYards, nil
	case "mi", "mile", "miles":
		return UnitMiles, nil
	case "mm", "millimeter", "millimeters":
		return UnitMillimeters, nil
	case "km", "kilometer", "kilometers":
		return UnitKilometers, nil
	case "m", "meter", "meters":
		return UnitMeters, nil
	}
	return UnitCentimeters, fmt.Errorf("unknown unit %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
