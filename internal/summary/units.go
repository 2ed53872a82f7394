package summary

// Units selects the scale applied when rendering large counts.
type Units int

const (
	UnitsAuto Units = iota
	UnitsNone
	UnitsMegabytes
	UnitsGigabytes
	UnitsTerabytes
)

func (u Units) String() string {
	switch u {
	case UnitsAuto:
		return "AUTO"
	case UnitsNone:
		return ""
	case UnitsMegabytes:
		return "MEGABYTES"
	case UnitsGigabytes:
		return "GIGABYTES"
	case UnitsTerabytes:
		return "TERABYTES"
	default:
		return "UNKNOWN"
	}
}

// conversionFactors maps each fixed unit to its divisor. Process-wide static
// data; AUTO is resolved before lookup and never appears as a key.
var conversionFactors = map[Units]float64{
	UnitsNone:      1,
	UnitsMegabytes: 1e6,
	UnitsGigabytes: 1e9,
	UnitsTerabytes: 1e12,
}

// ParseUnits maps a config token to a Units value. An empty token means none.
func ParseUnits(name string) (Units, bool) {
	switch name {
	case "auto":
		return UnitsAuto, true
	case "", "none":
		return UnitsNone, true
	case "megabytes":
		return UnitsMegabytes, true
	case "gigabytes":
		return UnitsGigabytes, true
	case "terabytes":
		return UnitsTerabytes, true
	default:
		return UnitsNone, false
	}
}
