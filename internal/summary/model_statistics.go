package summary

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"snnmeter/internal/device"
)

var (
	// ErrEmptySummaryList is returned when the layer sequence carries no
	// records; the per-device energy totals are seeded from the first one.
	ErrEmptySummaryList = errors.New("summary list is empty")

	// ErrDeviceProfileMismatch is returned when the device profile count does
	// not match the seed energy contribution count.
	ErrDeviceProfileMismatch = errors.New("device profile count does not match energy contributions")
)

// ModelStatistics is the aggregated, read-only result of a model summary:
// model-wide totals over a finished layer sequence, plus the per-device energy
// totals computed upstream. All totals are computed eagerly at construction;
// callers must not mutate a constructed value.
type ModelStatistics struct {
	SummaryList     []*LayerInfo
	InputSize       []int
	TotalInputBytes int64
	Formatting      *FormattingOptions

	TotalParams      int64
	TrainableParams  int64
	TotalMultAdds    int64
	TotalParamBytes  int64
	TotalOutputBytes int64

	DeviceProfiles []device.Profile
	TotalEnergies  []float64

	// ClampEvents counts negative per-layer contributions clamped to zero
	// during accumulation. Upstream leftover accounting can yield negative
	// counts; they contribute nothing but remain visible here.
	ClampEvents int
}

// NewModelStatistics aggregates a finished layer sequence into model-wide
// totals. The first record must carry one accumulated energy total per device
// profile.
func NewModelStatistics(summaryList []*LayerInfo, inputSize []int, totalInputBytes int64, formatting *FormattingOptions, deviceProfiles []device.Profile) (*ModelStatistics, error) {
	if len(summaryList) == 0 {
		return nil, ErrEmptySummaryList
	}
	seed := summaryList[0].TotalEnergyContributions
	if len(seed) != len(deviceProfiles) {
		return nil, fmt.Errorf("%w: %d profiles, %d contributions", ErrDeviceProfileMismatch, len(deviceProfiles), len(seed))
	}
	if formatting == nil {
		formatting = NewFormattingOptions()
	}

	s := &ModelStatistics{
		SummaryList:     summaryList,
		InputSize:       append([]int(nil), inputSize...),
		TotalInputBytes: totalInputBytes,
		Formatting:      formatting,
		DeviceProfiles:  append([]device.Profile(nil), deviceProfiles...),
		TotalEnergies:   append([]float64(nil), seed...),
	}

	for _, layer := range summaryList {
		if layer.IsLeafLayer {
			// A repeated leaf still performs its own compute work.
			s.TotalMultAdds += layer.Macs
			if layer.NumParams > 0 {
				// x2 for gradients
				s.TotalOutputBytes += layer.OutputBytes * 2
			}
			if layer.IsRecursive {
				continue
			}
			s.TotalParams += s.clampNonNegative(layer.NumParams)
			s.TotalParamBytes += layer.ParamBytes
			s.TrainableParams += s.clampNonNegative(layer.TrainableParams)
			continue
		}
		if layer.IsRecursive {
			continue
		}
		s.TotalParams += s.clampNonNegative(layer.LeftoverParams())
		s.TrainableParams += s.clampNonNegative(layer.LeftoverTrainableParams())
	}

	formatting.SetLayerNameWidth(summaryList)
	return s, nil
}

func (s *ModelStatistics) clampNonNegative(n int64) int64 {
	if n < 0 {
		s.ClampEvents++
		return 0
	}
	return n
}

// Render produces the full text report: divider-framed header and layer body,
// then one energy line per device profile in input order.
func (s *ModelStatistics) Render() string {
	divider := strings.Repeat("=", s.Formatting.GetTotalWidth())

	var b strings.Builder
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(s.Formatting.HeaderRow())
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(s.Formatting.LayersToStr(s.SummaryList, s.TotalParams))
	b.WriteString(divider)
	b.WriteString("\n")
	for i, profile := range s.DeviceProfiles {
		fmt.Fprintf(&b, "Total energy for device [%s] : %v J/inf\n", profile, s.TotalEnergies[i])
	}
	return b.String()
}

func (s *ModelStatistics) String() string {
	return s.Render()
}

// FloatToMegabytes converts a count of 4-byte float elements to megabytes.
func FloatToMegabytes(num int64) float64 {
	return float64(num) * 4 / 1e6
}

// ToMegabytes converts a byte count to megabytes.
func ToMegabytes(num int64) float64 {
	return float64(num) / 1e6
}

// ToReadable resolves the display unit for num. AUTO picks the largest unit
// with magnitude >= 1, never downscaling below megabytes; a fixed unit is
// applied as-is.
func ToReadable(num int64, units Units) (Units, float64) {
	if units == UnitsAuto {
		value := float64(num)
		switch {
		case value >= 1e12:
			return UnitsTerabytes, value / 1e12
		case value >= 1e9:
			return UnitsGigabytes, value / 1e9
		default:
			return UnitsMegabytes, value / 1e6
		}
	}
	factor, ok := conversionFactors[units]
	if !ok {
		factor = 1
	}
	return units, float64(num) / factor
}

// FormatOutputNum renders num at the resolved unit: whole values as
// thousands-separated integers, others with exactly two decimals. The unit
// label is appended in parentheses unless the resolved unit is none.
func FormatOutputNum(num int64, units Units) string {
	unitsUsed, converted := ToReadable(num, units)

	var display string
	if converted == math.Trunc(converted) {
		display = humanize.Comma(int64(converted))
	} else {
		display = humanize.FormatFloat("#,###.##", converted)
	}
	if unitsUsed == UnitsNone {
		return ": " + display
	}
	return fmt.Sprintf(": %s (%s)", display, unitsUsed)
}
