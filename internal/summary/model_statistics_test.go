package summary

import (
	"errors"
	"strings"
	"testing"

	"snnmeter/internal/device"
)

func leafLayer(name string, params, trainable, macs, outputBytes, paramBytes int64) *LayerInfo {
	return &LayerInfo{
		Name:            name,
		ClassName:       "Linear",
		Depth:           1,
		DepthIndex:      1,
		IsLeafLayer:     true,
		NumParams:       params,
		TrainableParams: trainable,
		Macs:            macs,
		OutputBytes:     outputBytes,
		ParamBytes:      paramBytes,
	}
}

func TestNewModelStatisticsLeafTotals(t *testing.T) {
	layers := []*LayerInfo{
		leafLayer("fc1", 100, 100, 1000, 40, 400),
		leafLayer("fc2", 50, 20, 500, 20, 200),
		leafLayer("act", 0, 0, 0, 16, 0),
	}
	layers[0].TotalEnergyContributions = []float64{1.5e-6}

	stats, err := NewModelStatistics(layers, []int{1, 10}, 40, NewFormattingOptions(), []device.Profile{{Name: "cpu-small"}})
	if err != nil {
		t.Fatalf("new model statistics: %v", err)
	}
	if stats.TotalParams != 150 {
		t.Fatalf("unexpected total params: %d", stats.TotalParams)
	}
	if stats.TrainableParams != 120 {
		t.Fatalf("unexpected trainable params: %d", stats.TrainableParams)
	}
	if stats.TotalMultAdds != 1500 {
		t.Fatalf("unexpected mult-adds: %d", stats.TotalMultAdds)
	}
	if stats.TotalParamBytes != 600 {
		t.Fatalf("unexpected param bytes: %d", stats.TotalParamBytes)
	}
	// Output bytes double for gradients, and only layers owning params count.
	if stats.TotalOutputBytes != 2*40+2*20 {
		t.Fatalf("unexpected output bytes: %d", stats.TotalOutputBytes)
	}
	if stats.ClampEvents != 0 {
		t.Fatalf("unexpected clamp events: %d", stats.ClampEvents)
	}
}

func TestNewModelStatisticsRecursiveLeafCountsMacsOnly(t *testing.T) {
	shared := leafLayer("shared", 100, 100, 1000, 40, 400)
	repeat := leafLayer("shared", 100, 100, 1000, 40, 400)
	repeat.IsRecursive = true
	shared.TotalEnergyContributions = []float64{}

	stats, err := NewModelStatistics([]*LayerInfo{shared, repeat}, nil, 0, NewFormattingOptions(), nil)
	if err != nil {
		t.Fatalf("new model statistics: %v", err)
	}
	if stats.TotalMultAdds != 2000 {
		t.Fatalf("recursive leaf must still contribute macs: %d", stats.TotalMultAdds)
	}
	if stats.TotalParams != 100 {
		t.Fatalf("recursive leaf must not contribute params: %d", stats.TotalParams)
	}
	if stats.TotalParamBytes != 400 {
		t.Fatalf("recursive leaf must not contribute param bytes: %d", stats.TotalParamBytes)
	}
	// Gradient doubling applies to each invocation of the shared layer.
	if stats.TotalOutputBytes != 4*40 {
		t.Fatalf("unexpected output bytes: %d", stats.TotalOutputBytes)
	}
}

func TestNewModelStatisticsContainerLeftover(t *testing.T) {
	child := leafLayer("child", 30, 30, 300, 8, 120)
	container := &LayerInfo{
		Name:            "block",
		ClassName:       "Sequential",
		IsLeafLayer:     false,
		NumParams:       50,
		TrainableParams: 50,
		Children:        []*LayerInfo{child},
	}
	container.TotalEnergyContributions = []float64{}

	stats, err := NewModelStatistics([]*LayerInfo{container, child}, nil, 0, NewFormattingOptions(), nil)
	if err != nil {
		t.Fatalf("new model statistics: %v", err)
	}
	// 30 from the leaf plus the 20 the container owns directly.
	if stats.TotalParams != 50 {
		t.Fatalf("unexpected total params: %d", stats.TotalParams)
	}
}

func TestNewModelStatisticsNegativeLeftoverClamped(t *testing.T) {
	child := leafLayer("child", 30, 30, 300, 8, 120)
	container := &LayerInfo{
		Name:            "block",
		IsLeafLayer:     false,
		NumParams:       25, // child accounting exceeds the container's nominal count
		TrainableParams: 25,
		Children:        []*LayerInfo{child},
	}
	container.TotalEnergyContributions = []float64{}

	stats, err := NewModelStatistics([]*LayerInfo{container, child}, nil, 0, NewFormattingOptions(), nil)
	if err != nil {
		t.Fatalf("new model statistics: %v", err)
	}
	if stats.TotalParams != 30 {
		t.Fatalf("negative leftover must not decrease the total: %d", stats.TotalParams)
	}
	if stats.ClampEvents != 2 {
		t.Fatalf("expected clamp events for params and trainable params, got %d", stats.ClampEvents)
	}
}

func TestNewModelStatisticsRecursiveContainerSkipped(t *testing.T) {
	container := &LayerInfo{
		Name:        "block",
		IsRecursive: true,
		NumParams:   50,
	}
	container.TotalEnergyContributions = []float64{}

	stats, err := NewModelStatistics([]*LayerInfo{container}, nil, 0, NewFormattingOptions(), nil)
	if err != nil {
		t.Fatalf("new model statistics: %v", err)
	}
	if stats.TotalParams != 0 {
		t.Fatalf("recursive container must be skipped entirely: %d", stats.TotalParams)
	}
}

func TestNewModelStatisticsEmptySummaryList(t *testing.T) {
	_, err := NewModelStatistics(nil, nil, 0, NewFormattingOptions(), nil)
	if !errors.Is(err, ErrEmptySummaryList) {
		t.Fatalf("expected empty summary list error, got %v", err)
	}
}

func TestNewModelStatisticsDeviceProfileMismatch(t *testing.T) {
	layer := leafLayer("fc1", 10, 10, 100, 4, 40)
	layer.TotalEnergyContributions = []float64{1e-6}

	_, err := NewModelStatistics([]*LayerInfo{layer}, nil, 0, NewFormattingOptions(), []device.Profile{{Name: "a"}, {Name: "b"}})
	if !errors.Is(err, ErrDeviceProfileMismatch) {
		t.Fatalf("expected device profile mismatch error, got %v", err)
	}
}

func TestRenderEnergyLines(t *testing.T) {
	layer := leafLayer("fc1", 10, 10, 100, 4, 40)
	layer.TotalEnergyContributions = []float64{2.5e-7, 3.125e-9}
	profiles := []device.Profile{{Name: "cpu-small"}, {Name: "neuromorphic-loihi2"}}

	stats, err := NewModelStatistics([]*LayerInfo{layer}, nil, 0, NewFormattingOptions(), profiles)
	if err != nil {
		t.Fatalf("new model statistics: %v", err)
	}

	report := stats.Render()
	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")
	if got := lines[len(lines)-2]; got != "Total energy for device [cpu-small] : 2.5e-07 J/inf" {
		t.Fatalf("unexpected first energy line: %q", got)
	}
	if got := lines[len(lines)-1]; got != "Total energy for device [neuromorphic-loihi2] : 3.125e-09 J/inf" {
		t.Fatalf("unexpected second energy line: %q", got)
	}
	if count := strings.Count(report, "Total energy for device"); count != len(profiles) {
		t.Fatalf("expected %d energy lines, got %d", len(profiles), count)
	}
	if count := strings.Count(report, strings.Repeat("=", stats.Formatting.GetTotalWidth())); count != 3 {
		t.Fatalf("expected 3 dividers, got %d", count)
	}
}

func TestToReadableAuto(t *testing.T) {
	cases := []struct {
		num   int64
		units Units
		value float64
	}{
		{999_999_999, UnitsMegabytes, 999.999999},
		{1_000_000_000, UnitsGigabytes, 1.0},
		{1_000_000_000_000, UnitsTerabytes, 1.0},
		{5, UnitsMegabytes, 5e-6},
	}
	for _, tc := range cases {
		units, value := ToReadable(tc.num, UnitsAuto)
		if units != tc.units {
			t.Fatalf("ToReadable(%d): unexpected units %v", tc.num, units)
		}
		if value != tc.value {
			t.Fatalf("ToReadable(%d): unexpected value %v", tc.num, value)
		}
	}
}

func TestToReadableExplicitUnit(t *testing.T) {
	units, value := ToReadable(2_000_000, UnitsGigabytes)
	if units != UnitsGigabytes {
		t.Fatalf("explicit unit must not be auto-selected: %v", units)
	}
	if value != 0.002 {
		t.Fatalf("unexpected value: %v", value)
	}
}

func TestFormatOutputNum(t *testing.T) {
	cases := []struct {
		num   int64
		units Units
		want  string
	}{
		{5_000_000, UnitsMegabytes, ": 5 (MEGABYTES)"},
		{1_234_500_000_000, UnitsGigabytes, ": 1,234.50 (GIGABYTES)"},
		{12_340_000_000, UnitsAuto, ": 12.34 (GIGABYTES)"},
		{1_234, UnitsNone, ": 1,234"},
		{2_000_000, UnitsGigabytes, ": 0.00 (GIGABYTES)"},
	}
	for _, tc := range cases {
		if got := FormatOutputNum(tc.num, tc.units); got != tc.want {
			t.Fatalf("FormatOutputNum(%d, %v) = %q, want %q", tc.num, tc.units, got, tc.want)
		}
	}
}

func TestByteConversions(t *testing.T) {
	if got := FloatToMegabytes(1_000_000); got != 4.0 {
		t.Fatalf("unexpected float megabytes: %v", got)
	}
	if got := ToMegabytes(2_500_000); got != 2.5 {
		t.Fatalf("unexpected megabytes: %v", got)
	}
}
