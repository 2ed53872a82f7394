package summary

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	defaultLayerNameWidth = 40
	defaultColumnWidth    = 18
	layerNamePadding      = 5
)

// FormattingOptions owns the table layout of the per-layer report body. The
// aggregator negotiates the layer-name column width once at construction via
// SetLayerNameWidth; everything else is fixed.
type FormattingOptions struct {
	LayerNameWidth int
	ColumnWidth    int
	ParamsUnits    Units
}

func NewFormattingOptions() *FormattingOptions {
	return &FormattingOptions{
		LayerNameWidth: defaultLayerNameWidth,
		ColumnWidth:    defaultColumnWidth,
		ParamsUnits:    UnitsNone,
	}
}

// SetLayerNameWidth grows the name column to fit the widest display name.
func (f *FormattingOptions) SetLayerNameWidth(layers []*LayerInfo) {
	width := f.LayerNameWidth
	for _, layer := range layers {
		if needed := len(layer.DisplayName()) + layerNamePadding; needed > width {
			width = needed
		}
	}
	f.LayerNameWidth = width
}

func (f *FormattingOptions) GetTotalWidth() int {
	return f.LayerNameWidth + 3*f.ColumnWidth
}

// HeaderRow returns the column header line, newline included.
func (f *FormattingOptions) HeaderRow() string {
	return f.formatRow("Layer (type:depth-idx)", "Param #", "Param %", "Mult-Adds")
}

// LayersToStr renders one row per layer record. totalParams drives the
// parameter percentage column.
func (f *FormattingOptions) LayersToStr(layers []*LayerInfo, totalParams int64) string {
	var b strings.Builder
	for _, layer := range layers {
		b.WriteString(f.layerRow(layer, totalParams))
	}
	return b.String()
}

func (f *FormattingOptions) layerRow(layer *LayerInfo, totalParams int64) string {
	params := "--"
	percent := "--"
	macs := "--"
	switch {
	case layer.IsRecursive:
		params = "(recursive)"
	case layer.NumParams > 0:
		params = humanize.Comma(layer.NumParams)
		if totalParams > 0 {
			percent = fmt.Sprintf("%.2f%%", 100*float64(layer.NumParams)/float64(totalParams))
		}
	}
	if layer.IsLeafLayer && layer.Macs > 0 {
		macs = humanize.Comma(layer.Macs)
	}
	return f.formatRow(layer.DisplayName(), params, percent, macs)
}

func (f *FormattingOptions) formatRow(name string, columns ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", f.LayerNameWidth, name)
	for _, column := range columns {
		fmt.Fprintf(&b, "%-*s", f.ColumnWidth, column)
	}
	return strings.TrimRight(b.String(), " ") + "\n"
}
