package summary

import (
	"fmt"
	"strings"
)

// LayerInfo is one node of an already-traversed layer hierarchy, produced by
// an upstream model walker. snnmeter never mutates it.
type LayerInfo struct {
	Name            string
	ClassName       string
	Depth           int
	DepthIndex      int
	IsLeafLayer     bool
	IsRecursive     bool
	NumParams       int64
	TrainableParams int64
	Macs            int64
	OutputBytes     int64
	ParamBytes      int64
	Children        []*LayerInfo

	// EnergyContributions holds this layer's estimated energy per device
	// profile, aligned by index with the profile list.
	EnergyContributions []float64

	// TotalEnergyContributions is populated by the upstream energy model on
	// the first record of a summary sequence only: the accumulated per-device
	// totals for the whole model.
	TotalEnergyContributions []float64
}

// LeftoverParams returns the parameters this layer owns directly, not
// attributable to any non-recursive child.
func (l *LayerInfo) LeftoverParams() int64 {
	total := l.NumParams
	for _, child := range l.Children {
		if child.IsRecursive {
			continue
		}
		if child.IsLeafLayer {
			total -= child.NumParams
		} else {
			total -= child.LeftoverParams()
		}
	}
	return total
}

// LeftoverTrainableParams is LeftoverParams restricted to trainable counts.
func (l *LayerInfo) LeftoverTrainableParams() int64 {
	total := l.TrainableParams
	for _, child := range l.Children {
		if child.IsRecursive {
			continue
		}
		if child.IsLeafLayer {
			total -= child.TrainableParams
		} else {
			total -= child.LeftoverTrainableParams()
		}
	}
	return total
}

// DisplayName renders the depth-indented table label, e.g. "├─Linear: 1-2".
func (l *LayerInfo) DisplayName() string {
	indent := strings.Repeat("│    ", maxInt(l.Depth-1, 0))
	connector := ""
	if l.Depth > 0 {
		connector = "├─"
	}
	name := l.ClassName
	if name == "" {
		name = l.Name
	}
	if l.Depth > 0 {
		return fmt.Sprintf("%s%s%s: %d-%d", indent, connector, name, l.Depth, l.DepthIndex)
	}
	return name
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
