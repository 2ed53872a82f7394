package summary

import (
	"strings"
	"testing"
)

func TestLeftoverParams(t *testing.T) {
	leafA := &LayerInfo{Name: "a", IsLeafLayer: true, NumParams: 30, TrainableParams: 30}
	leafB := &LayerInfo{Name: "b", IsLeafLayer: true, NumParams: 20, TrainableParams: 10}
	container := &LayerInfo{
		Name:            "block",
		NumParams:       60,
		TrainableParams: 45,
		Children:        []*LayerInfo{leafA, leafB},
	}

	if got := container.LeftoverParams(); got != 10 {
		t.Fatalf("unexpected leftover params: %d", got)
	}
	if got := container.LeftoverTrainableParams(); got != 5 {
		t.Fatalf("unexpected leftover trainable params: %d", got)
	}
}

func TestLeftoverParamsSkipsRecursiveChildren(t *testing.T) {
	leaf := &LayerInfo{Name: "shared", IsLeafLayer: true, NumParams: 30}
	repeat := &LayerInfo{Name: "shared", IsLeafLayer: true, IsRecursive: true, NumParams: 30}
	container := &LayerInfo{Name: "block", NumParams: 40, Children: []*LayerInfo{leaf, repeat}}

	if got := container.LeftoverParams(); got != 10 {
		t.Fatalf("recursive child must not be subtracted twice: %d", got)
	}
}

func TestLeftoverParamsNestedContainers(t *testing.T) {
	leaf := &LayerInfo{Name: "inner", IsLeafLayer: true, NumParams: 15}
	inner := &LayerInfo{Name: "sub", NumParams: 20, Children: []*LayerInfo{leaf}}
	outer := &LayerInfo{Name: "block", NumParams: 40, Children: []*LayerInfo{inner}}

	// The nested container owns 5 directly; the outer subtracts that leftover.
	if got := outer.LeftoverParams(); got != 35 {
		t.Fatalf("unexpected nested leftover: %d", got)
	}
}

func TestDisplayName(t *testing.T) {
	root := &LayerInfo{Name: "net", ClassName: "SpikingNet"}
	if got := root.DisplayName(); got != "SpikingNet" {
		t.Fatalf("unexpected root display name: %q", got)
	}

	nested := &LayerInfo{Name: "fc1", ClassName: "Linear", Depth: 2, DepthIndex: 3}
	got := nested.DisplayName()
	if !strings.HasSuffix(got, "Linear: 2-3") {
		t.Fatalf("unexpected nested display name: %q", got)
	}
	if !strings.Contains(got, "├─") {
		t.Fatalf("nested display name missing connector: %q", got)
	}
}
