package storage

import (
	"context"
	"testing"

	"snnmeter/internal/model"
)

func TestMemoryStoreSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.SummaryRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "sum-1",
		ModelName:       "lenet",
		TotalParams:     61706,
		TrainableParams: 61706,
		TotalMultAdds:   416520,
		DeviceNames:     []string{"cpu-small"},
		TotalEnergies:   []float64{1.2e-6},
	}
	if err := store.SaveSummary(ctx, input); err != nil {
		t.Fatalf("save summary: %v", err)
	}

	output, ok, err := store.GetSummary(ctx, "sum-1")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted summary")
	}
	if output.TotalParams != input.TotalParams || output.ModelName != "lenet" {
		t.Fatalf("unexpected summary: %+v", output)
	}

	output.TotalEnergies[0] = 0
	again, _, err := store.GetSummary(ctx, "sum-1")
	if err != nil {
		t.Fatalf("get summary again: %v", err)
	}
	if again.TotalEnergies[0] != 1.2e-6 {
		t.Fatal("stored energies must not be mutable through returned slices")
	}
}

func TestMemoryStoreListSummaryIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, id := range []string{"sum-b", "sum-a", "sum-c"} {
		if err := store.SaveSummary(ctx, model.SummaryRecord{ID: id}); err != nil {
			t.Fatalf("save summary %s: %v", id, err)
		}
	}
	ids, err := store.ListSummaryIDs(ctx)
	if err != nil {
		t.Fatalf("list summary ids: %v", err)
	}
	if len(ids) != 3 || ids[0] != "sum-a" || ids[2] != "sum-c" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestMemoryStoreDeviceProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.DeviceProfileRecord{
		VersionedRecord:       model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		Name:                  "neuromorphic-loihi2",
		EnergyPerSynapseEvent: 2.36e-11,
		Spiking:               true,
	}
	if err := store.SaveDeviceProfile(ctx, input); err != nil {
		t.Fatalf("save device profile: %v", err)
	}

	output, ok, err := store.GetDeviceProfile(ctx, "neuromorphic-loihi2")
	if err != nil {
		t.Fatalf("get device profile: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted device profile")
	}
	if !output.Spiking || output.EnergyPerSynapseEvent != 2.36e-11 {
		t.Fatalf("unexpected device profile: %+v", output)
	}
}

func TestMemoryStoreLayerTotalsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.LayerTotalsRecord{
		{Name: "fc1", ClassName: "Linear", IsLeafLayer: true, NumParams: 100, Macs: 1000},
		{Name: "fc2", ClassName: "Linear", IsLeafLayer: true, NumParams: 50, Macs: 500},
	}
	if err := store.SaveLayerTotals(ctx, "sum-1", input); err != nil {
		t.Fatalf("save layer totals: %v", err)
	}

	output, ok, err := store.GetLayerTotals(ctx, "sum-1")
	if err != nil {
		t.Fatalf("get layer totals: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted layer totals")
	}
	if len(output) != 2 || output[1].Macs != 500 {
		t.Fatalf("unexpected layer totals: %+v", output)
	}

	if _, ok, err := store.GetLayerTotals(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss for unknown summary id, got ok=%t err=%v", ok, err)
	}
}
