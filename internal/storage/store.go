package storage

import (
	"context"

	"snnmeter/internal/model"
)

// Store defines persistence operations for model summaries, device profiles,
// and per-layer totals.
type Store interface {
	Init(ctx context.Context) error
	SaveSummary(ctx context.Context, record model.SummaryRecord) error
	GetSummary(ctx context.Context, id string) (model.SummaryRecord, bool, error)
	ListSummaryIDs(ctx context.Context) ([]string, error)
	SaveDeviceProfile(ctx context.Context, record model.DeviceProfileRecord) error
	GetDeviceProfile(ctx context.Context, name string) (model.DeviceProfileRecord, bool, error)
	SaveLayerTotals(ctx context.Context, summaryID string, rows []model.LayerTotalsRecord) error
	GetLayerTotals(ctx context.Context, summaryID string) ([]model.LayerTotalsRecord, bool, error)
}
