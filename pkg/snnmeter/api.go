package snnmeter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"snnmeter/internal/device"
	"snnmeter/internal/model"
	"snnmeter/internal/report"
	"snnmeter/internal/storage"
	"snnmeter/internal/summary"
)

const (
	defaultReportsDir = "reports"
	defaultDBPath     = "snnmeter.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ReportsDir string
}

type Client struct {
	store      storage.Store
	reportsDir string

	initOnce sync.Once
	initErr  error
}

// SummarizeRequest carries an already-traversed layer sequence plus the
// device profiles its energy totals are aligned with.
type SummarizeRequest struct {
	SummaryID       string
	ModelName       string
	Layers          []*summary.LayerInfo
	InputSize       []int
	TotalInputBytes int64
	Devices         []device.Profile
	ParamsUnits     summary.Units
	Formatting      *summary.FormattingOptions
}

type SummarizeResult struct {
	SummaryID    string
	ArtifactsDir string
	Report       string
	Statistics   *summary.ModelStatistics
}

type SummariesRequest struct {
	Limit int
}

type SummaryItem struct {
	SummaryID     string
	ModelName     string
	TotalParams   int64
	TotalMultAdds int64
	DeviceCount   int
	CreatedAtUTC  string
}

type ExportRequest struct {
	SummaryID string
	Latest    bool
	OutDir    string
}

type ExportSummary struct {
	SummaryID string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	reportsDir := opts.ReportsDir
	if reportsDir == "" {
		reportsDir = defaultReportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		reportsDir: reportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the store and seeds the built-in device profiles.
func (c *Client) Init(ctx context.Context) error {
	if err := c.ensureInit(ctx); err != nil {
		return err
	}
	for _, profile := range device.BuiltinProfiles() {
		if err := c.store.SaveDeviceProfile(ctx, deviceRecord(profile)); err != nil {
			return err
		}
	}
	return nil
}

// Summarize aggregates the layer sequence into model-wide totals, persists the
// snapshot, and writes the report artifacts.
func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResult, error) {
	if err := c.ensureInit(ctx); err != nil {
		return SummarizeResult{}, err
	}

	formatting := req.Formatting
	if formatting == nil {
		formatting = summary.NewFormattingOptions()
		formatting.ParamsUnits = req.ParamsUnits
	}

	stats, err := summary.NewModelStatistics(req.Layers, req.InputSize, req.TotalInputBytes, formatting, req.Devices)
	if err != nil {
		return SummarizeResult{}, err
	}

	summaryID := req.SummaryID
	if summaryID == "" {
		summaryID = uuid.NewString()
	}

	record := model.SummaryRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:               summaryID,
		ModelName:        req.ModelName,
		CreatedAtUTC:     time.Now().UTC().Format(time.RFC3339Nano),
		InputSize:        append([]int(nil), req.InputSize...),
		TotalInputBytes:  req.TotalInputBytes,
		TotalParams:      stats.TotalParams,
		TrainableParams:  stats.TrainableParams,
		TotalMultAdds:    stats.TotalMultAdds,
		TotalParamBytes:  stats.TotalParamBytes,
		TotalOutputBytes: stats.TotalOutputBytes,
		ClampEvents:      stats.ClampEvents,
		DeviceNames:      deviceNames(req.Devices),
		TotalEnergies:    append([]float64(nil), stats.TotalEnergies...),
	}

	if err := c.store.SaveSummary(ctx, record); err != nil {
		return SummarizeResult{}, err
	}
	layerRows := flattenLayerRows(req.Layers)
	if err := c.store.SaveLayerTotals(ctx, summaryID, layerRows); err != nil {
		return SummarizeResult{}, err
	}
	for _, profile := range req.Devices {
		if err := c.store.SaveDeviceProfile(ctx, deviceRecord(profile)); err != nil {
			return SummarizeResult{}, err
		}
	}

	reportText := stats.Render()
	artifactsDir, err := report.WriteSummaryArtifacts(c.reportsDir, report.SummaryArtifacts{
		Record:     record,
		ReportText: reportText,
		LayerRows:  layerRows,
	})
	if err != nil {
		return SummarizeResult{}, err
	}
	if err := report.AppendSummaryIndex(c.reportsDir, report.SummaryIndexEntry{
		SummaryID:     summaryID,
		ModelName:     req.ModelName,
		TotalParams:   stats.TotalParams,
		TotalMultAdds: stats.TotalMultAdds,
		DeviceCount:   len(req.Devices),
		CreatedAtUTC:  record.CreatedAtUTC,
	}); err != nil {
		return SummarizeResult{}, err
	}

	return SummarizeResult{
		SummaryID:    summaryID,
		ArtifactsDir: artifactsDir,
		Report:       reportText,
		Statistics:   stats,
	}, nil
}

// Summaries lists recorded summaries, newest first.
func (c *Client) Summaries(_ context.Context, req SummariesRequest) ([]SummaryItem, error) {
	entries, err := report.ListSummaryIndex(c.reportsDir)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	items := make([]SummaryItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, SummaryItem{
			SummaryID:     entry.SummaryID,
			ModelName:     entry.ModelName,
			TotalParams:   entry.TotalParams,
			TotalMultAdds: entry.TotalMultAdds,
			DeviceCount:   entry.DeviceCount,
			CreatedAtUTC:  entry.CreatedAtUTC,
		})
	}
	return items, nil
}

// Export copies a summary's artifacts into OutDir. Latest resolves the most
// recent index entry when no summary ID is given.
func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	summaryID := req.SummaryID
	if summaryID == "" && req.Latest {
		entries, err := report.ListSummaryIndex(c.reportsDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, fmt.Errorf("no summaries recorded")
		}
		summaryID = entries[0].SummaryID
	}
	if summaryID == "" {
		return ExportSummary{}, fmt.Errorf("summary id is required (or pass latest)")
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = "exports"
	}
	dir, err := report.ExportSummaryArtifacts(c.reportsDir, summaryID, outDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{SummaryID: summaryID, Directory: dir}, nil
}

func (c *Client) ensureInit(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

func flattenLayerRows(layers []*summary.LayerInfo) []model.LayerTotalsRecord {
	rows := make([]model.LayerTotalsRecord, 0, len(layers))
	for _, layer := range layers {
		rows = append(rows, model.LayerTotalsRecord{
			Name:            layer.Name,
			ClassName:       layer.ClassName,
			Depth:           layer.Depth,
			IsLeafLayer:     layer.IsLeafLayer,
			IsRecursive:     layer.IsRecursive,
			NumParams:       layer.NumParams,
			TrainableParams: layer.TrainableParams,
			Macs:            layer.Macs,
			ParamBytes:      layer.ParamBytes,
			OutputBytes:     layer.OutputBytes,
		})
	}
	return rows
}

func deviceRecord(profile device.Profile) model.DeviceProfileRecord {
	return model.DeviceProfileRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		Name:                  profile.Name,
		EnergyPerSynapseEvent: profile.EnergyPerSynapseEvent,
		EnergyPerNeuronEvent:  profile.EnergyPerNeuronEvent,
		Spiking:               profile.Spiking,
	}
}

func deviceNames(profiles []device.Profile) []string {
	names := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		names = append(names, profile.Name)
	}
	return names
}
