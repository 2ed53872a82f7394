package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"snnmeter/internal/model"
)

const summaryIndexFile = "summary_index.json"

// SummaryArtifacts bundles everything written to disk for one model summary.
type SummaryArtifacts struct {
	Record     model.SummaryRecord
	ReportText string
	LayerRows  []model.LayerTotalsRecord
}

type SummaryIndexEntry struct {
	SummaryID     string `json:"summary_id"`
	ModelName     string `json:"model_name,omitempty"`
	TotalParams   int64  `json:"total_params"`
	TotalMultAdds int64  `json:"total_mult_adds"`
	DeviceCount   int    `json:"device_count"`
	CreatedAtUTC  string `json:"created_at_utc"`
}

type EnergyEntry struct {
	Device             string
	JoulesPerInference float64
}

func WriteSummaryArtifacts(baseDir string, artifacts SummaryArtifacts) (string, error) {
	if artifacts.Record.ID == "" {
		return "", fmt.Errorf("summary id is required")
	}

	summaryDir := filepath.Join(baseDir, artifacts.Record.ID)
	if err := os.MkdirAll(summaryDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(summaryDir, "summary.json"), artifacts.Record); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(summaryDir, "layer_totals.json"), artifacts.LayerRows); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(summaryDir, "report.txt"), []byte(artifacts.ReportText), 0o644); err != nil {
		return "", err
	}
	if err := writeEnergyCSV(summaryDir, artifacts.Record); err != nil {
		return "", err
	}

	return summaryDir, nil
}

func ReadSummaryRecord(baseDir, summaryID string) (model.SummaryRecord, bool, error) {
	path := filepath.Join(baseDir, summaryID, "summary.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.SummaryRecord{}, false, nil
		}
		return model.SummaryRecord{}, false, err
	}

	var record model.SummaryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.SummaryRecord{}, false, err
	}
	return record, true, nil
}

func ReadLayerTotals(baseDir, summaryID string) ([]model.LayerTotalsRecord, bool, error) {
	path := filepath.Join(baseDir, summaryID, "layer_totals.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var rows []model.LayerTotalsRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

func AppendSummaryIndex(baseDir string, entry SummaryIndexEntry) error {
	if entry.SummaryID == "" {
		return fmt.Errorf("summary id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListSummaryIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].SummaryID == entry.SummaryID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, summaryIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, summaryIndexFile), index)
}

func ListSummaryIndex(baseDir string) ([]SummaryIndexEntry, error) {
	path := filepath.Join(baseDir, summaryIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []SummaryIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []SummaryIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry SummaryIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]SummaryIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ExportSummaryArtifacts(baseDir, summaryID, outDir string) (string, error) {
	if summaryID == "" {
		return "", fmt.Errorf("summary id is required")
	}

	src := filepath.Join(baseDir, summaryID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, summaryID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"summary.json", "layer_totals.json", "report.txt", "energies.csv"}
	for _, file := range files {
		srcPath := filepath.Join(src, file)
		if _, err := os.Stat(srcPath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		if err := copyFile(srcPath, filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}

	return dst, nil
}

func writeEnergyCSV(summaryDir string, record model.SummaryRecord) error {
	path := filepath.Join(summaryDir, "energies.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"device", "joules_per_inference"}); err != nil {
		return err
	}
	for i, name := range record.DeviceNames {
		var value float64
		if i < len(record.TotalEnergies) {
			value = record.TotalEnergies[i]
		}
		if err := writer.Write([]string{
			name,
			strconv.FormatFloat(value, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadEnergySeries(baseDir, summaryID string) ([]EnergyEntry, bool, error) {
	path := filepath.Join(baseDir, summaryID, "energies.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []EnergyEntry{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("energy series header must have at least 2 columns")
	}

	entries := make([]EnergyEntry, 0, 8)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(row) < 2 {
			return nil, false, fmt.Errorf("energy series row must have at least 2 columns")
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, false, err
		}
		entries = append(entries, EnergyEntry{Device: row[0], JoulesPerInference: value})
	}
	return entries, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
