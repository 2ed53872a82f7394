package storage

import (
	"encoding/json"
	"errors"

	"snnmeter/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeSummary(s model.SummaryRecord) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeSummary(data []byte) (model.SummaryRecord, error) {
	var record model.SummaryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.SummaryRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.SummaryRecord{}, err
	}
	return record, nil
}

func EncodeDeviceProfile(p model.DeviceProfileRecord) ([]byte, error) {
	return json.Marshal(p)
}

func DecodeDeviceProfile(data []byte) (model.DeviceProfileRecord, error) {
	var record model.DeviceProfileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.DeviceProfileRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.DeviceProfileRecord{}, err
	}
	return record, nil
}

func EncodeLayerTotals(rows []model.LayerTotalsRecord) ([]byte, error) {
	return json.Marshal(rows)
}

func DecodeLayerTotals(data []byte) ([]model.LayerTotalsRecord, error) {
	var rows []model.LayerTotalsRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
