package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// SummaryRecord is the persisted form of one aggregated model summary.
type SummaryRecord struct {
	VersionedRecord
	ID               string    `json:"id"`
	ModelName        string    `json:"model_name,omitempty"`
	CreatedAtUTC     string    `json:"created_at_utc"`
	InputSize        []int     `json:"input_size,omitempty"`
	TotalInputBytes  int64     `json:"total_input_bytes"`
	TotalParams      int64     `json:"total_params"`
	TrainableParams  int64     `json:"trainable_params"`
	TotalMultAdds    int64     `json:"total_mult_adds"`
	TotalParamBytes  int64     `json:"total_param_bytes"`
	TotalOutputBytes int64     `json:"total_output_bytes"`
	ClampEvents      int       `json:"clamp_events"`
	DeviceNames      []string  `json:"device_names"`
	TotalEnergies    []float64 `json:"total_energies"`
}

// DeviceProfileRecord is the persisted form of a hardware device profile.
type DeviceProfileRecord struct {
	VersionedRecord
	Name                  string  `json:"name"`
	EnergyPerSynapseEvent float64 `json:"energy_per_synapse_event"`
	EnergyPerNeuronEvent  float64 `json:"energy_per_neuron_event"`
	Spiking               bool    `json:"spiking"`
}

// LayerTotalsRecord is one flattened per-layer row kept alongside a summary.
type LayerTotalsRecord struct {
	Name            string `json:"name"`
	ClassName       string `json:"class_name,omitempty"`
	Depth           int    `json:"depth"`
	IsLeafLayer     bool   `json:"is_leaf_layer"`
	IsRecursive     bool   `json:"is_recursive"`
	NumParams       int64  `json:"num_params"`
	TrainableParams int64  `json:"trainable_params"`
	Macs            int64  `json:"macs"`
	ParamBytes      int64  `json:"param_bytes"`
	OutputBytes     int64  `json:"output_bytes"`
}
