package main

import (
	"encoding/json"
	"fmt"
	"os"

	"snnmeter/internal/device"
	"snnmeter/internal/summary"
	meterapi "snnmeter/pkg/snnmeter"
)

// loadSummarizeRequestFromConfig reads a summary config file: model metadata,
// device profiles, and the traversed layer tree. Layers arrive as a tree and
// are flattened in traversal order for the aggregator; child links are kept so
// leftover-parameter accounting still works.
func loadSummarizeRequestFromConfig(path string) (meterapi.SummarizeRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return meterapi.SummarizeRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return meterapi.SummarizeRequest{}, err
	}

	var req meterapi.SummarizeRequest
	if v, ok := asString(raw["summary_id"]); ok {
		req.SummaryID = v
	}
	if v, ok := asString(raw["model_name"]); ok {
		req.ModelName = v
	}
	if v, ok := asIntSlice(raw["input_size"]); ok {
		req.InputSize = v
	}
	if v, ok := asInt64(raw["total_input_bytes"]); ok {
		req.TotalInputBytes = v
	}
	if v, ok := asString(raw["params_units"]); ok {
		units, ok := summary.ParseUnits(v)
		if !ok {
			return meterapi.SummarizeRequest{}, fmt.Errorf("unknown params_units: %s", v)
		}
		req.ParamsUnits = units
	}

	devices, err := devicesFromConfig(raw)
	if err != nil {
		return meterapi.SummarizeRequest{}, err
	}
	req.Devices = devices

	layersRaw, ok := raw["layers"].([]any)
	if !ok || len(layersRaw) == 0 {
		return meterapi.SummarizeRequest{}, fmt.Errorf("config %s has no layers", path)
	}
	for i, layerRaw := range layersRaw {
		layerMap, ok := layerRaw.(map[string]any)
		if !ok {
			return meterapi.SummarizeRequest{}, fmt.Errorf("layer %d is not an object", i)
		}
		_, flattened := decodeLayerNode(layerMap, 0, i+1)
		req.Layers = append(req.Layers, flattened...)
	}

	return req, nil
}

// devicesFromConfig accepts inline profile objects under "devices" or
// built-in profile names under "device_names".
func devicesFromConfig(raw map[string]any) ([]device.Profile, error) {
	if devicesRaw, ok := raw["devices"].([]any); ok {
		profiles := make([]device.Profile, 0, len(devicesRaw))
		for i, deviceRaw := range devicesRaw {
			deviceMap, ok := deviceRaw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("device %d is not an object", i)
			}
			var profile device.Profile
			if v, ok := asString(deviceMap["name"]); ok {
				profile.Name = v
			}
			if profile.Name == "" {
				return nil, fmt.Errorf("device %d has no name", i)
			}
			if v, ok := asFloat64(deviceMap["energy_per_synapse_event"]); ok {
				profile.EnergyPerSynapseEvent = v
			}
			if v, ok := asFloat64(deviceMap["energy_per_neuron_event"]); ok {
				profile.EnergyPerNeuronEvent = v
			}
			if v, ok := asBool(deviceMap["spiking"]); ok {
				profile.Spiking = v
			}
			profiles = append(profiles, profile)
		}
		return profiles, nil
	}

	if namesRaw, ok := raw["device_names"].([]any); ok {
		profiles := make([]device.Profile, 0, len(namesRaw))
		for i, nameRaw := range namesRaw {
			name, ok := asString(nameRaw)
			if !ok {
				return nil, fmt.Errorf("device name %d is not a string", i)
			}
			profile, ok := device.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("unknown device profile: %s", name)
			}
			profiles = append(profiles, profile)
		}
		return profiles, nil
	}

	return nil, nil
}

// decodeLayerNode builds one LayerInfo and returns it together with the
// pre-order flattening of its subtree.
func decodeLayerNode(layerMap map[string]any, depth, depthIndex int) (*summary.LayerInfo, []*summary.LayerInfo) {
	layer := &summary.LayerInfo{Depth: depth, DepthIndex: depthIndex}
	if v, ok := asString(layerMap["name"]); ok {
		layer.Name = v
	}
	if v, ok := asString(layerMap["class_name"]); ok {
		layer.ClassName = v
	}
	if v, ok := asBool(layerMap["is_recursive"]); ok {
		layer.IsRecursive = v
	}
	if v, ok := asInt64(layerMap["num_params"]); ok {
		layer.NumParams = v
	}
	if v, ok := asInt64(layerMap["trainable_params"]); ok {
		layer.TrainableParams = v
	}
	if v, ok := asInt64(layerMap["macs"]); ok {
		layer.Macs = v
	}
	if v, ok := asInt64(layerMap["output_bytes"]); ok {
		layer.OutputBytes = v
	}
	if v, ok := asInt64(layerMap["param_bytes"]); ok {
		layer.ParamBytes = v
	}
	if v, ok := asFloatSlice(layerMap["energy_contributions"]); ok {
		layer.EnergyContributions = v
	}
	if v, ok := asFloatSlice(layerMap["total_energy_contributions"]); ok {
		layer.TotalEnergyContributions = v
	}

	flattened := []*summary.LayerInfo{layer}
	childrenRaw, _ := layerMap["children"].([]any)
	for i, childRaw := range childrenRaw {
		childMap, ok := childRaw.(map[string]any)
		if !ok {
			continue
		}
		child, subtree := decodeLayerNode(childMap, depth+1, i+1)
		layer.Children = append(layer.Children, child)
		flattened = append(flattened, subtree...)
	}
	layer.IsLeafLayer = len(layer.Children) == 0
	if v, ok := asBool(layerMap["is_leaf_layer"]); ok {
		layer.IsLeafLayer = v
	}
	return layer, flattened
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func asIntSlice(v any) ([]int, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := asInt64(item)
		if !ok {
			return nil, false
		}
		out = append(out, int(n))
	}
	return out, true
}

func asFloatSlice(v any) ([]float64, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := asFloat64(item)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}
