// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sensor

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Preset describes the simulated range and unit of one kind of sensor.
// Values are drawn from [Min, Max).
type Preset struct {
	Name string
	Unit string
	Min  float64
	Max  float64
}

var presets = map[string]Preset{
	"temperature": {Name: "temperature", Unit: "°C", Min: -20, Max: 50},
	"pressure":    {Name: "pressure", Unit: "hPa", Min: 950, Max: 1050},
	"humidity":    {Name: "humidity", Unit: "%", Min: 10, Max: 90},
	"light":       {Name: "light", Unit: "lux", Min: 100, Max: 1000},
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (Preset, error) {
	preset, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown sensor preset %q (available: %s)",
			name, strings.Join(PresetNames(), ", "))
	}
	return preset, nil
}

// PresetNames returns the names of all presets, sorted.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(presets))
}
