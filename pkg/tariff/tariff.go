// Package tariff loads bill settings from YAML tariff files.
package tariff

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/settings-bill/pkg/model"
)

// file mirrors the on-disk layout. Pointers distinguish a missing key from
// an explicit zero.
type file struct {
	CallCost      *float64 `yaml:"call_cost,omitempty"`
	SmsCost       *float64 `yaml:"sms_cost,omitempty"`
	WarningLevel  *float64 `yaml:"warning_level,omitempty"`
	CriticalLevel *float64 `yaml:"critical_level,omitempty"`
}

// Load reads a YAML tariff file and returns the settings it describes.
// Keys missing from the file are left unset.
func Load(path string) (model.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Settings{}, fmt.Errorf("read tariff file %s: %w", path, err)
	}

	settings, err := LoadFromBytes(data)
	if err != nil {
		return model.Settings{}, fmt.Errorf("tariff file %s: %w", path, err)
	}
	return settings, nil
}

// LoadFromBytes parses YAML tariff data from raw bytes.
func LoadFromBytes(data []byte) (model.Settings, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return model.Settings{}, fmt.Errorf("parse tariff data: %w", err)
	}
	if f.CallCost == nil && f.SmsCost == nil && f.WarningLevel == nil && f.CriticalLevel == nil {
		return model.Settings{}, fmt.Errorf("parse tariff data: no settings defined")
	}

	return model.Settings{
		CallCost:      orUnset(f.CallCost),
		SmsCost:       orUnset(f.SmsCost),
		WarningLevel:  orUnset(f.WarningLevel),
		CriticalLevel: orUnset(f.CriticalLevel),
	}, nil
}

// Marshal renders settings in tariff file form. Unset values are omitted.
func Marshal(s model.Settings) ([]byte, error) {
	out, err := yaml.Marshal(file{
		CallCost:      setOrNil(s.CallCost),
		SmsCost:       setOrNil(s.SmsCost),
		WarningLevel:  setOrNil(s.WarningLevel),
		CriticalLevel: setOrNil(s.CriticalLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tariff: %w", err)
	}
	return out, nil
}

func orUnset(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func setOrNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
