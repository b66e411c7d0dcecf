// Package types contains shared type definitions used across the idm_bridge packages.
package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Session is the result of a successful vendor login.
// A Session is never mutated after creation; a new login replaces it.
type Session struct {
	Token            string
	InstallationID   string
	InstallationName string
	AcquiredAt       time.Time
}

// LoginResponse is the body returned by /api/user/login.
type LoginResponse struct {
	Installations []Installation `json:"installations"`
	Token         string         `json:"token"`
}

// Installation represents a heat pump installation.
type Installation struct {
	ID     RawValue        `json:"id"`
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config,omitempty"`
}

// ValuesResponse is the body returned by /api/installation/values.
type ValuesResponse struct {
	TempHygienic RawValue        `json:"temp_hygienic"`
	TempWater    RawValue        `json:"temp_water"`
	Mode         RawValue        `json:"mode"`
	State        RawValue        `json:"state"`
	SumHeat      RawValue        `json:"sum_heat"`
	TempOutside  RawValue        `json:"temp_outside"`
	TempHeat     RawValue        `json:"temp_heat"`
	Error        RawValue        `json:"error"`
	Errors       json.RawMessage `json:"errors"`
	Circuits     []Circuit       `json:"circuits"`
}

// Circuit is a heating loop as reported by the values endpoint.
type Circuit struct {
	Mode              RawValue   `json:"mode"`
	State             RawValue   `json:"state"`
	TempParamsNormal  ParamValue `json:"temp_params_normal"`
	TempParamsEco     ParamValue `json:"temp_params_eco"`
	TempForerun       RawValue   `json:"temp_forerun"`
	TempForerunActual RawValue   `json:"temp_forerun_actual"`
}

// ParamValue wraps a setpoint that the vendor nests as {"value": ...}.
type ParamValue struct {
	Value RawValue `json:"value"`
}

// CommandResponse is the body returned by /api/installation/command.
type CommandResponse struct {
	Status bool `json:"status"`
}

// RawValue keeps a scalar JSON field in its textual form.
// The vendor sends numbers both as JSON numbers and as strings with units.
type RawValue struct {
	Text  string
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = RawValue{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawValue{Text: s, Valid: true}
		return nil
	}

	*r = RawValue{Text: string(data), Valid: true}
	return nil
}

// Truthy reports whether the value reads as a set flag (true, non-zero number, "true").
func (r RawValue) Truthy() bool {
	if !r.Valid {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(r.Text)) {
	case "", "0", "false", "0.0":
		return false
	}
	return true
}

// DeviceSnapshot is the normalized state of the installation at one point in time.
type DeviceSnapshot struct {
	SystemMode   string
	SystemState  string
	CircuitMode  string
	CircuitState string

	TempHygienic float64
	TempWater    float64
	SumHeat      float64
	TempOutside  float64

	CircuitTempHeat          float64
	CircuitTempNormal        float64
	CircuitTempEco           float64
	CircuitTempForerun       float64
	CircuitTempForerunActual float64

	Errors string
	Error  bool

	FetchedAt time.Time
}
