package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"idm_bridge/internal/types"
)

// ErrNoCircuits is returned when the values payload carries no circuit.
var ErrNoCircuits = errors.New("values response has no circuits")

// Unmapped records a vendor code that had no table entry.
type Unmapped struct {
	Field   string
	Context Context
	Code    string
}

// BuildSnapshot normalizes a values response into a DeviceSnapshot.
// Only the first circuit is read. Codes of any JSON type are looked up by their
// text; unmapped ones resolve to TokenUnknown and are returned so the caller can log them.
func (c *Codec) BuildSnapshot(resp *types.ValuesResponse, now time.Time) (*types.DeviceSnapshot, []Unmapped, error) {
	if len(resp.Circuits) == 0 {
		return nil, nil, ErrNoCircuits
	}
	circuit := resp.Circuits[0]

	var unmapped []Unmapped
	resolve := func(field string, ctx Context, code string, fn func(Context, string) (string, bool)) string {
		token, ok := fn(ctx, code)
		if !ok {
			unmapped = append(unmapped, Unmapped{Field: field, Context: ctx, Code: code})
		}
		return token
	}

	snap := &types.DeviceSnapshot{
		SystemMode:   resolve(StateMode, ContextSystem, resp.Mode.Text, c.Mode),
		SystemState:  resolve(StateState, ContextSystem, resp.State.Text, c.State),
		CircuitMode:  resolve(StateCircuitMode, ContextCircuit, circuit.Mode.Text, c.Mode),
		CircuitState: resolve(StateCircuitState, ContextCircuit, circuit.State.Text, c.State),

		TempHygienic: ToFloat(resp.TempHygienic),
		TempWater:    ToFloat(resp.TempWater),
		SumHeat:      ToFloat(resp.SumHeat),
		TempOutside:  ToFloat(resp.TempOutside),

		CircuitTempHeat:          ToFloat(resp.TempHeat),
		CircuitTempNormal:        ToFloat(circuit.TempParamsNormal.Value),
		CircuitTempEco:           ToFloat(circuit.TempParamsEco.Value),
		CircuitTempForerun:       ToFloat(circuit.TempForerun),
		CircuitTempForerunActual: ToFloat(circuit.TempForerunActual),

		Errors: compactErrors(resp.Errors),
		Error:  resp.Error.Truthy(),

		FetchedAt: now,
	}

	return snap, unmapped, nil
}

// StateValues flattens a snapshot into state ids and values, in publish order.
func StateValues(s *types.DeviceSnapshot) []StateValue {
	return []StateValue{
		{StateTempHygienic, s.TempHygienic},
		{StateTempWater, s.TempWater},
		{StateMode, s.SystemMode},
		{StateState, s.SystemState},
		{StateSumHeat, s.SumHeat},
		{StateTempOutside, s.TempOutside},
		{StateErrors, s.Errors},
		{StateError, s.Error},
		{StateCircuitMode, s.CircuitMode},
		{StateCircuitState, s.CircuitState},
		{StateCircuitTempHeat, s.CircuitTempHeat},
		{StateCircuitTempParamsNormal, s.CircuitTempNormal},
		{StateCircuitTempParamsEco, s.CircuitTempEco},
		{StateCircuitTempForerun, s.CircuitTempForerun},
		{StateCircuitTempForerunActual, s.CircuitTempForerunActual},
	}
}

// StateValue is one addressable value of a snapshot.
type StateValue struct {
	ID    string
	Value any
}

func compactErrors(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
