package mapper

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"idm_bridge/internal/types"
)

func TestCodecMode(t *testing.T) {
	codec := DefaultCodec()

	tests := []struct {
		code string
		want string
	}{
		{"icon_12", TokenOff},
		{"icon_24", TokenTimeProgram},
		{"icon_21", TokenNormal},
		{"icon_11", TokenEco},
		{"icon_10", TokenManualHeating},
		{"icon_1", TokenManualCooling},
		{"icon_auto", TokenAutomatic},
		{"icon_3", TokenHotWater},
	}

	for _, tt := range tests {
		for _, ctx := range []Context{ContextSystem, ContextCircuit} {
			got, ok := codec.Mode(ctx, tt.code)
			if !ok || got != tt.want {
				t.Errorf("Mode(%v, %q) = %q, %v, want %q, true", ctx, tt.code, got, ok, tt.want)
			}
			// lookups are pure
			again, _ := codec.Mode(ctx, tt.code)
			if again != got {
				t.Errorf("Mode(%v, %q) not stable: %q then %q", ctx, tt.code, got, again)
			}
		}
	}
}

func TestCodecState(t *testing.T) {
	codec := DefaultCodec()

	tests := []struct {
		code string
		want string
	}{
		{"icon_12", TokenOff},
		{"icon_3", TokenHotWater},
		{"icon_5", TokenHeating},
	}

	for _, tt := range tests {
		sys, _ := codec.State(ContextSystem, tt.code)
		circ, _ := codec.State(ContextCircuit, tt.code)
		if sys != tt.want || circ != tt.want {
			t.Errorf("State(%q) = system %q, circuit %q, want %q", tt.code, sys, circ, tt.want)
		}
	}
}

func TestCodecUnknown(t *testing.T) {
	codec := DefaultCodec()

	for _, code := range []string{"", "icon_99", "ICON_12", "icon_5 "} {
		got, ok := codec.Mode(ContextSystem, code)
		if ok || got != TokenUnknown {
			t.Errorf("Mode(%q) = %q, %v, want %q, false", code, got, ok, TokenUnknown)
		}
		got, ok = codec.State(ContextCircuit, code)
		if ok || got != TokenUnknown {
			t.Errorf("State(%q) = %q, %v, want %q, false", code, got, ok, TokenUnknown)
		}
	}

	// icon_5 is a state, not a mode
	if got, ok := codec.Mode(ContextCircuit, "icon_5"); ok {
		t.Errorf("Mode(icon_5) = %q, want unmapped", got)
	}
}

func TestCodecOverrides(t *testing.T) {
	codec := NewCodec(Overrides{
		SystemStates: map[string]string{"icon_5": TokenHotWater},
	})

	if got, _ := codec.State(ContextSystem, "icon_5"); got != TokenHotWater {
		t.Errorf("system icon_5 = %q, want %q", got, TokenHotWater)
	}
	if got, _ := codec.State(ContextCircuit, "icon_5"); got != TokenHeating {
		t.Errorf("circuit icon_5 = %q, want %q", got, TokenHeating)
	}

	// overrides must not leak into the shared table
	if got, _ := DefaultCodec().State(ContextSystem, "icon_5"); got != TokenHeating {
		t.Errorf("default system icon_5 = %q, want %q", got, TokenHeating)
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"45.2", 45.2},
		{"  -3.5", -3.5},
		{"45.2 °C", 45.2},
		{"1234 kWh", 1234},
		{".5", 0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"1e", 1},
		{"+7", 7},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		got := ParseFloat(tt.input)
		if got != tt.want {
			t.Errorf("ParseFloat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFloat_NaN(t *testing.T) {
	for _, input := range []string{"", "abc", "°C 45", "-", ".", "NaN", "--1"} {
		if got := ParseFloat(input); !math.IsNaN(got) {
			t.Errorf("ParseFloat(%q) = %v, want NaN", input, got)
		}
	}

	if got := ToFloat(types.RawValue{}); !math.IsNaN(got) {
		t.Errorf("ToFloat(missing) = %v, want NaN", got)
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name        string
		intent      CommandIntent
		wantOK      bool
		wantName    string
		wantValue   int
		wantCircuit *int
	}{
		{"circuit eco", CommandIntent{Scope: ScopeCircuit, Action: ActionSetModeEco}, true, CommandCircuitMode, 3, intPtr(0)},
		{"circuit off", CommandIntent{Scope: ScopeCircuit, Circuit: 1, Action: ActionSetModeOff}, true, CommandCircuitMode, 0, intPtr(1)},
		{"circuit cooling", CommandIntent{Scope: ScopeCircuit, Action: ActionSetModeManualCooling}, true, CommandCircuitMode, 5, intPtr(0)},
		{"system hot water once", CommandIntent{Scope: ScopeSystem, Action: ActionSetModeHotWaterOnce}, true, CommandSystemMode, 3, nil},
		{"system automatic", CommandIntent{Scope: ScopeSystem, Action: ActionSetModeAutomatic}, true, CommandSystemMode, 1, nil},
		{"system has no eco", CommandIntent{Scope: ScopeSystem, Action: ActionSetModeEco}, false, "", 0, nil},
		{"circuit has no automatic", CommandIntent{Scope: ScopeCircuit, Action: ActionSetModeAutomatic}, false, "", 0, nil},
		{"unknown action", CommandIntent{Scope: ScopeCircuit, Action: "setModeTurbo"}, false, "", 0, nil},
		{"unknown scope", CommandIntent{Scope: Scope(7), Action: ActionSetModeOff}, false, "", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.intent)
			if ok != tt.wantOK {
				t.Fatalf("Translate() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Name != tt.wantName || got.Value != tt.wantValue {
				t.Errorf("Translate() = %s/%d, want %s/%d", got.Name, got.Value, tt.wantName, tt.wantValue)
			}
			switch {
			case tt.wantCircuit == nil && got.Circuit != nil:
				t.Errorf("Circuit = %d, want none", *got.Circuit)
			case tt.wantCircuit != nil && (got.Circuit == nil || *got.Circuit != *tt.wantCircuit):
				t.Errorf("Circuit = %v, want %d", got.Circuit, *tt.wantCircuit)
			}
		})
	}
}

func TestParseCommandAddress(t *testing.T) {
	tests := []struct {
		id     string
		wantOK bool
		want   CommandIntent
	}{
		{"circuits.0.commands.setModeEco", true, CommandIntent{Scope: ScopeCircuit, Circuit: 0, Action: ActionSetModeEco}},
		{"idm.0.circuits.2.commands.setModeOff", true, CommandIntent{Scope: ScopeCircuit, Circuit: 2, Action: ActionSetModeOff}},
		{"commands.setModeHotWaterOnce", true, CommandIntent{Scope: ScopeSystem, Action: ActionSetModeHotWaterOnce}},
		{"idm.0.commands.setModeAutomatic", true, CommandIntent{Scope: ScopeSystem, Action: ActionSetModeAutomatic}},
		{"circuits.x.commands.setModeEco", false, CommandIntent{}},
		{"circuits.-1.commands.setModeEco", false, CommandIntent{}},
		{"circuits.commands.setModeEco", false, CommandIntent{}},
		{"circuits.0.mode", false, CommandIntent{}},
		{"commands", false, CommandIntent{}},
		{"commands.", false, CommandIntent{}},
		{"commands.setModeEco.extra", false, CommandIntent{}},
		{"", false, CommandIntent{}},
	}

	for _, tt := range tests {
		got, ok := ParseCommandAddress(tt.id)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseCommandAddress(%q) = %+v, %v, want %+v, %v", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCommandIDsRoundTrip(t *testing.T) {
	for _, id := range CommandIDs([]int{0}) {
		intent, ok := ParseCommandAddress(id)
		if !ok {
			t.Errorf("ParseCommandAddress(%q) failed", id)
			continue
		}
		if _, ok := Translate(intent); !ok {
			t.Errorf("Translate(%+v) from %q failed", intent, id)
		}
	}
}

func TestBuildSnapshot(t *testing.T) {
	body := `{
		"temp_hygienic": "60.1",
		"temp_water": 48.5,
		"mode": "icon_12",
		"state": "icon_99",
		"sum_heat": "1234.5 kWh",
		"temp_outside": "n/a",
		"temp_heat": "31",
		"error": false,
		"errors": [ {"code": 1} ],
		"circuits": [{
			"mode": "icon_11",
			"state": "icon_5",
			"temp_params_normal": {"value": "21.5"},
			"temp_params_eco": {"value": 18},
			"temp_forerun": "35.0",
			"temp_forerun_actual": null
		}]
	}`

	var resp types.ValuesResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	now := time.Unix(1700000000, 0)
	snap, unmapped, err := DefaultCodec().BuildSnapshot(&resp, now)
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}

	if snap.SystemMode != TokenOff {
		t.Errorf("SystemMode = %q, want off", snap.SystemMode)
	}
	if snap.CircuitMode != TokenEco {
		t.Errorf("CircuitMode = %q, want eco", snap.CircuitMode)
	}
	if snap.CircuitState != TokenHeating {
		t.Errorf("CircuitState = %q, want heating", snap.CircuitState)
	}
	if snap.SystemState != TokenUnknown {
		t.Errorf("SystemState = %q, want unknown", snap.SystemState)
	}
	if len(unmapped) != 1 || unmapped[0].Code != "icon_99" || unmapped[0].Context != ContextSystem {
		t.Errorf("unmapped = %+v, want one system icon_99", unmapped)
	}

	if snap.TempHygienic != 60.1 || snap.TempWater != 48.5 || snap.SumHeat != 1234.5 {
		t.Errorf("temps = %v/%v/%v", snap.TempHygienic, snap.TempWater, snap.SumHeat)
	}
	if !math.IsNaN(snap.TempOutside) {
		t.Errorf("TempOutside = %v, want NaN", snap.TempOutside)
	}
	if !math.IsNaN(snap.CircuitTempForerunActual) {
		t.Errorf("CircuitTempForerunActual = %v, want NaN", snap.CircuitTempForerunActual)
	}
	if snap.CircuitTempNormal != 21.5 || snap.CircuitTempEco != 18 || snap.CircuitTempHeat != 31 {
		t.Errorf("circuit temps = %v/%v/%v", snap.CircuitTempNormal, snap.CircuitTempEco, snap.CircuitTempHeat)
	}
	if snap.Errors != `[{"code":1}]` {
		t.Errorf("Errors = %q", snap.Errors)
	}
	if snap.Error {
		t.Error("Error flag should be false")
	}
	if !snap.FetchedAt.Equal(now) {
		t.Errorf("FetchedAt = %v, want %v", snap.FetchedAt, now)
	}

	if got := len(StateValues(snap)); got != 15 {
		t.Errorf("StateValues() len = %d, want 15", got)
	}
}

func TestBuildSnapshot_NonStringCodes(t *testing.T) {
	body := `{"mode": 12, "state": null, "circuits": [{"mode": true, "state": "icon_5"}]}`

	var resp types.ValuesResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	snap, unmapped, err := DefaultCodec().BuildSnapshot(&resp, time.Now())
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}

	if snap.SystemMode != TokenUnknown || snap.SystemState != TokenUnknown || snap.CircuitMode != TokenUnknown {
		t.Errorf("modes = %q/%q/%q, want unknown", snap.SystemMode, snap.SystemState, snap.CircuitMode)
	}
	if snap.CircuitState != TokenHeating {
		t.Errorf("CircuitState = %q, want heating", snap.CircuitState)
	}
	if len(unmapped) != 3 || unmapped[0].Code != "12" {
		t.Errorf("unmapped = %+v, want three entries starting with code 12", unmapped)
	}
}

func TestBuildSnapshot_NoCircuits(t *testing.T) {
	resp := &types.ValuesResponse{Mode: types.RawValue{Text: "icon_12", Valid: true}}

	snap, _, err := DefaultCodec().BuildSnapshot(resp, time.Now())
	if err != ErrNoCircuits {
		t.Errorf("BuildSnapshot() error = %v, want ErrNoCircuits", err)
	}
	if snap != nil {
		t.Error("snapshot should be discarded")
	}
}

func TestParseInstallationID(t *testing.T) {
	if got := ParseInstallationID("42"); got != int64(42) {
		t.Errorf("ParseInstallationID(42) = %#v, want int64(42)", got)
	}
	if got := ParseInstallationID("abc-1"); got != "abc-1" {
		t.Errorf("ParseInstallationID(abc-1) = %#v, want raw string", got)
	}
}

func intPtr(i int) *int {
	return &i
}
