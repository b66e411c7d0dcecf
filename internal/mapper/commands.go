package mapper

import "fmt"

// Scope selects the vendor command family.
type Scope int

const (
	ScopeSystem Scope = iota
	ScopeCircuit
)

// String implements fmt.Stringer.
func (s Scope) String() string {
	switch s {
	case ScopeSystem:
		return "system"
	case ScopeCircuit:
		return "circuit"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// CommandIntent is a normalized command request decoded from a state write.
type CommandIntent struct {
	Scope   Scope
	Circuit int
	Action  string
}

// VendorCommand is the form payload for /api/installation/command.
type VendorCommand struct {
	Name    string
	Value   int
	Circuit *int
}

var circuitActions = map[string]int{
	ActionSetModeOff:           0,
	ActionSetModeTimeProgram:   1,
	ActionSetModeNormal:        2,
	ActionSetModeEco:           3,
	ActionSetModeManualHeating: 4,
	ActionSetModeManualCooling: 5,
}

var systemActions = map[string]int{
	ActionSetModeOff:          0,
	ActionSetModeAutomatic:    1,
	ActionSetModeHotWater:     2,
	ActionSetModeHotWaterOnce: 3,
}

// Translate maps an intent to the vendor command vocabulary.
// It returns false when the action has no value in the scope's table.
func Translate(intent CommandIntent) (VendorCommand, bool) {
	switch intent.Scope {
	case ScopeCircuit:
		v, ok := circuitActions[intent.Action]
		if !ok {
			return VendorCommand{}, false
		}
		circuit := intent.Circuit
		return VendorCommand{Name: CommandCircuitMode, Value: v, Circuit: &circuit}, true
	case ScopeSystem:
		v, ok := systemActions[intent.Action]
		if !ok {
			return VendorCommand{}, false
		}
		return VendorCommand{Name: CommandSystemMode, Value: v}, true
	default:
		return VendorCommand{}, false
	}
}

// CommandIDs lists every command address the bridge accepts writes on.
func CommandIDs(circuits []int) []string {
	ids := make([]string, 0, len(systemActions)+len(circuitActions)*len(circuits))
	for action := range systemActions {
		ids = append(ids, SystemCommandID(action))
	}
	for _, c := range circuits {
		for action := range circuitActions {
			ids = append(ids, CircuitCommandID(c, action))
		}
	}
	return ids
}
