package mapper

import (
	"strconv"
	"strings"
)

// SystemCommandID returns the state id of a system command, e.g. "commands.setModeAutomatic".
func SystemCommandID(action string) string {
	return segmentCommands + "." + action
}

// CircuitCommandID returns the state id of a circuit command, e.g. "circuits.0.commands.setModeEco".
func CircuitCommandID(circuit int, action string) string {
	return segmentCircuits + "." + strconv.Itoa(circuit) + "." + segmentCommands + "." + action
}

// ParseCommandAddress decomposes a state id into a command intent.
// Ids may carry a leading namespace (e.g. "idm.0.circuits.0.commands.setModeEco").
// It returns false for anything that is not command shaped.
func ParseCommandAddress(id string) (CommandIntent, bool) {
	parts := strings.Split(id, ".")

	// "commands" must be the second to last segment
	idx := len(parts) - 2
	if idx < 0 || parts[idx] != segmentCommands {
		return CommandIntent{}, false
	}

	action := parts[idx+1]
	if action == "" {
		return CommandIntent{}, false
	}

	if idx >= 2 && parts[idx-2] == segmentCircuits {
		n, err := strconv.Atoi(parts[idx-1])
		if err != nil || n < 0 {
			return CommandIntent{}, false
		}
		return CommandIntent{Scope: ScopeCircuit, Circuit: n, Action: action}, true
	}

	// a "circuits" segment directly before "commands" without an index is malformed
	if idx >= 1 && parts[idx-1] == segmentCircuits {
		return CommandIntent{}, false
	}

	return CommandIntent{Scope: ScopeSystem, Action: action}, true
}
