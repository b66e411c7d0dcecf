package mapper

// Context tells which field a code was read from.
type Context int

const (
	ContextSystem Context = iota
	ContextCircuit
)

// String implements fmt.Stringer.
func (c Context) String() string {
	switch c {
	case ContextSystem:
		return "system"
	case ContextCircuit:
		return "circuit"
	default:
		return "invalid"
	}
}

// stateCodes maps vendor state icons to normalized tokens.
// icon_5 is documented as circuit heating but also shows up on the system field.
var stateCodes = map[string]string{
	"icon_12": TokenOff,
	"icon_3":  TokenHotWater,
	"icon_5":  TokenHeating,
}

// modeCodes maps vendor mode icons to normalized tokens.
var modeCodes = map[string]string{
	"icon_12":   TokenOff,
	"icon_24":   TokenTimeProgram,
	"icon_21":   TokenNormal,
	"icon_11":   TokenEco,
	"icon_10":   TokenManualHeating,
	"icon_1":    TokenManualCooling,
	"icon_auto": TokenAutomatic,
	"icon_3":    TokenHotWater,
}

// Overrides holds per-context replacements for the shared code tables.
// Empty overrides keep lookups context independent.
type Overrides struct {
	SystemModes   map[string]string
	CircuitModes  map[string]string
	SystemStates  map[string]string
	CircuitStates map[string]string
}

// Codec resolves vendor icon codes to normalized tokens.
// It is safe for concurrent use once constructed.
type Codec struct {
	modes  map[Context]map[string]string
	states map[Context]map[string]string
}

// NewCodec builds a codec from the shared tables plus the given overrides.
func NewCodec(o Overrides) *Codec {
	return &Codec{
		modes: map[Context]map[string]string{
			ContextSystem:  merge(modeCodes, o.SystemModes),
			ContextCircuit: merge(modeCodes, o.CircuitModes),
		},
		states: map[Context]map[string]string{
			ContextSystem:  merge(stateCodes, o.SystemStates),
			ContextCircuit: merge(stateCodes, o.CircuitStates),
		},
	}
}

// DefaultCodec returns a codec without overrides.
func DefaultCodec() *Codec {
	return NewCodec(Overrides{})
}

// Mode resolves a mode code. Unmapped codes return TokenUnknown and false.
func (c *Codec) Mode(ctx Context, code string) (string, bool) {
	return lookup(c.modes[ctx], code)
}

// State resolves a state code. Unmapped codes return TokenUnknown and false.
func (c *Codec) State(ctx Context, code string) (string, bool) {
	return lookup(c.states[ctx], code)
}

func lookup(table map[string]string, code string) (string, bool) {
	if token, ok := table[code]; ok {
		return token, true
	}
	return TokenUnknown, false
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
