// Package mapper translates between myIDM payloads and normalized state values.
package mapper

// Normalized mode and state tokens.
const (
	TokenOff           = "off"
	TokenTimeProgram   = "time_program"
	TokenNormal        = "normal"
	TokenEco           = "eco"
	TokenManualHeating = "manual_heating"
	TokenManualCooling = "manual_cooling"
	TokenAutomatic     = "automatic"
	TokenHotWater      = "hot_water"
	TokenHeating       = "heating"

	// TokenUnknown is published for vendor codes missing from the tables.
	TokenUnknown = "unknown"
)

// State tree ids published by the bridge.
const (
	StateConnection       = "info.connection"
	StateInstallationName = "info.installationName"
	StateInstallationID   = "info.installationId"

	StateTempHygienic = "tempHygienic"
	StateTempWater    = "tempWater"
	StateMode         = "mode"
	StateState        = "state"
	StateSumHeat      = "sumHeat"
	StateTempOutside  = "tempOutside"
	StateErrors       = "errors"
	StateError        = "error"

	StateCircuitMode              = "circuits.0.mode"
	StateCircuitState             = "circuits.0.state"
	StateCircuitTempHeat          = "circuits.0.tempHeat"
	StateCircuitTempParamsNormal  = "circuits.0.tempParamsNormal"
	StateCircuitTempParamsEco     = "circuits.0.tempParamsEco"
	StateCircuitTempForerun       = "circuits.0.tempForerun"
	StateCircuitTempForerunActual = "circuits.0.tempForerunActual"
)

// Vendor command names.
const (
	CommandCircuitMode = "circuit_mode"
	CommandSystemMode  = "system_mode"
)

// Command actions, as they appear in command addresses.
const (
	ActionSetModeOff           = "setModeOff"
	ActionSetModeTimeProgram   = "setModeTimeProgram"
	ActionSetModeNormal        = "setModeNormal"
	ActionSetModeEco           = "setModeEco"
	ActionSetModeManualHeating = "setModeManualHeating"
	ActionSetModeManualCooling = "setModeManualCooling"
	ActionSetModeAutomatic     = "setModeAutomatic"
	ActionSetModeHotWater      = "setModeHotWater"
	ActionSetModeHotWaterOnce  = "setModeHotWaterOnce"
)

// Address segments for command ids.
const (
	segmentCircuits = "circuits"
	segmentCommands = "commands"
)

// PrimaryCircuit is the only circuit that is read and commanded.
const PrimaryCircuit = 0
