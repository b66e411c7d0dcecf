package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metric label names
const (
	LabelInstallationID   = "installation_id"
	LabelInstallationName = "installation_name"
	LabelMode             = "mode"
	LabelState            = "state"
	LabelResult           = "result"
)

// Result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultNack    = "nack"
	ResultDropped = "dropped"
)

// MetricSet holds all Prometheus metric descriptors for the bridge.
type MetricSet struct {
	// Temperature metrics
	hygienicTemp      *prometheus.Desc
	waterTemp         *prometheus.Desc
	outsideTemp       *prometheus.Desc
	heatTemp          *prometheus.Desc
	normalSetpoint    *prometheus.Desc
	ecoSetpoint       *prometheus.Desc
	forerunTemp       *prometheus.Desc
	forerunActualTemp *prometheus.Desc
	sumHeat           *prometheus.Desc

	// Mode/state metrics
	systemMode   *prometheus.Desc
	systemState  *prometheus.Desc
	circuitMode  *prometheus.Desc
	circuitState *prometheus.Desc

	// Status metrics
	sessionActive *prometheus.Desc
	errorFlag     *prometheus.Desc
	lastFetchUnix *prometheus.Desc

	// Bridge metrics
	logins        *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	commands      *prometheus.CounterVec
	cycleDuration prometheus.Histogram
}

// newMetricSet creates all metric descriptors.
func newMetricSet() *MetricSet {
	labels := []string{LabelInstallationID, LabelInstallationName}
	labelsWithMode := append(append([]string{}, labels...), LabelMode)
	labelsWithState := append(append([]string{}, labels...), LabelState)

	return &MetricSet{
		hygienicTemp: prometheus.NewDesc(
			"idm_hygienic_temperature_celsius",
			"Hygienic (legionella) temperature (°C)",
			labels, nil,
		),
		waterTemp: prometheus.NewDesc(
			"idm_water_temperature_celsius",
			"Hot water temperature (°C)",
			labels, nil,
		),
		outsideTemp: prometheus.NewDesc(
			"idm_outside_temperature_celsius",
			"Outside temperature (°C)",
			labels, nil,
		),
		heatTemp: prometheus.NewDesc(
			"idm_circuit_heat_temperature_celsius",
			"Circuit heating temperature (°C)",
			labels, nil,
		),
		normalSetpoint: prometheus.NewDesc(
			"idm_circuit_normal_setpoint_celsius",
			"Circuit normal mode setpoint (°C)",
			labels, nil,
		),
		ecoSetpoint: prometheus.NewDesc(
			"idm_circuit_eco_setpoint_celsius",
			"Circuit eco mode setpoint (°C)",
			labels, nil,
		),
		forerunTemp: prometheus.NewDesc(
			"idm_circuit_forerun_target_celsius",
			"Circuit forerun target temperature (°C)",
			labels, nil,
		),
		forerunActualTemp: prometheus.NewDesc(
			"idm_circuit_forerun_actual_celsius",
			"Circuit forerun actual temperature (°C)",
			labels, nil,
		),
		sumHeat: prometheus.NewDesc(
			"idm_heat_kwh",
			"Accumulated heat (kWh)",
			labels, nil,
		),

		systemMode: prometheus.NewDesc(
			"idm_system_mode",
			"Current system mode (1 for current)",
			labelsWithMode, nil,
		),
		systemState: prometheus.NewDesc(
			"idm_system_state",
			"Current system state (1 for current)",
			labelsWithState, nil,
		),
		circuitMode: prometheus.NewDesc(
			"idm_circuit_mode",
			"Current circuit mode (1 for current)",
			labelsWithMode, nil,
		),
		circuitState: prometheus.NewDesc(
			"idm_circuit_state",
			"Current circuit state (1 for current)",
			labelsWithState, nil,
		),

		sessionActive: prometheus.NewDesc(
			"idm_session_active",
			"Login session held (1) / not held (0)",
			nil, nil,
		),
		errorFlag: prometheus.NewDesc(
			"idm_error",
			"Installation reports an error (1) / no error (0)",
			labels, nil,
		),
		lastFetchUnix: prometheus.NewDesc(
			"idm_last_fetch_unix",
			"Time of the last successful fetch (unix seconds)",
			labels, nil,
		),

		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idm_logins_total",
			Help: "Login attempts by result",
		}, []string{LabelResult}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idm_fetches_total",
			Help: "Device value fetches by result",
		}, []string{LabelResult}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idm_commands_total",
			Help: "Command dispatches by result",
		}, []string{LabelResult}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "idm_cycle_duration_seconds",
			Help:    "Time spent in one login and fetch cycle",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
