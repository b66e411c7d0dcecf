// Package collector implements the Prometheus collector interface for the IDM bridge.
package collector

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"idm_bridge/internal/types"
)

// SnapshotSource returns the last published snapshot, or nil.
type SnapshotSource interface {
	Last() *types.DeviceSnapshot
}

// SessionSource returns the current session, or nil.
type SessionSource interface {
	Current() *types.Session
}

// BridgeCollector implements prometheus.Collector over the bridge's last
// published snapshot. It never calls the vendor API itself.
type BridgeCollector struct {
	snapshots SnapshotSource
	sessions  SessionSource
	metrics   *MetricSet
}

// NewBridgeCollector creates a new collector.
func NewBridgeCollector(snapshots SnapshotSource, sessions SessionSource) *BridgeCollector {
	return &BridgeCollector{
		snapshots: snapshots,
		sessions:  sessions,
		metrics:   newMetricSet(),
	}
}

// ObserveLogin counts a login attempt.
func (c *BridgeCollector) ObserveLogin(err error) {
	c.metrics.logins.WithLabelValues(result(err)).Inc()
}

// ObserveFetch counts a device fetch.
func (c *BridgeCollector) ObserveFetch(err error) {
	c.metrics.fetches.WithLabelValues(result(err)).Inc()
}

// ObserveCommand counts a command dispatch with one of the Result* values.
func (c *BridgeCollector) ObserveCommand(res string) {
	c.metrics.commands.WithLabelValues(res).Inc()
}

// ObserveCycle records the duration of a login/fetch cycle.
func (c *BridgeCollector) ObserveCycle(d time.Duration) {
	c.metrics.cycleDuration.Observe(d.Seconds())
}

// Describe implements prometheus.Collector.
func (c *BridgeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.metrics.hygienicTemp
	ch <- c.metrics.waterTemp
	ch <- c.metrics.outsideTemp
	ch <- c.metrics.heatTemp
	ch <- c.metrics.normalSetpoint
	ch <- c.metrics.ecoSetpoint
	ch <- c.metrics.forerunTemp
	ch <- c.metrics.forerunActualTemp
	ch <- c.metrics.sumHeat

	ch <- c.metrics.systemMode
	ch <- c.metrics.systemState
	ch <- c.metrics.circuitMode
	ch <- c.metrics.circuitState

	ch <- c.metrics.sessionActive
	ch <- c.metrics.errorFlag
	ch <- c.metrics.lastFetchUnix

	c.metrics.logins.Describe(ch)
	c.metrics.fetches.Describe(ch)
	c.metrics.commands.Describe(ch)
	c.metrics.cycleDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *BridgeCollector) Collect(ch chan<- prometheus.Metric) {
	c.metrics.logins.Collect(ch)
	c.metrics.fetches.Collect(ch)
	c.metrics.commands.Collect(ch)
	c.metrics.cycleDuration.Collect(ch)

	session := c.sessions.Current()
	active := 0.0
	if session != nil {
		active = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.metrics.sessionActive, prometheus.GaugeValue, active)

	snap := c.snapshots.Last()
	if snap == nil || session == nil {
		return
	}

	labels := []string{session.InstallationID, session.InstallationName}

	c.emitTemperatureMetrics(ch, labels, snap)
	c.emitModeMetrics(ch, labels, snap)

	errValue := 0.0
	if snap.Error {
		errValue = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.metrics.errorFlag, prometheus.GaugeValue, errValue, labels...)
	ch <- prometheus.MustNewConstMetric(c.metrics.lastFetchUnix, prometheus.GaugeValue, float64(snap.FetchedAt.Unix()), labels...)
}

// emitTemperatureMetrics emits all numeric readings. NaN readings are skipped.
func (c *BridgeCollector) emitTemperatureMetrics(ch chan<- prometheus.Metric, labels []string, snap *types.DeviceSnapshot) {
	values := map[*prometheus.Desc]float64{
		c.metrics.hygienicTemp:      snap.TempHygienic,
		c.metrics.waterTemp:         snap.TempWater,
		c.metrics.outsideTemp:       snap.TempOutside,
		c.metrics.heatTemp:          snap.CircuitTempHeat,
		c.metrics.normalSetpoint:    snap.CircuitTempNormal,
		c.metrics.ecoSetpoint:       snap.CircuitTempEco,
		c.metrics.forerunTemp:       snap.CircuitTempForerun,
		c.metrics.forerunActualTemp: snap.CircuitTempForerunActual,
		c.metrics.sumHeat:           snap.SumHeat,
	}

	for desc, value := range values {
		if math.IsNaN(value) {
			continue
		}
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value, labels...)
	}
}

// emitModeMetrics emits the current modes and states as one-hot series.
func (c *BridgeCollector) emitModeMetrics(ch chan<- prometheus.Metric, labels []string, snap *types.DeviceSnapshot) {
	withLabel := func(v string) []string {
		return append(append([]string{}, labels...), v)
	}

	ch <- prometheus.MustNewConstMetric(c.metrics.systemMode, prometheus.GaugeValue, 1, withLabel(snap.SystemMode)...)
	ch <- prometheus.MustNewConstMetric(c.metrics.systemState, prometheus.GaugeValue, 1, withLabel(snap.SystemState)...)
	ch <- prometheus.MustNewConstMetric(c.metrics.circuitMode, prometheus.GaugeValue, 1, withLabel(snap.CircuitMode)...)
	ch <- prometheus.MustNewConstMetric(c.metrics.circuitState, prometheus.GaugeValue, 1, withLabel(snap.CircuitState)...)
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
