package depsafe

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics namespace/subsystem for every descriptor exposed by Collector,
// following the promauto namespace/subsystem convention used throughout
// the retrieved pack's Prometheus integrations.
const (
	metricsNamespace = "depsafe"
	metricsSubsystem = "engine"
)

var (
	descObjects = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, metricsSubsystem, "objects"),
		"Number of objects currently registered in the engine.",
		nil, nil,
	)
	descEdges = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, metricsSubsystem, "edges"),
		"Number of dependency edges currently tracked by the engine.",
		nil, nil,
	)
	descViolations = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, metricsSubsystem, "violations_total"),
		"Cumulative number of dependency violations reported by Validate.",
		nil, nil,
	)
	descSpatialFailures = prometheus.NewDesc(
		prometheus.BuildFQName(metricsNamespace, metricsSubsystem, "spatial_failures_total"),
		"Cumulative number of spatial assertion failures reported by AssertSpatial.",
		nil, nil,
	)
)

// collector is a pull-based prometheus.Collector: it reads Stats() fresh on
// every scrape rather than maintaining its own counters, since an Engine
// already tracks everything a scrape needs.
type collector struct {
	engine *Engine
}

var _ prometheus.Collector = &collector{}

// NewCollector returns a prometheus.Collector exposing engine's live object
// count, live edge count, and cumulative violation counts. Nothing in the
// core engine depends on this; it exists for depsafectl's "stats
// --prometheus" flag.
func NewCollector(engine *Engine) prometheus.Collector {
	return &collector{engine: engine}
}

// Describe implements prometheus.Collector.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descObjects
	ch <- descEdges
	ch <- descViolations
	ch <- descSpatialFailures
}

// Collect implements prometheus.Collector.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s := c.engine.Stats()
	ch <- prometheus.MustNewConstMetric(descObjects, prometheus.GaugeValue, float64(s.Objects))
	ch <- prometheus.MustNewConstMetric(descEdges, prometheus.GaugeValue, float64(s.Edges))
	ch <- prometheus.MustNewConstMetric(descViolations, prometheus.CounterValue, float64(s.Violations))
	ch <- prometheus.MustNewConstMetric(descSpatialFailures, prometheus.CounterValue, float64(s.SpatialFailures))
}
