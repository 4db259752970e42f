// Package prometheus exports the service's internal counters as Prometheus
// metrics. Register the Collector with a prometheus.Registerer and serve the
// registry with promhttp.
package prometheus
