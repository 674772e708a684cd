package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry manages Prometheus metric registration
type Registry struct {
	registry    *prometheus.Registry
	sntpMetrics *SNTPMetrics
}

// NewRegistry creates a new metrics registry with the default "sntp" namespace
func NewRegistry() *Registry {
	return NewRegistryWithConfig("sntp")
}

// NewRegistryWithConfig creates a new metrics registry with a custom namespace
func NewRegistryWithConfig(namespace string) *Registry {
	return &Registry{
		registry:    prometheus.NewRegistry(),
		sntpMetrics: NewSNTPMetricsWithConfig(namespace),
	}
}

// Register registers the query metrics. No Go runtime collectors: the
// textfile ends up inside a node_exporter that has its own.
func (r *Registry) Register() error {
	return r.registry.Register(r.sntpMetrics)
}

// GetRegistry returns the underlying Prometheus registry
func (r *Registry) GetRegistry() *prometheus.Registry {
	return r.registry
}

// GetMetrics returns the SNTP metrics instance
func (r *Registry) GetMetrics() *SNTPMetrics {
	return r.sntpMetrics
}

// MustRegister registers all metrics and panics on error
func (r *Registry) MustRegister() {
	if err := r.Register(); err != nil {
		panic(err)
	}
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, replacing the file atomically
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
