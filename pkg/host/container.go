package host

import (
	"go.uber.org/dig"

	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/config"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/metrics"
)

// BuildContainer builds the dependency injection container with the
// host components, for embedders that assemble the host without the
// CLI's fx application.
func BuildContainer(opts *Options) (*dig.Container, error) {
	container := dig.New()

	// Register options
	if err := container.Provide(func() *Options {
		if opts == nil {
			return DefaultOptions()
		}
		return opts
	}); err != nil {
		return nil, err
	}

	// Register environment
	if err := container.Provide(func(o *Options) config.Environment {
		return o.Environment
	}); err != nil {
		return nil, err
	}

	// Register metrics recorder
	if err := container.Provide(func(o *Options) metrics.Recorder {
		if o.Metrics == nil {
			o.Metrics = metrics.NewInMemoryRecorder()
		}
		return o.Metrics
	}); err != nil {
		return nil, err
	}

	// Register a single-generation host
	if err := container.Provide(func(o *Options, _ metrics.Recorder) *Host {
		return New(o)
	}); err != nil {
		return nil, err
	}

	// Register the reload-loop manager
	if err := container.Provide(func(o *Options, _ metrics.Recorder) *Manager {
		return NewManager(o)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// GetHost retrieves the Host from the container.
func GetHost(container *dig.Container) (*Host, error) {
	var h *Host
	if err := container.Invoke(func(host *Host) {
		h = host
	}); err != nil {
		return nil, err
	}
	return h, nil
}

// GetManager retrieves the Manager from the container.
func GetManager(container *dig.Container) (*Manager, error) {
	var m *Manager
	if err := container.Invoke(func(manager *Manager) {
		m = manager
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// GetRecorder retrieves the metrics Recorder from the container.
func GetRecorder(container *dig.Container) (metrics.Recorder, error) {
	var r metrics.Recorder
	if err := container.Invoke(func(recorder metrics.Recorder) {
		r = recorder
	}); err != nil {
		return nil, err
	}
	return r, nil
}
