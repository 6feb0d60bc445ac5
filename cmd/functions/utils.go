package functions

import (
	"context"
	"io"
	"strings"

	globalConfig "github.com/jvano/azure-webjobs-sdk-script/internal/config"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/config"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/discovery"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/routes"
)

// hostView is the slice of the host surface the inspection commands
// read. An initialized *host.Host satisfies it.
type hostView interface {
	Functions() []*discovery.FunctionMetadata
	FunctionErrors() map[string][]string
	Routes() *routes.Table
	Configuration() *config.HostConfiguration
}

// resolvePaths returns the script root and log root to inspect, from the
// command line when given and from the configuration file otherwise.
func resolvePaths(rootOverride string) (scriptRoot, logRoot string) {
	cfg, err := globalConfig.LoadConfig(globalConfig.ConfigPath)
	if err != nil {
		// Inspection still works against defaults when the config
		// file cannot be read.
		cfg = globalConfig.DefaultConfig()
	}

	scriptRoot = cfg.Paths.ScriptRoot
	if globalConfig.ScriptRoot != "" {
		scriptRoot = globalConfig.ScriptRoot
	}
	if rootOverride != "" {
		scriptRoot = rootOverride
	}
	return scriptRoot, cfg.Paths.LogRoot
}

// inspectHost initializes a host against the script root with console
// logging silenced, so commands can inspect discovery results the same
// way the running host sees them.
func inspectHost(ctx context.Context, scriptRoot, logRoot string) (*host.Host, error) {
	opts := host.DefaultOptions().
		WithScriptRoot(scriptRoot).
		WithLogRoot(logRoot).
		WithConsoleWriter(io.Discard)

	h := host.New(opts)
	if err := h.Initialize(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// routePath joins the configured route prefix and a function route into
// a displayable path.
func routePath(prefix, route string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return "/" + route
	}
	return "/" + prefix + "/" + route
}
