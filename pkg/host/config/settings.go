package config

import (
	"os"
	"strings"
)

// Environment variable names DetectEnvironment reads.
const (
	SkuEnvName                = "FUNCHOST_SKU"
	InstrumentationKeyEnvName = "FUNCHOST_INSTRUMENTATION_KEY"

	// DynamicSkuValue marks the constrained consumption tier.
	DynamicSkuValue = "dynamic"
)

// Environment carries the deployment-environment inputs configuration
// resolution depends on. Callers pass it explicitly, so resolution
// never consults ambient process state and resolver instances stay
// independent of each other.
type Environment struct {
	// DynamicSku marks the constrained consumption tier. On that tier
	// the function timeout gets a default and enforced bounds.
	DynamicSku bool

	// InstrumentationKey enables the remote telemetry log provider
	// when non-empty.
	InstrumentationKey string
}

// DetectEnvironment builds an Environment from the process
// environment.
func DetectEnvironment() Environment {
	return Environment{
		DynamicSku:         strings.EqualFold(os.Getenv(SkuEnvName), DynamicSkuValue),
		InstrumentationKey: os.Getenv(InstrumentationKeyEnvName),
	}
}
