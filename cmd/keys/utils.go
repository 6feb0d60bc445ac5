package keys

import (
	"fmt"
	"os"
	"path/filepath"

	globalConfig "github.com/jvano/azure-webjobs-sdk-script/internal/config"
	"github.com/jvano/azure-webjobs-sdk-script/internal/repository"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/secrets"
)

// openStore opens the secret store over the configured secrets
// directory. The returned closer releases the backing database.
func openStore() (*secrets.Store, func() error, error) {
	cfg, err := globalConfig.LoadConfig(globalConfig.ConfigPath)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.Paths.SecretsDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}

	db, err := repository.Open(filepath.Join(cfg.Paths.SecretsDir, secrets.DatabaseFileName))
	if err != nil {
		return nil, nil, err
	}

	return secrets.NewStore(db), db.Close, nil
}
