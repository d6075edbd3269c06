package app

import (
	"context"

	"github.com/oshokin/tube-grabber/internal/config"
	"github.com/oshokin/tube-grabber/internal/logger"
)

// ExecuteConfigInitCommand writes a configuration file with every default value.
func ExecuteConfigInitCommand(ctx context.Context, configFilename string, overwrite bool) error {
	if err := config.WriteDefaultConfig(configFilename, overwrite); err != nil {
		return err
	}

	logger.Infof(ctx, "Configuration written to %s", configFilename)

	return nil
}

// ExecuteConfigSetCommand updates one key of the configuration file, keeping the rest intact.
func ExecuteConfigSetCommand(ctx context.Context, configFilename, key, value string) error {
	if err := config.SetConfigValue(configFilename, key, value); err != nil {
		return err
	}

	// The value stays saved even when it breaks validation; the error tells the user to fix it.
	cfg, err := config.LoadConfig(configFilename)
	if err != nil {
		return err
	}

	if err = config.ValidateConfig(cfg); err != nil {
		logger.Warnf(ctx, "Configuration saved, but it is invalid now: %v", err)

		return err
	}

	logger.Infof(ctx, "Set %s in %s", key, configFilename)

	return nil
}
