package actions

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/oshokin/release-actions/internal/config"
	"github.com/oshokin/release-actions/internal/logger"
)

// outputFileKey is the viper key bound to OutputFileEnv.
const outputFileKey = "github_output"

// BindRunner registers the runner variables both binaries read.
func BindRunner(v *viper.Viper) error {
	if err := config.BindEnvironment(v); err != nil {
		return err
	}

	if err := v.BindEnv(outputFileKey, OutputFileEnv); err != nil {
		return fmt.Errorf("bind %s: %w", OutputFileEnv, err)
	}

	return nil
}

// OutputFile returns the GITHUB_OUTPUT path bound on v.
func OutputFile(v *viper.Viper) string {
	return v.GetString(outputFileKey)
}

// LoadEnvironment resolves the environment and applies its log level.
func LoadEnvironment(configPath string, v *viper.Viper) (*config.Environment, error) {
	env, err := config.Load(configPath, v)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	level, ok := logger.ParseLogLevel(env.LogLevel)
	logger.SetLevel(level)

	if !ok {
		logger.WarnKV(context.Background(), "Unknown log level, using info", "log_level", env.LogLevel)
	}

	return env, nil
}
