package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Environment holds the ambient values supplied by the hosting runner.
type Environment struct {
	// Workspace is the directory relative input paths are resolved against.
	Workspace string `yaml:"workspace"`
	// Repository is the owner/name identifier used to build release URLs.
	Repository string `yaml:"repository"`
	// LogLevel is the minimum level written by the action logger.
	LogLevel string `yaml:"log_level"`
}

const (
	// WorkspaceEnv names the runner variable holding the checkout directory.
	WorkspaceEnv = "GITHUB_WORKSPACE"
	// RepositoryEnv names the runner variable holding the owner/name pair.
	RepositoryEnv = "GITHUB_REPOSITORY"
	// LogLevelEnv overrides the log level of both actions.
	LogLevelEnv = "RELEASE_ACTIONS_LOG_LEVEL"
	// RunnerDebugEnv is set to "1" by the runner when step debug logging is on.
	RunnerDebugEnv = "RUNNER_DEBUG"

	// DefaultFilePermissions is the file mode used for files the actions write.
	DefaultFilePermissions = 0o644

	keyWorkspace   = "workspace"
	keyRepository  = "repository"
	keyLogLevel    = "log_level"
	keyRunnerDebug = "runner_debug"
)

// errEnvironmentIsNotSet is returned when a nil environment is provided.
var errEnvironmentIsNotSet = errors.New("environment is not set")

// BindEnvironment registers the runner variables on v.
func BindEnvironment(v *viper.Viper) error {
	bindings := map[string]string{
		keyWorkspace:   WorkspaceEnv,
		keyRepository:  RepositoryEnv,
		keyLogLevel:    LogLevelEnv,
		keyRunnerDebug: RunnerDebugEnv,
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	return nil
}

// Load builds the Environment from an optional YAML file and the variables
// bound on v. Runner variables take precedence over the file.
func Load(path string, v *viper.Viper) (*Environment, error) {
	env := new(Environment)

	if path != "" {
		contents, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}

		if err = yaml.Unmarshal(contents, env); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	}

	if v != nil {
		applyOverrides(env, v)
	}

	if err := Validate(env); err != nil {
		return nil, err
	}

	return env, nil
}

// Validate fills defaults of the provided environment.
// Repository and log level are checked by their consumers, so a malformed
// value never fails an action that does not use it.
func Validate(env *Environment) error {
	if env == nil {
		return errEnvironmentIsNotSet
	}

	if env.Workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}

		env.Workspace = wd
	}

	return nil
}

// HasRepository reports whether Repository looks like an owner/name pair.
func (e *Environment) HasRepository() bool {
	owner, name, found := strings.Cut(e.Repository, "/")

	return found && owner != "" && name != "" &&
		!strings.ContainsAny(e.Repository, " \t") && !strings.Contains(name, "/")
}

// Resolve joins a relative path onto the workspace. Absolute paths are kept.
func (e *Environment) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(e.Workspace, path)
}

func applyOverrides(env *Environment, v *viper.Viper) {
	if s := v.GetString(keyWorkspace); s != "" {
		env.Workspace = s
	}

	if s := v.GetString(keyRepository); s != "" {
		env.Repository = s
	}

	if s := v.GetString(keyLogLevel); s != "" {
		env.LogLevel = s
	}

	if v.GetString(keyRunnerDebug) == "1" {
		env.LogLevel = "debug"
	}
}
