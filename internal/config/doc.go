// Package config resolves the ambient environment both actions run in:
// the workspace directory, the repository identifier and the log level.
//
// Values come from an optional YAML file and the runner's environment
// variables, bound through viper so tests can inject them explicitly.
package config
