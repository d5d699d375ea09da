package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oshokin/release-actions/internal/actions"
	"github.com/oshokin/release-actions/internal/service/checker"
	"github.com/oshokin/release-actions/internal/version"
)

const (
	inputVersionTextFilePath = "version-text-file-path"
	inputPackageJSONFilePath = "package-json-file-path"
)

var (
	// configPath to the optional environment YAML file.
	configPath string

	// inputs resolves flags, INPUT_* and runner variables.
	//nolint:gochecknoglobals // Shared between init and the command.
	inputs = viper.New()

	// rootCmd represents the base command for the version consistency check.
	rootCmd = &cobra.Command{
		Use:   "version-checker",
		Short: "Check that a version text file matches package.json.",
		Long: `Compare the contents of a plain-text version file with the "version" field of a package JSON file.

Both paths are resolved against the workspace ($GITHUB_WORKSPACE or the working directory).
The text file is compared verbatim, so a trailing newline counts as a difference.
On success the matching version is published as the "version" step output.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &checker.Options{
				VersionTextFilePath: actions.Input(inputs, inputVersionTextFilePath),
				PackageJSONFilePath: actions.Input(inputs, inputPackageJSONFilePath),
			}

			// Inputs are checked before the settings file is read.
			if err := options.Validate(); err != nil {
				return err
			}

			env, err := actions.LoadEnvironment(configPath, inputs)
			if err != nil {
				return err
			}

			options.Environment = env

			result, err := checker.Run(ctx, options)
			if err != nil {
				return err
			}

			return runner().SetOutput("version", result.Version)
		},
	}
)

// Execute runs the version-checker CLI, reports failures to the runner
// and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		runner().Fail(err)
		os.Exit(1)
	}
}

func runner() *actions.Runner {
	return actions.NewRunner(os.Stdout, actions.OutputFile(inputs))
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to an optional environment YAML file")
	rootCmd.Flags().String(inputVersionTextFilePath, "", "path to the plain-text version file (env INPUT_VERSION-TEXT-FILE-PATH)")
	rootCmd.Flags().String(inputPackageJSONFilePath, "", "path to the package JSON file (env INPUT_PACKAGE-JSON-FILE-PATH)")

	if err := actions.BindInputs(inputs, rootCmd, inputVersionTextFilePath, inputPackageJSONFilePath); err != nil {
		panic(err)
	}

	if err := actions.BindRunner(inputs); err != nil {
		panic(err)
	}
}
