package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oshokin/release-actions/internal/actions"
	"github.com/oshokin/release-actions/internal/logger"
	"github.com/oshokin/release-actions/internal/service/updater"
	"github.com/oshokin/release-actions/internal/version"
)

const (
	inputFullVersion      = "full-version"
	inputManifestFilePath = "manifest-file-path"
	inputUpdatedAtTime    = "updated-at-time"
	inputReleaseGitHubURL = "release-github-url"
	inputReleaseBoothURL  = "release-booth-url"
)

var (
	// configPath to the optional environment YAML file.
	configPath string

	// inputs resolves flags, INPUT_* and runner variables.
	//nolint:gochecknoglobals // Shared between init and the command.
	inputs = viper.New()

	// rootCmd represents the base command for updating the release manifest.
	rootCmd = &cobra.Command{
		Use:   "manifest-updater",
		Short: "Record a release in the branch manifest.",
		Long: `Insert or update the branch entry of a JSON release manifest.

The full version ("1.2.3-beta") is split at its first hyphen: "beta" is the branch to update.
The branch keeps its position when it exists and is appended otherwise; the manifest is
written back with four-space indentation.

When updated-at-time is empty the current UTC time is used. When release-github-url is empty
it defaults to https://github.com/$GITHUB_REPOSITORY/releases/tag/<full-version>.
The step outputs "branch", "short-version" and "created" describe the written entry.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				FullVersion:      actions.Input(inputs, inputFullVersion),
				ManifestFilePath: actions.Input(inputs, inputManifestFilePath),
				UpdatedAt:        actions.Input(inputs, inputUpdatedAtTime),
				ReleaseGitHubURL: actions.Input(inputs, inputReleaseGitHubURL),
				ReleaseBoothURL:  actions.Input(inputs, inputReleaseBoothURL),
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

			result, err := updater.Run(ctx, options)
			if err != nil {
				return err
			}

			return publish(ctx, result)
		},
	}
)

// Execute runs the manifest-updater CLI, reports failures to the runner
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

// publish exposes the written entry as step outputs.
func publish(ctx context.Context, result *updater.Result) error {
	r := runner()

	outputs := [][2]string{
		{"branch", result.Branch.Name},
		{"short-version", result.Version.Short},
		{"created", strconv.FormatBool(result.Created)},
	}

	for _, output := range outputs {
		if err := r.SetOutput(output[0], output[1]); err != nil {
			return err
		}
	}

	logger.DebugKV(ctx, "Step outputs published", "count", len(outputs))

	return nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to an optional environment YAML file")
	flags.String(inputFullVersion, "", "released version with branch suffix, e.g. 1.2.3-beta")
	flags.String(inputManifestFilePath, "", "path to the release manifest JSON file")
	flags.String(inputUpdatedAtTime, "", "ISO-8601 release time (default: now)")
	flags.String(inputReleaseGitHubURL, "", "GitHub release page (default: derived from the repository and version)")
	flags.String(inputReleaseBoothURL, "", "BOOTH item page of the release")

	err := actions.BindInputs(inputs, rootCmd,
		inputFullVersion,
		inputManifestFilePath,
		inputUpdatedAtTime,
		inputReleaseGitHubURL,
		inputReleaseBoothURL,
	)
	if err != nil {
		panic(err)
	}

	if err = actions.BindRunner(inputs); err != nil {
		panic(err)
	}
}
