package actions

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// inputEnvPrefix is prepended by the runner to every step input name.
const inputEnvPrefix = "INPUT_"

// InputEnvName returns the variable the runner uses for input name,
// e.g. "full-version" becomes "INPUT_FULL-VERSION".
func InputEnvName(name string) string {
	return inputEnvPrefix + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// BindInputs binds each named flag of cmd to v together with its INPUT_*
// variable. An explicitly set flag wins over the variable.
func BindInputs(v *viper.Viper, cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			return fmt.Errorf("bind input %s: flag is not defined", name)
		}

		if err := v.BindPFlag(name, flag); err != nil {
			return fmt.Errorf("bind input %s: %w", name, err)
		}

		if err := v.BindEnv(name, InputEnvName(name)); err != nil {
			return fmt.Errorf("bind input %s: %w", name, err)
		}
	}

	return nil
}

// Input returns the value of a bound input with surrounding whitespace removed.
func Input(v *viper.Viper, name string) string {
	return strings.TrimSpace(v.GetString(name))
}
