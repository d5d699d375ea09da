package actions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/release-actions/internal/config"
)

// OutputFileEnv names the variable holding the step output file.
const OutputFileEnv = "GITHUB_OUTPUT"

// Runner writes workflow commands and step outputs.
type Runner struct {
	// out receives workflow commands such as ::error::.
	out io.Writer
	// outputPath is the GITHUB_OUTPUT file; outputs are dropped when empty.
	outputPath string
}

// NewRunner creates a Runner printing commands to out and appending outputs to outputPath.
func NewRunner(out io.Writer, outputPath string) *Runner {
	return &Runner{
		out:        out,
		outputPath: outputPath,
	}
}

// Fail reports err as the failure reason of the step.
func (r *Runner) Fail(err error) {
	if err == nil {
		return
	}

	_, _ = fmt.Fprintf(r.out, "::error::%s\n", escapeData(err.Error()))
}

// SetOutput publishes a step output. It is a no-op outside the runner.
func (r *Runner) SetOutput(name, value string) error {
	if r.outputPath == "" {
		return nil
	}

	line, err := formatOutput(name, value)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Clean(r.outputPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}

	if _, err = f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write output %s: %w", name, err)
	}

	return f.Close()
}

// formatOutput renders one GITHUB_OUTPUT entry, switching to the
// name<<delimiter form for multi-line values.
func formatOutput(name, value string) (string, error) {
	if !strings.ContainsAny(value, "\r\n") {
		return name + "=" + value + "\n", nil
	}

	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate output delimiter: %w", err)
	}

	delimiter := "ghadelimiter_" + hex.EncodeToString(raw)

	return name + "<<" + delimiter + "\n" + value + "\n" + delimiter + "\n", nil
}

// escapeData escapes a workflow command message.
func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}
