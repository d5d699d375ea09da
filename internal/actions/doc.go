// Package actions is the boundary between the action binaries and the
// hosting workflow runner.
//
// It reads step inputs (flags with INPUT_* environment fallbacks), turns an
// error into the runner's failure annotation and publishes step outputs
// through the GITHUB_OUTPUT file.
package actions
