// Package integration holds end-to-end tests that wire the runner
// environment, the services and real files together.
package integration
