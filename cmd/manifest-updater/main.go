package main

import "github.com/oshokin/release-actions/cmd/manifest-updater/cmd"

func main() {
	cmd.Execute()
}
