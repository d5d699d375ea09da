package main

import "github.com/oshokin/release-actions/cmd/version-checker/cmd"

func main() {
	cmd.Execute()
}
