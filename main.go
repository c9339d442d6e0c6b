package main

import "github.com/shoplytics/mart-engine/cmd"

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	cmd.Version = Version
	cmd.Execute()
}
