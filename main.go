package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/lehigh-university-libraries/imgtranslate/cmd"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// SIGTERM lets `serve` shut down gracefully under a container runtime
	err := fang.Execute(
		context.Background(),
		cmd.NewRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		os.Exit(1)
	}
}
