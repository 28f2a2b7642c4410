package main

import (
	"fmt"
	"os"
)

// version is stamped by the build: -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "signalscope:", err)
		os.Exit(1)
	}
}
