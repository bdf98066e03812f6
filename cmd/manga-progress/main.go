package main

import (
	"os"
)

// main is the entry point of the application
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
