package main

import (
	"os"

	"github.com/cedric-bidet/n8n-webhook-watcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
