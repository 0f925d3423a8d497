package main

import (
	"os"

	"github.com/aklujeats/aklujeats/internal/cli"
)

// @title           AklujEats API
// @version         v1
// @description     API for AklujEats food delivery platform
// @BasePath        /
// @schemes         https

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
