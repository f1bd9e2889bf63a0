package main

import (
	"flag"
	"fmt"
	"os"

	"hit-counter/internal/app"
)

func main() {
	envFile := flag.String("env-file", "", "optional dotenv file loaded before reading the environment (default .env)")
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}

	if err := app.Run(envFiles...); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}
