package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"policytrack/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
