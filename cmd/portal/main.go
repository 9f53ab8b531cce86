package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/go-job-portal/internal/config"
	"github.com/jrsteele09/go-job-portal/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	c := config.New()
	logging.Setup(logging.Options{Env: c.GetEnv(), Level: c.GetLogLevel(), File: c.GetLogFile()})

	rootCmd := &cobra.Command{
		Use:           "portal",
		Short:         "Job portal edge gateway and session client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(c),
		loginCmd(c),
		signupCmd(c),
		logoutCmd(c),
		whoamiCmd(c),
		refreshCmd(c),
		watchCmd(c),
		getCmd(c),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
