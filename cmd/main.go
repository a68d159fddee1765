// cmd/main.go is the application entry point.
// It defines the fitbook command tree; `fitbook serve` starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:           "fitbook",
	Short:         "Booking service for fitness classes",
	Long:          `fitbook serves a schedule of fitness classes and accepts registrations against class capacity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("env", "", "environment name (production switches to JSON logs)")
	flags.String("storage-driver", "", "storage driver: file or postgres")
	flags.String("data-dir", "", "directory for the schedule and registration files")
	flags.String("schedule-file", "", "schedule document file name")
	flags.String("registrations-file", "", "registration log file name")

	_ = v.BindPFlag("env", flags.Lookup("env"))
	_ = v.BindPFlag("storage_driver", flags.Lookup("storage-driver"))
	_ = v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = v.BindPFlag("schedule_file", flags.Lookup("schedule-file"))
	_ = v.BindPFlag("registrations_file", flags.Lookup("registrations-file"))

	rootCmd.AddCommand(serveCmd, classesCmd, registrationsCmd, migrateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
