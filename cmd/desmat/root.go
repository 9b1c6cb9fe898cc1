package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/simlab-dev/desmat/examples"
)

var (
	logLevel    string
	traceOn     bool
	traceFile   string
	monitorOn   bool
	monitorPort int
)

var rootCmd = &cobra.Command{
	Use:   "desmat",
	Short: "Discrete-event simulation toolkit",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file can override the defaults, the same flags win.
		_ = godotenv.Load()

		if logLevel == "" {
			logLevel = os.Getenv("DESMAT_LOG_LEVEL")
		}
		if logLevel == "" {
			logLevel = "info"
		}

		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

var examplesCmd = &cobra.Command{
	Use:   "examples [name]",
	Short: "Run the bundled example simulations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toRun := examples.All
		if len(args) == 1 {
			ex, ok := examples.ByName(args[0])
			if !ok {
				return fmt.Errorf("unknown example %q", args[0])
			}
			toRun = []examples.Example{ex}
		}

		for _, ex := range toRun {
			fmt.Printf("== %s: %s\n", ex.Name, ex.Description)
			if err := ex.Run(os.Stdout); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log verbosity (debug, info, warn, error)")

	runCmd.Flags().BoolVar(&traceOn, "trace", false,
		"record the event trace into a SQLite database")
	runCmd.Flags().StringVar(&traceFile, "trace-file", "",
		"path of the trace database, without extension")
	runCmd.Flags().BoolVar(&monitorOn, "monitor", false,
		"serve the simulation state over HTTP")
	runCmd.Flags().IntVar(&monitorPort, "monitor-port", 0,
		"port for the monitoring server")

	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(runCmd)
}
