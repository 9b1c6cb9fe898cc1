package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/simlab-dev/desmat/sim"
	"github.com/simlab-dev/desmat/simulation"
)

// RunConfig describes a single-server queue workload. Customers arrive at a
// fixed interval and each occupies the server for a fixed service time.
type RunConfig struct {
	Customers       int       `yaml:"customers"`
	ArrivalInterval sim.VTime `yaml:"arrival_interval"`
	ServiceTime     sim.VTime `yaml:"service_time"`
	Until           sim.VTime `yaml:"until"`
}

var verboseEvents bool

var runCmd = &cobra.Command{
	Use:   "run [config.yaml]",
	Short: "Run a single-server queue simulation from a config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().BoolVar(&verboseEvents, "verbose", false,
		"log each delivered event")
}

func defaultRunConfig() RunConfig {
	return RunConfig{
		Customers:       5,
		ArrivalInterval: 1,
		ServiceTime:     2,
		Until:           0,
	}
}

func loadRunConfig(path string) (RunConfig, error) {
	cfg := defaultRunConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Customers <= 0 {
		return cfg, fmt.Errorf("customers must be positive, got %d",
			cfg.Customers)
	}
	if cfg.ArrivalInterval < 0 {
		return cfg, fmt.Errorf("arrival_interval must not be negative")
	}
	if cfg.ServiceTime < 0 {
		return cfg, fmt.Errorf("service_time must not be negative")
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	configPath := ""
	if len(args) == 1 {
		configPath = args[0]
	}

	cfg, err := loadRunConfig(configPath)
	if err != nil {
		return err
	}

	builder := simulation.MakeBuilder()
	if traceOn {
		builder = builder.WithTracing()
		if traceFile != "" {
			builder = builder.WithOutputFileName(traceFile)
		}
	}
	if monitorOn {
		builder = builder.WithMonitoring()
		if monitorPort != 0 {
			builder = builder.WithMonitorPort(monitorPort)
		}
	}

	s := builder.Build()
	defer s.Terminate()

	if verboseEvents {
		s.GetScheduler().AcceptHook(
			sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	if err := startCustomers(s, cfg); err != nil {
		return err
	}

	if cfg.Until > 0 {
		err = s.Simulate(cfg.Until)
	} else {
		err = s.SimulateAll()
	}
	if err != nil {
		return err
	}

	logrus.WithField("now", s.GetScheduler().CurrentTime()).
		Info("simulation finished")
	return nil
}

// startCustomers launches one process per customer. Each customer waits for
// the previous one to leave the server before starting its own service, so
// the single server is never shared.
func startCustomers(s *simulation.Simulation, cfg RunConfig) error {
	var prev *sim.Process

	for i := 0; i < cfg.Customers; i++ {
		name := fmt.Sprintf("customer-%d", i)
		p, err := s.Start(customer,
			sim.Name(name),
			sim.Delay(sim.VTime(i)*cfg.ArrivalInterval),
			sim.Args(name, cfg.ServiceTime, prev))
		if err != nil {
			return err
		}
		prev = p
	}

	return nil
}

func customer(ctx *sim.Context, args ...any) (any, error) {
	name := args[0].(string)
	serviceTime := args[1].(sim.VTime)

	arrived := ctx.Now()

	if prev, ok := args[2].(*sim.Process); ok && prev != nil && prev.IsAlive() {
		if _, err := ctx.Wait(prev); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"customer": name,
		"waited":   ctx.Now() - arrived,
	}).Info("service started")

	if _, err := ctx.Wait(ctx.Hold(serviceTime)); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"customer": name,
		"at":       ctx.Now(),
	}).Info("service done")

	return nil, nil
}
