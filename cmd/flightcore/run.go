package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/control"
	"github.com/openavionics/flightcore/daq"
	"github.com/openavionics/flightcore/machine"
	"github.com/openavionics/flightcore/monitoring"
	"github.com/openavionics/flightcore/recording"
	"github.com/openavionics/flightcore/timing"
)

type runOptions struct {
	rate        uint32
	duration    float32
	simPath     string
	recordPath  string
	monitorPort int
	quiet       bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <plan-or-config>",
		Short: "Bench-run a plan against a scripted data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, args[0], opts)
		},
	}

	cmd.Flags().Uint32Var(&opts.rate, "rate", 1000, "ticks per second")
	cmd.Flags().Float32Var(&opts.duration, "for", 30, "seconds of flight to simulate")
	cmd.Flags().StringVar(&opts.simPath, "sim", "", "scripted data source profile (YAML)")
	cmd.Flags().StringVar(&opts.recordPath, "record", "", "record transitions and commands to this SQLite file")
	cmd.Flags().IntVar(&opts.monitorPort, "monitor", 0, "serve the monitoring API on this port (0 disables)")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "suppress per-event logging")

	return cmd
}

func runBench(cmd *cobra.Command, path string, opts *runOptions) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	if opts.rate == 0 {
		return fmt.Errorf("rate must be positive")
	}

	graph, err := machine.Build(cfg, machine.NewFlightArena())
	if err != nil {
		return err
	}

	clock := timing.NewTickClock(timing.TickRate(opts.rate))

	source := daq.NewSimSource(clock)
	if opts.simPath != "" {
		if err := scriptFromProfile(source, opts.simPath); err != nil {
			return err
		}
	}

	m := machine.New(graph.Default, clock, control.NewLogged(log.Default()), source)

	if !opts.quiet {
		m.AcceptHook(machine.NewTransitionLogger(log.New(os.Stderr, "", 0)))
	}

	if opts.recordPath != "" {
		recorder, err := recording.New(opts.recordPath)
		if err != nil {
			return err
		}

		m.AcceptHook(recorder)
		defer recorder.Flush()

		fmt.Fprintf(cmd.ErrOrStderr(), "Recording flight %s to %s\n",
			recorder.FlightID(), opts.recordPath)
	}

	if opts.monitorPort != 0 {
		tracker := monitoring.NewTracker(m)
		m.AcceptHook(tracker)
		monitoring.NewMonitor(graph, tracker, clock).
			WithPortNumber(opts.monitorPort).
			StartServer()
	}

	total := timing.TickRate(opts.rate).TicksIn(timing.NewSeconds(opts.duration))
	for i := uint64(0); i < total; i++ {
		clock.Tick()
		m.Execute()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "final: state %d after %s, %s in state\n",
		m.Current().ID, clock.CurrentTime(), m.TimeInState())

	return nil
}

// A simProfile scripts how each observable condition evolves over the bench
// run. Every entry flips from initial to eventual at a fixed time; a missing
// eventual value keeps the initial one for the whole run.
type simProfile struct {
	Altitude        *floatFlip `yaml:"altitude"`
	Apogee          *boolFlip  `yaml:"apogee"`
	Pyro1Continuity *boolFlip  `yaml:"pyro1_continuity"`
	Pyro2Continuity *boolFlip  `yaml:"pyro2_continuity"`
	Pyro3Continuity *boolFlip  `yaml:"pyro3_continuity"`
}

type floatFlip struct {
	Initial  float32  `yaml:"initial"`
	Eventual *float32 `yaml:"eventual"`
	At       float32  `yaml:"at"`
}

type boolFlip struct {
	Initial  bool    `yaml:"initial"`
	Eventual *bool   `yaml:"eventual"`
	At       float32 `yaml:"at"`
}

func scriptFromProfile(source *daq.SimSource, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var profile simProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("parse sim profile %s: %w", path, err)
	}

	if f := profile.Altitude; f != nil {
		eventual := f.Initial
		if f.Eventual != nil {
			eventual = *f.Eventual
		}

		source.Script(config.CheckAltitude, daq.SimValue{
			Initial:  config.F32Value(f.Initial),
			Eventual: config.F32Value(eventual),
			At:       timing.NewSeconds(f.At),
		})
	}

	flags := []struct {
		kind config.CheckKind
		flip *boolFlip
	}{
		{config.CheckApogee, profile.Apogee},
		{config.CheckPyro1Continuity, profile.Pyro1Continuity},
		{config.CheckPyro2Continuity, profile.Pyro2Continuity},
		{config.CheckPyro3Continuity, profile.Pyro3Continuity},
	}

	for _, f := range flags {
		if f.flip == nil {
			continue
		}

		eventual := f.flip.Initial
		if f.flip.Eventual != nil {
			eventual = *f.flip.Eventual
		}

		source.Script(f.kind, daq.SimValue{
			Initial:  config.BoolValue(f.flip.Initial),
			Eventual: config.BoolValue(eventual),
			At:       timing.NewSeconds(f.flip.At),
		})
	}

	return nil
}
