package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-demos/engine"
	"github.com/Carmen-Shannon/oxy-demos/engine/config"
	"github.com/Carmen-Shannon/oxy-demos/engine/window"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type runFlags struct {
	configPath string
	headless   bool
	frames     int
	watch      bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &runFlags{}

	root := &cobra.Command{
		Use:          "oxy-demos",
		Short:        "Run the local-interaction demos",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "TOML configuration file")
	pf.BoolVar(&flags.headless, "headless", false, "run without a window on the headless renderer")
	pf.IntVar(&flags.frames, "frames", 0, "stop a headless run after this many frames (0 runs until interrupted)")
	pf.BoolVar(&flags.watch, "watch", false, "reset the demo whenever the config file changes")

	for _, demo := range engine.Demos {
		root.AddCommand(newDemoCommand(demo, flags, stderr))
	}
	root.AddCommand(newConfigCommand(flags))
	return root
}

func newDemoCommand(demo engine.Demo, flags *runFlags, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   string(demo),
		Short: fmt.Sprintf("Run the %s demo", demo),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, demo, flags, stderr)
		},
	}
}

func newConfigCommand(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			enc := toml.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(cfg)
		},
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runDemo(cmd *cobra.Command, demo engine.Demo, flags *runFlags, stderr io.Writer) error {
	if flags.watch && flags.configPath == "" {
		return fmt.Errorf("--watch needs --config")
	}
	if flags.frames < 0 {
		return fmt.Errorf("--frames %d is negative", flags.frames)
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	level, err := config.ParseLogLevel(cfg.Scheduler.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	options := []engine.EngineBuilderOption{
		engine.WithConfig(cfg),
		engine.WithLogger(logger),
	}
	if flags.watch {
		options = append(options, engine.WithConfigWatch(flags.configPath))
	}
	var w window.Window
	if flags.headless {
		options = append(options, engine.WithFrameLimit(flags.frames))
	} else {
		w, err = window.NewWindow(
			window.WithTitle(fmt.Sprintf("%s - %s", cfg.Window.Title, demo)),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
			window.WithResizable(cfg.Window.Resizable),
		)
		if err != nil {
			return fmt.Errorf("failed to open window: %w", err)
		}
		options = append(options, engine.WithWindow(w))
	}

	eng, err := engine.NewEngine(demo, options...)
	if err != nil {
		if w != nil {
			w.Close()
		}
		return err
	}
	if err := eng.Run(cmd.Context()); err != nil {
		return err
	}

	s := eng.Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: population=%d frames=%d ticks=%d faults=%d state=%s\n",
		s.Demo, s.Population, s.Frames, s.Ticks, s.Faults, s.State)
	return nil
}
