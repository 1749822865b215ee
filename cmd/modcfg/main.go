// Package main is the entry point for modcfg, a maintenance tool for mod
// configuration files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/modernconfig/internal/app"
	"github.com/dshills/modernconfig/internal/config/registry"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	dir      string
	settings string
	logLevel string
	schema   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "modcfg",
		Short: "Inspect and edit mod configuration files",
		Long: `modcfg loads a mod's configuration schema from a Lua script, reads the
saved values from the config directory and lets you inspect, change,
reset, export or watch them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.dir, "dir", "", "Config directory (overrides settings)")
	pf.StringVar(&g.settings, "settings", "", "Library settings file (default modernconfig.toml)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&g.schema, "schema", "", "Lua schema script declaring the mod")

	root.AddCommand(
		showCmd(g),
		getCmd(g),
		setCmd(g),
		resetCmd(g),
		exportCmd(g),
		searchCmd(g),
		watchCmd(g),
		settingsCmd(g),
		versionCmd(),
	)
	return root
}

// newApp creates the application from the global flags.
func (g *globalFlags) newApp(cmd *cobra.Command, watch bool) (*app.Application, error) {
	return app.New(app.Options{
		ConfigDir:    g.dir,
		SettingsPath: g.settings,
		Watch:        watch,
		LogLevel:     g.logLevel,
		LogOutput:    cmd.ErrOrStderr(),
	})
}

// open creates the application and registers the schema.
func (g *globalFlags) open(cmd *cobra.Command, watch bool) (*app.Application, *registry.Config, error) {
	if g.schema == "" {
		return nil, nil, fmt.Errorf("--schema is required")
	}
	a, err := g.newApp(cmd, watch)
	if err != nil {
		return nil, nil, err
	}
	c, err := a.RegisterSchema(g.schema)
	if err != nil {
		_ = a.Shutdown()
		return nil, nil, err
	}
	return a, c, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "modcfg %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
