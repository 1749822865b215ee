package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/modernconfig/internal/config"
	"github.com/dshills/modernconfig/internal/config/codec"
	"github.com/dshills/modernconfig/internal/config/notify"
	"github.com/dshills/modernconfig/internal/config/registry"
	"github.com/dshills/modernconfig/internal/config/tree"
)

func showCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configuration tree with current values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, err := g.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			info := c.Info()
			printf(out, "%s (%s)\n", info.Name, c.ModID())
			if info.Description != "" && info.Description != info.Name {
				printf(out, "  %s\n", info.Description)
			}
			printf(out, "  file: %s\n", c.Path())

			return c.Root().Walk(func(path []string, n tree.Node) error {
				indent := strings.Repeat("  ", len(path))
				if n.IsCategory() {
					printf(out, "%s[%s] %s\n", indent, path[len(path)-1], n.Category.Title())
					return nil
				}
				opt := n.Option
				marker := ""
				if !opt.IsDefault() {
					marker = " *"
				}
				printf(out, "%s%s = %s (%s)%s\n", indent, opt.ID(), tree.Format(opt), opt.Kind(), marker)
				return nil
			})
		},
	}
}

func getCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value of one option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, err := g.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			opt, err := c.Lookup(args[0])
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", tree.Format(opt))
			return nil
		},
	}
}

func setCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Change one option and save the file",
		Long: `Change one option and save the file. The value is parsed for the
option's kind: true/false for toggles, a number for sliders, #RRGGBB for
colors, a comma separated list for lists and namespace:path for items.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, err := g.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			if err := c.SetString(args[0], args[1]); err != nil {
				return err
			}
			opt, err := c.Lookup(args[0])
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s.%s = %s\n", c.ModID(), args[0], tree.Format(opt))
			return nil
		},
	}
}

func resetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [path]",
		Short: "Restore defaults for an option, a category or the whole mod",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, err := g.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			if len(args) == 0 {
				if err := c.ResetAll(); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "reset %s\n", c.ModID())
				return nil
			}
			if err := c.Reset(registry.SplitPath(args[0])...); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "reset %s.%s\n", c.ModID(), args[0])
			return nil
		},
	}
}

func exportCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current values in json, yaml or toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, err := g.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			var data []byte
			switch strings.ToLower(format) {
			case "json":
				data, err = codec.Encoder{Indent: a.Settings().Indent}.Encode(c.Root())
			case "yaml", "yml":
				data, err = codec.EncodeYAML(c.Root())
			case "toml":
				data, err = codec.EncodeTOML(c.Root())
			default:
				return fmt.Errorf("unknown format %q (must be json, yaml or toml)", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml, toml)")
	return cmd
}

func searchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find options by id, label or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.open(cmd, false)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			results := a.Registry().Search(args[0])
			if len(results) == 0 {
				printf(out, "no options match %q\n", args[0])
				return nil
			}
			for _, r := range results {
				printf(out, "%s.%s\t%s\t%s\n", r.ModID, strings.Join(r.Path, "."),
					r.Option.Label(), tree.Format(r.Option))
			}
			return nil
		},
	}
}

func watchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the mod file on external edits until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, c, err := g.open(cmd, true)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			sub := a.Notifier().SubscribeMod(c.ModID(), func(ch notify.Change) {
				if ch.Type == notify.ChangeReload {
					printf(out, "%s reloaded from %s\n", ch.ModID, c.Path())
					return
				}
				printf(out, "%s %s: %v -> %v\n", ch.Type, ch.Key(), ch.OldValue, ch.NewValue)
			})
			defer sub.Unsubscribe()

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printf(out, "watching %s (ctrl-c to stop)\n", c.Path())
			return a.Run(ctx)
		},
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func settingsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective library settings and where each came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			out := cmd.OutOrStdout()
			layers := a.SettingsLayers()
			for _, key := range config.SettingKeys {
				val, l, ok := layers.Get(key)
				if !ok {
					continue
				}
				origin := l.Name
				if l.Path != "" {
					origin += " " + l.Path
				}
				printf(out, "%s = %q (%s)\n", key, fmt.Sprint(val), origin)
			}
			return nil
		},
	}
}
