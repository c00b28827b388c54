package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Inspect configuration",
	}
	var asJSON, plain bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved settings and store layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if asJSON && plain {
				return usageErr("--json and --plain are mutually exclusive")
			}

			cfgPath := filepath.Join(a.cfg.Root, "config.json")
			_, err := os.Stat(cfgPath)
			exists := err == nil && a.ws != nil

			payload := map[string]any{
				"settings":    a.cfg,
				"config_path": cfgPath,
				"exists":      exists,
			}
			if a.ws != nil {
				payload["workspace"] = a.ws.Config()
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(payload); err != nil {
					return internalErr(err)
				}
				return nil
			}

			if plain {
				w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tVALUE")
				fmt.Fprintf(w, "root\t%s\n", a.cfg.Root)
				fmt.Fprintf(w, "store\t%s\n", a.cfg.Store)
				fmt.Fprintf(w, "chat.mode\t%s\n", a.cfg.Chat.Mode)
				fmt.Fprintf(w, "chat.endpoint\t%s\n", a.cfg.Chat.Endpoint)
				fmt.Fprintf(w, "chat.timeout\t%s\n", a.cfg.Chat.Timeout)
				fmt.Fprintf(w, "log.level\t%s\n", a.cfg.LogLevel)
				fmt.Fprintf(w, "watch\t%t\n", a.cfg.Watch)
				fmt.Fprintf(w, "config_file\t%s\n", a.cfg.File)
				if a.ws != nil {
					for _, c := range a.ws.Config().Collections {
						fmt.Fprintf(w, "collection.%s\tdir=%s\n", c.Kind, c.Dir)
					}
				}
				return w.Flush()
			}

			fmt.Fprintln(out, "Config")
			fmt.Fprintln(out, "  Root:", a.cfg.Root)
			fmt.Fprintln(out, "  Store:", a.cfg.Store)
			if a.cfg.File != "" {
				fmt.Fprintln(out, "  Settings file:", a.cfg.File)
			} else {
				fmt.Fprintln(out, "  Settings file: (none; defaults and environment)")
			}
			if exists {
				fmt.Fprintln(out, "  Workspace file:", cfgPath)
			} else {
				fmt.Fprintln(out, "  Workspace file:", cfgPath, "(not found; defaults shown)")
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Chat:")
			fmt.Fprintf(out, "  mode: %s\n", a.cfg.Chat.Mode)
			if a.cfg.Chat.Endpoint == "" {
				fmt.Fprintln(out, "  endpoint: (not set; chat mode replies with an error)")
			} else {
				fmt.Fprintf(out, "  endpoint: %s\n", a.cfg.Chat.Endpoint)
			}
			fmt.Fprintf(out, "  timeout: %s\n", a.cfg.Chat.Timeout)
			if a.ws != nil {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Collections:")
				for _, c := range a.ws.Config().Collections {
					fmt.Fprintf(out, "  %s: %s\n", c.Kind, filepath.Join(a.ws.Root, c.Dir))
				}
			}
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "JSON output")
	show.Flags().BoolVar(&plain, "plain", false, "TSV output")
	cmd.AddCommand(show)
	return cmd
}
