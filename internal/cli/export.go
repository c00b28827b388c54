package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

func (a *app) exportCmd() *cobra.Command {
	var ndjson bool
	var dir string
	cmd := &cobra.Command{
		Use:   "export [task|project|note|idea...]",
		Short: "Write a snapshot of collections to <root>/exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := store.Kinds
			if len(args) > 0 {
				kinds = nil
				for _, arg := range args {
					k, ok := store.ParseKind(arg)
					if !ok {
						return usageErr("unknown collection %q", arg)
					}
					kinds = append(kinds, k)
				}
			}
			if dir == "" {
				dir = filepath.Join(a.cfg.Root, "exports")
			}

			base := "all"
			if len(kinds) == 1 {
				base = kinds[0].Plural()
			}
			var (
				path string
				err  error
			)
			if ndjson {
				var items []any
				for _, k := range kinds {
					list, err := a.store.List(cmd.Context(), k)
					if err != nil {
						return internalErr(fmt.Errorf("export: list %s: %w", k.Plural(), err))
					}
					for _, e := range list {
						items = append(items, exportRecord{Kind: k, Entity: e})
					}
				}
				path, err = writeNDJSONExport(dir, base, items)
			} else {
				payload := map[string][]store.Entity{}
				for _, k := range kinds {
					list, err := a.store.List(cmd.Context(), k)
					if err != nil {
						return internalErr(fmt.Errorf("export: list %s: %w", k.Plural(), err))
					}
					payload[k.Plural()] = append([]store.Entity{}, list...)
				}
				path, err = writeJSONExport(dir, base, payload)
			}
			if err != nil {
				return internalErr(fmt.Errorf("export: %w", err))
			}
			format := "JSON"
			if ndjson {
				format = "NDJSON"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to: %s\n", format, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ndjson, "ndjson", false, "One JSON record per line")
	cmd.Flags().StringVar(&dir, "export-dir", "", "Override export directory (default: <root>/exports)")
	return cmd
}

// exportRecord tags an entity with its collection in NDJSON output.
type exportRecord struct {
	Kind   store.Kind   `json:"kind"`
	Entity store.Entity `json:"item"`
}

func writeJSONExport(dir, base string, payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return writeExportFile(dir, base, "json", data)
}

func writeNDJSONExport(dir, base string, items []any) (string, error) {
	var b strings.Builder
	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return "", err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return writeExportFile(dir, base, "ndjson", []byte(b.String()))
}

func writeExportFile(dir, base, ext string, data []byte) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("export directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ts := time.Now().UTC().Format("20060102-150405")
	name := fmt.Sprintf("%s-%s.%s", base, ts, ext)
	path := filepath.Join(dir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			break
		}
		name = fmt.Sprintf("%s-%s-%d.%s", base, ts, i, ext)
		path = filepath.Join(dir, name)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d", time.Now().UTC().UnixNano()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path, nil
}
