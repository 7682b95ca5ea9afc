package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/isidrok/templao/internal/build"
	"github.com/isidrok/templao/internal/config"
	"github.com/isidrok/templao/internal/registry"
	"github.com/isidrok/templao/internal/scanner"
)

var (
	listFormat string
	listFilter string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List discovered templates",
	Long: `Scan the configured paths, compile every template, and list the results
with their binding keys and part counts.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, json, yaml)")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "only list templates whose name contains this substring")
}

// listEntry is the serializable shape of one registry row.
type listEntry struct {
	Name      string   `json:"name" yaml:"name"`
	FilePath  string   `json:"file_path" yaml:"file_path"`
	Hash      string   `json:"hash" yaml:"hash"`
	Keys      []string `json:"keys" yaml:"keys"`
	PartCount int      `json:"part_count" yaml:"part_count"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg, cmd.Flags().Changed("log-level"))
	ctx := cmd.Context()

	reg := registry.NewTemplateRegistry()
	scan := scanner.NewTemplateScanner(reg, &cfg.Templates, logger)
	if err := scan.ScanAll(ctx); err != nil {
		return err
	}
	build.NewPipeline(0, reg, logger).BuildAll(ctx)

	entries := collectEntries(reg, listFilter)

	switch listFormat {
	case "table":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPARTS\tKEYS\tFILE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Name, e.PartCount, strings.Join(e.Keys, ","), e.FilePath)
		}
		return w.Flush()
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		out, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", listFormat)
	}
}

func collectEntries(reg *registry.TemplateRegistry, filter string) []listEntry {
	infos := reg.GetAll()
	entries := make([]listEntry, 0, len(infos))
	for name, info := range infos {
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		entries = append(entries, listEntry{
			Name:      info.Name,
			FilePath:  info.FilePath,
			Hash:      info.Hash,
			Keys:      info.Keys,
			PartCount: info.PartCount,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
