package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/yourusername/paddock-parser/internal/datasource"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources [name...]",
	Short: "Show how configured sources resolve",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := datasource.NewRegistry(cfg.Sources, nil, appLog)

		names := args
		if len(names) == 0 {
			for _, s := range cfg.Sources {
				names = append(names, s.Name)
			}
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Source", "Kind", "Status", "Location", "Cache TTL"})
		for _, name := range names {
			res := registry.Resolve(name)
			location := res.Config.URL
			if res.Config.Path != "" {
				location = res.Config.Path
			}
			t.AppendRow(table.Row{name, res.Config.Kind, res.Status.String(), location, res.Config.CacheTTL().String()})
		}
		t.Render()
		return nil
	},
}
