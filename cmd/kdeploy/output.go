package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/davidmdm/kdeploy/internal"
	"github.com/davidmdm/kdeploy/pkg/deploy"
)

const (
	OutputYAML  = "yaml"
	OutputJSON  = "json"
	OutputTable = "table"
)

var outputs = []string{OutputYAML, OutputJSON, OutputTable}

func validateOutput(output string) error {
	if !slices.Contains(outputs, output) {
		return fmt.Errorf("unknown output %q: must be one of %s", output, strings.Join(outputs, ", "))
	}
	return nil
}

func WriteReport(w io.Writer, report deploy.Report, output string) error {
	switch output {
	case OutputYAML:
		return internal.EncodeYAML(w, report)
	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case OutputTable:
		_, err := fmt.Fprintln(w, reportTable(report))
		return err
	default:
		return validateOutput(output)
	}
}

func reportTable(report deploy.Report) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)

	tbl.AppendRow(table.Row{"state", report.State.String()})
	tbl.AppendRow(table.Row{"changed", report.Changed})

	for _, action := range report.Actions {
		tbl.AppendRow(table.Row{"would", action})
	}

	if report.Resource == nil {
		tbl.AppendRow(table.Row{"resource", "<absent>"})
	} else {
		tbl.AppendRow(table.Row{"resource", internal.Canonical(report.Resource)})
		tbl.AppendRow(table.Row{"resourceVersion", report.Resource.GetResourceVersion()})
	}

	return tbl.Render()
}
