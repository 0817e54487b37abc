package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/slashdevops/sysuuid"
)

func printDiagnostics(w io.Writer, provider *sysuuid.Provider) {
	diag := provider.Diagnostics()
	if diag == nil {
		fmt.Fprintln(w, "no diagnostic information available")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Diagnostics")
	t.AppendHeader(table.Row{"Strategy", "Result"})

	for _, name := range diag.Attempted {
		result := "ok"
		if err, failed := diag.Errors[name]; failed {
			result = err.Error()
		}
		t.AppendRow(table.Row{name, result})
	}

	if diag.SMBIOSVersion != "" {
		t.AppendFooter(table.Row{"SMBIOS " + diag.SMBIOSVersion, "layout " + diag.Layout})
	}

	t.Render()
}

func formatDiagnostics(provider *sysuuid.Provider) map[string]any {
	diag := provider.Diagnostics()
	if diag == nil {
		return nil
	}

	result := map[string]any{
		"attempted": diag.Attempted,
		"strategy":  diag.Strategy,
	}

	if diag.SMBIOSVersion != "" {
		result["smbios_version"] = diag.SMBIOSVersion
	}

	if diag.Layout != "" {
		result["layout"] = diag.Layout
	}

	if len(diag.Errors) > 0 {
		errors := make(map[string]string, len(diag.Errors))
		for name, err := range diag.Errors {
			errors[name] = err.Error()
		}
		result["errors"] = errors
	}

	return result
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
