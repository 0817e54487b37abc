package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/slashdevops/sysuuid"
	"github.com/slashdevops/sysuuid/smbios"
)

// structureTypeNames are the DSP0134 names of the structure types.
var structureTypeNames = map[uint8]string{
	0:   "BIOS Information",
	1:   "System Information",
	2:   "Baseboard Information",
	3:   "System Enclosure",
	4:   "Processor Information",
	7:   "Cache Information",
	8:   "Port Connector Information",
	9:   "System Slots",
	10:  "On Board Devices Information",
	11:  "OEM Strings",
	12:  "System Configuration Options",
	13:  "BIOS Language Information",
	15:  "System Event Log",
	16:  "Physical Memory Array",
	17:  "Memory Device",
	19:  "Memory Array Mapped Address",
	20:  "Memory Device Mapped Address",
	21:  "Built-in Pointing Device",
	22:  "Portable Battery",
	24:  "Hardware Security",
	26:  "Voltage Probe",
	27:  "Cooling Device",
	28:  "Temperature Probe",
	29:  "Electrical Current Probe",
	32:  "System Boot Information",
	38:  "IPMI Device Information",
	39:  "System Power Supply",
	41:  "Onboard Devices Extended Information",
	43:  "TPM Device",
	126: "Inactive",
	127: "End Of Table",
}

func structureTypeName(t uint8) string {
	if name, ok := structureTypeNames[t]; ok {
		return name
	}

	if t >= 128 {
		return "OEM-specific"
	}

	return "Unknown"
}

// walkEntry describes one structure of the table.
type walkEntry struct {
	Handle  uint16 `json:"handle"`
	Type    uint8  `json:"type"`
	Name    string `json:"name"`
	Length  uint8  `json:"length"`
	Size    int    `json:"size"`
	Strings int    `json:"strings"`
}

// walkResult is the JSON form of the walk output.
type walkResult struct {
	SMBIOSVersion string      `json:"smbios_version"`
	Size          int         `json:"size"`
	Duplicates    int         `json:"duplicates"`
	Structures    []walkEntry `json:"structures"`
}

func newWalkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "walk",
		Short: "List the structures of the SMBIOS table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, raw, err := a.provider().Table(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read SMBIOS table: %w", err)
			}

			result := walkTable(t, raw)

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}

			renderWalk(cmd.OutOrStdout(), result)

			return nil
		},
	}
}

func walkTable(t *smbios.Table, raw *sysuuid.RawTable) walkResult {
	result := walkResult{
		SMBIOSVersion: raw.Version(),
		Size:          len(raw.Data),
		Duplicates:    t.Duplicates(),
		Structures:    make([]walkEntry, 0, t.Len()),
	}

	for _, s := range t.Structures() {
		result.Structures = append(result.Structures, walkEntry{
			Handle:  s.Handle,
			Type:    s.Type,
			Name:    structureTypeName(s.Type),
			Length:  s.Length,
			Size:    len(s.Data),
			Strings: len(s.Strings()),
		})
	}

	return result
}

func renderWalk(w io.Writer, r walkResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("SMBIOS %s", r.SMBIOSVersion)
	t.AppendHeader(table.Row{"Handle", "Type", "Name", "Length", "Size", "Strings"})

	for _, e := range r.Structures {
		t.AppendRow(table.Row{
			fmt.Sprintf("%#04x", e.Handle),
			e.Type,
			e.Name,
			e.Length,
			humanize.IBytes(uint64(e.Size)),
			e.Strings,
		})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d structures", len(r.Structures)),
		"", "",
		fmt.Sprintf("%d duplicates", r.Duplicates),
		humanize.IBytes(uint64(r.Size)),
		"",
	})

	t.Render()
}
