package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/slashdevops/sysuuid"
	"github.com/slashdevops/sysuuid/smbios"
)

// decodedSystemInfo is the System Information structure with its string
// references resolved.
type decodedSystemInfo struct {
	SMBIOSVersion string            `json:"smbios_version"`
	Layout        string            `json:"layout"`
	UUID          string            `json:"uuid"`
	Manufacturer  string            `json:"manufacturer,omitempty"`
	ProductName   string            `json:"product_name,omitempty"`
	Version       string            `json:"version,omitempty"`
	SerialNumber  string            `json:"serial_number,omitempty"`
	WakeUpType    string            `json:"wake_up_type"`
	SKUNumber     *string           `json:"sku_number,omitempty"`
	Family        *string           `json:"family,omitempty"`
	Raw           smbios.SystemInfo `json:"raw"`
}

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode",
		Short: "Decode the System Information (type 1) structure",
		Long: `decode reads the raw SMBIOS table and prints every field of the
System Information structure, resolving string references.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, raw, err := a.provider().Table(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read SMBIOS table: %w", err)
			}

			decoded, err := decodeSystemInfo(t, raw, a.layout(raw), a.cfg.FindSystemInfo)
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return printJSON(cmd.OutOrStdout(), decoded)
			}

			renderSystemInfo(cmd.OutOrStdout(), decoded)

			return nil
		},
	}
}

// layout returns the configured layout, or the one the table's version implies.
func (a *app) layout(raw *sysuuid.RawTable) smbios.Layout {
	if layout, ok, _ := a.cfg.UUIDLayout(); ok {
		return layout
	}

	return smbios.LayoutForVersion(raw.Major, raw.Minor)
}

// decodeSystemInfo decodes handle 1, or with search the first Type 1
// structure, and resolves its string references.
func decodeSystemInfo(t *smbios.Table, raw *sysuuid.RawTable, layout smbios.Layout, search bool) (*decodedSystemInfo, error) {
	var (
		s   smbios.Structure
		err error
	)
	if search {
		s, err = t.FindSystemInfoStructure()
	} else {
		s, err = t.Lookup(smbios.SystemInformationHandle)
	}
	if err != nil {
		return nil, err
	}

	info, err := smbios.DecodeSystemInfo(s.Data)
	if err != nil {
		return nil, err
	}

	d := &decodedSystemInfo{
		SMBIOSVersion: raw.Version(),
		Layout:        layout.String(),
		UUID:          info.UUID.Format(layout),
		Manufacturer:  s.StringAt(info.Manufacturer),
		ProductName:   s.StringAt(info.ProductName),
		Version:       s.StringAt(info.Version),
		SerialNumber:  s.StringAt(info.SerialNumber),
		WakeUpType:    info.WakeUpType.String(),
		Raw:           info,
	}

	if info.SKUNumber != nil {
		sku := s.StringAt(*info.SKUNumber)
		d.SKUNumber = &sku
	}

	if info.Family != nil {
		family := s.StringAt(*info.Family)
		d.Family = &family
	}

	return d, nil
}

func renderSystemInfo(w io.Writer, d *decodedSystemInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("System Information (handle %#04x)", d.Raw.Handle)
	t.AppendHeader(table.Row{"Field", "Value"})

	t.AppendRows([]table.Row{
		{"SMBIOS Version", d.SMBIOSVersion},
		{"Length", fmt.Sprintf("%d bytes", d.Raw.Length)},
		{"Manufacturer", stringRef(d.Manufacturer, d.Raw.Manufacturer)},
		{"Product Name", stringRef(d.ProductName, d.Raw.ProductName)},
		{"Version", stringRef(d.Version, d.Raw.Version)},
		{"Serial Number", stringRef(d.SerialNumber, d.Raw.SerialNumber)},
		{"UUID", fmt.Sprintf("%s (%s)", d.UUID, d.Layout)},
		{"Wake-up Type", d.WakeUpType},
	})

	if d.SKUNumber != nil {
		t.AppendRow(table.Row{"SKU Number", stringRef(*d.SKUNumber, *d.Raw.SKUNumber)})
	}

	if d.Family != nil {
		t.AppendRow(table.Row{"Family", stringRef(*d.Family, *d.Raw.Family)})
	}

	t.Render()
}

// stringRef renders a resolved string with its index in the string set.
func stringRef(value string, index uint8) string {
	if index == 0 {
		return "Not Specified"
	}

	return fmt.Sprintf("%s [#%d]", value, index)
}
