// Package sysuuid reads the system UUID that the firmware stores in the SMBIOS
// System Information structure. The UUID is stable across reboots and
// reinstalls, making it suitable for inventory, licensing and telemetry
// correlation.
//
// # Overview
//
// A [Provider] tries a platform-specific list of [Strategy] values in order
// and returns the first UUID obtained. The preferred strategy,
// [StrategyFirmwareTable], reads the raw SMBIOS structure table, walks it with
// package smbios and decodes the System Information (type 1) structure
// directly, without depending on external tools. The remaining strategies
// read what the operating system already decoded:
//
//   - [StrategySysfs] reads /sys/class/dmi/id/product_uuid on Linux
//   - [StrategyDMIDecode] scrapes `dmidecode --type 1`
//   - [StrategyIORegistry] reads IOPlatformUUID from the macOS I/O Kit registry
//   - [StrategyWMI] queries Win32_ComputerSystemProduct on Windows
//
// # Quick Start
//
//	id, err := sysuuid.New().UUID(ctx)
//
// # Byte Order
//
// SMBIOS 2.6 and later store the first three UUID fields little-endian. The
// firmware-table strategy picks the rendering from the table's SMBIOS version
// ([smbios.LayoutForVersion]); override it with [Provider.WithLayout]:
//
//	id, _ := sysuuid.New().
//		WithLayout(smbios.LayoutCanonical).
//		UUID(ctx)
//
// # Anonymization
//
// [Provider.WithAnonymize] returns a hash of the UUID instead of the UUID
// itself. [Provider.WithSalt] mixes an application-specific string into the
// hash so that two applications on the same machine produce different values,
// and [Provider.WithFormat] sets the output length:
//
//	id, _ := sysuuid.New().
//		WithAnonymize(sysuuid.HashSHA256).
//		WithSalt("my-app-v1").
//		WithFormat(sysuuid.Format32).
//		UUID(ctx)
//
// # Diagnostics
//
// After calling [Provider.UUID], call [Provider.Diagnostics] to inspect which
// strategies were tried and which one succeeded:
//
//	diag := provider.Diagnostics()
//	fmt.Println("Strategy:", diag.Strategy)
//	fmt.Println("Errors:", diag.Errors)
//
// # Thread Safety
//
// A [Provider] is safe for concurrent use after configuration is complete.
// The first successful call to [Provider.UUID] caches the result; subsequent
// calls return the cached value.
//
// # Testing
//
// Inject a [TableReader], a [CommandExecutor] and an afero filesystem to
// replace the firmware, system commands and sysfs with test doubles:
//
//	provider := sysuuid.New().
//		WithTableReader(&sysuuid.FileTableReader{Path: "dmi.bin"}).
//		WithExecutor(myMock).
//		WithFS(afero.NewMemMapFs())
//
// # CLI Tool
//
// A command-line tool is provided in cmd/sysuuid:
//
//	sysuuid
//	sysuuid --anonymize --hash md5 --format 0
//	sysuuid --table-file dmi.bin --layout grouped
//	sysuuid walk --table-file dmi.bin
//	sysuuid decode --json
//	sysuuid version --long
package sysuuid
