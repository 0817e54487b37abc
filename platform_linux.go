//go:build linux

package sysuuid

// platformStrategies lists the Linux strategies in order of preference:
// the raw table from sysfs needs no external tools, product_uuid is the
// kernel's own rendering, dmidecode is the last resort.
var platformStrategies = []Strategy{
	StrategyFirmwareTable,
	StrategySysfs,
	StrategyDMIDecode,
}

// nativeTableReader returns the reader for /sys/firmware/dmi/tables.
func nativeTableReader() TableReader {
	return &streamTableReader{}
}
