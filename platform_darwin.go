//go:build darwin

package sysuuid

// platformStrategies lists the macOS strategies. macOS exposes no raw SMBIOS
// table to user space, so the I/O Kit registry is the only source.
var platformStrategies = []Strategy{
	StrategyIORegistry,
}

// nativeTableReader returns nil: there is no raw table on macOS.
func nativeTableReader() TableReader {
	return nil
}
