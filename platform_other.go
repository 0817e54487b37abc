//go:build !linux && !darwin && !windows

package sysuuid

// platformStrategies lists the strategies for other Unix systems, where the
// table is located through the entry point in physical memory.
var platformStrategies = []Strategy{
	StrategyFirmwareTable,
	StrategyDMIDecode,
}

func nativeTableReader() TableReader {
	return &streamTableReader{}
}
