package smbios

import (
	"encoding/binary"
	"fmt"
)

// System Information (Type 1) field offsets, measured from the type byte.
const (
	offsetLength       = 0x01
	offsetHandle       = 0x02
	offsetManufacturer = 0x04
	offsetProductName  = 0x05
	offsetVersion      = 0x06
	offsetSerialNumber = 0x07
	offsetUUID         = 0x08
	offsetWakeUpType   = 0x18
	offsetSKUNumber    = 0x19
	offsetFamily       = 0x1a

	// MinSystemInfoLength is the shortest System Information structure that
	// carries both the UUID and the wake-up type (SMBIOS 2.1+).
	MinSystemInfoLength = offsetWakeUpType + 1
)

// WakeUpType identifies the event that caused the system to power up.
type WakeUpType uint8

// Wake-up types defined by DSP0134 section 7.2.2.
const (
	WakeUpReserved WakeUpType = iota
	WakeUpOther
	WakeUpUnknown
	WakeUpAPMTimer
	WakeUpModemRing
	WakeUpLANRemote
	WakeUpPowerSwitch
	WakeUpPCIPME
	WakeUpACPowerRestored
)

var wakeUpTypeNames = [...]string{
	WakeUpReserved:        "Reserved",
	WakeUpOther:           "Other",
	WakeUpUnknown:         "Unknown",
	WakeUpAPMTimer:        "APM Timer",
	WakeUpModemRing:       "Modem Ring",
	WakeUpLANRemote:       "LAN Remote",
	WakeUpPowerSwitch:     "Power Switch",
	WakeUpPCIPME:          "PCI PME#",
	WakeUpACPowerRestored: "AC Power Restored",
}

// String returns the DSP0134 name of the wake-up type.
func (w WakeUpType) String() string {
	if int(w) < len(wakeUpTypeNames) {
		return wakeUpTypeNames[w]
	}

	return fmt.Sprintf("WakeUpType(%#02x)", uint8(w))
}

// SystemInfo is a decoded System Information structure. The four string
// fields are 1-based indexes into the structure's string set (0 means no
// string) and are not resolved.
//
// SKUNumber and Family are nil when the structure's declared length does
// not cover them, so "absent" is distinguishable from "present and zero".
type SystemInfo struct {
	Length       uint8      `json:"length"`
	Handle       uint16     `json:"handle"`
	Manufacturer uint8      `json:"manufacturer"`
	ProductName  uint8      `json:"product_name"`
	Version      uint8      `json:"version"`
	SerialNumber uint8      `json:"serial_number"`
	UUID         UUID       `json:"uuid"`
	WakeUpType   WakeUpType `json:"wake_up_type"`
	SKUNumber    *uint8     `json:"sku_number,omitempty"`
	Family       *uint8     `json:"family,omitempty"`
}

// DecodeSystemInfo decodes the fixed fields of a System Information
// structure. b starts at the type byte and may include the string set.
//
// Both the buffer and the declared formatted length must reach the wake-up
// type field, otherwise [ErrTruncatedStructure] is returned. Optional
// trailing fields are read only when the declared length covers them, so a
// string set following a short formatted section is never misread.
//
// The type byte is checked as well: a structure of any other type yields
// [ErrNotSystemInfo] even when it is long enough to decode.
func DecodeSystemInfo(b []byte) (SystemInfo, error) {
	if len(b) < MinSystemInfoLength {
		return SystemInfo{}, fmt.Errorf("%d bytes, need %d: %w", len(b), MinSystemInfoLength, ErrTruncatedStructure)
	}

	if t := b[0]; t != TypeSystemInformation {
		return SystemInfo{}, fmt.Errorf("structure type %d: %w", t, ErrNotSystemInfo)
	}

	declared := int(b[offsetLength])
	if declared < MinSystemInfoLength {
		return SystemInfo{}, fmt.Errorf("declared length %d, need %d: %w", declared, MinSystemInfoLength, ErrTruncatedStructure)
	}
	formatted := min(declared, len(b))

	info := SystemInfo{
		Length:       b[offsetLength],
		Handle:       binary.LittleEndian.Uint16(b[offsetHandle : offsetHandle+2]),
		Manufacturer: b[offsetManufacturer],
		ProductName:  b[offsetProductName],
		Version:      b[offsetVersion],
		SerialNumber: b[offsetSerialNumber],
		WakeUpType:   WakeUpType(b[offsetWakeUpType]),
	}
	copy(info.UUID[:], b[offsetUUID:offsetUUID+UUIDSize])

	if formatted > offsetSKUNumber {
		sku := b[offsetSKUNumber]
		info.SKUNumber = &sku
	}

	if formatted > offsetFamily {
		family := b[offsetFamily]
		info.Family = &family
	}

	return info, nil
}
