package types

import "fmt"

// Version is a packed X.Y.Z version number: nibbles XXXX.YY.ZZ.
type Version uint32

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", uint32(v)>>16, uint32(v)>>8&0xff, uint32(v)&0xff)
}

// SrcVersion is a packed A.B.C.D.E source version: a24.b10.c10.d10.e10.
type SrcVersion uint64

func (v SrcVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d.%d",
		uint64(v)>>40,
		uint64(v)>>30&0x3ff,
		uint64(v)>>20&0x3ff,
		uint64(v)>>10&0x3ff,
		uint64(v)&0x3ff)
}

// Platform is an LC_BUILD_VERSION platform identifier.
type Platform uint32

const (
	PlatformMacOS            Platform = 1
	PlatformIOS              Platform = 2
	PlatformTvOS             Platform = 3
	PlatformWatchOS          Platform = 4
	PlatformBridgeOS         Platform = 5
	PlatformMacCatalyst      Platform = 6
	PlatformIOSSimulator     Platform = 7
	PlatformTvOSSimulator    Platform = 8
	PlatformWatchOSSimulator Platform = 9
	PlatformDriverKit        Platform = 10
	PlatformVisionOS         Platform = 11
)

var platformStrings = []IntName{
	{uint32(PlatformMacOS), "macOS"},
	{uint32(PlatformIOS), "iOS"},
	{uint32(PlatformTvOS), "tvOS"},
	{uint32(PlatformWatchOS), "watchOS"},
	{uint32(PlatformBridgeOS), "bridgeOS"},
	{uint32(PlatformMacCatalyst), "macCatalyst"},
	{uint32(PlatformIOSSimulator), "iOS Simulator"},
	{uint32(PlatformTvOSSimulator), "tvOS Simulator"},
	{uint32(PlatformWatchOSSimulator), "watchOS Simulator"},
	{uint32(PlatformDriverKit), "DriverKit"},
	{uint32(PlatformVisionOS), "visionOS"},
}

func (p Platform) String() string { return StringName(uint32(p), platformStrings, false) }
