package types

import "fmt"

const (
	// CPUArchABI64 marks CPU types that use a 64-bit ABI.
	CPUArchABI64 uint32 = 0x01000000
	// CPUArchABI64_32 marks CPU types with a 64-bit ABI and 32-bit pointers.
	CPUArchABI64_32 uint32 = 0x02000000
)

// A CPU is a raw Mach-O cpu type.
type CPU uint32

const (
	CPUVax      CPU = 0x00000001
	CPUMC680x0  CPU = 0x00000006
	CPUI386     CPU = 0x00000007
	CPUX86_64   CPU = CPUI386 | CPU(CPUArchABI64)
	CPUMips     CPU = 0x00000008
	CPUHppa     CPU = 0x0000000b
	CPUArm      CPU = 0x0000000c
	CPUArm64    CPU = CPUArm | CPU(CPUArchABI64)
	CPUArm64_32 CPU = CPUArm | CPU(CPUArchABI64_32)
	CPUMC88000  CPU = 0x0000000d
	CPUSparc    CPU = 0x0000000e
	CPUI860     CPU = 0x0000000f
	CPURs6000   CPU = 0x00000011
	CPUPpc      CPU = 0x00000012
	CPUPpc64    CPU = CPUPpc | CPU(CPUArchABI64)
	CPURiscV    CPU = 0x00000018
)

// Is64Bit reports whether the cpu type carries the 64-bit ABI flag.
func (c CPU) Is64Bit() bool { return uint32(c)&CPUArchABI64 != 0 }

var cpuStrings = []IntName{
	{uint32(CPUVax), "VAX"},
	{uint32(CPUMC680x0), "MC680x0"},
	{uint32(CPUI386), "x86"},
	{uint32(CPUX86_64), "x86_64"},
	{uint32(CPUMips), "MIPS"},
	{uint32(CPUHppa), "HPPA"},
	{uint32(CPUArm), "ARM"},
	{uint32(CPUArm64), "ARM64"},
	{uint32(CPUArm64_32), "ARM64_32"},
	{uint32(CPUMC88000), "MC88000"},
	{uint32(CPUSparc), "SPARC"},
	{uint32(CPUI860), "i860"},
	{uint32(CPURs6000), "RS6000"},
	{uint32(CPUPpc), "PowerPC"},
	{uint32(CPUPpc64), "PowerPC64"},
	{uint32(CPURiscV), "RISC-V"},
}

func (c CPU) String() string   { return StringName(uint32(c), cpuStrings, false) }
func (c CPU) GoString() string { return StringName(uint32(c), cpuStrings, true) }

// A CPUSubtype is a raw Mach-O cpu subtype, including the capability bits
// in its top byte. Its meaning depends entirely on the cpu type it
// accompanies: ARM and ARM64 index disjoint subtype namespaces.
type CPUSubtype uint32

// Capability bits masked off the subtype before table lookup.
const (
	// CPUSubtypeMask selects the capability byte.
	CPUSubtypeMask uint32 = 0xff000000
	// CPUSubtypeLib64 marks 64-bit libraries.
	CPUSubtypeLib64 uint32 = 0x80000000
	// CPUSubtypePtrAuth marks the pointer-authentication ABI (arm64e).
	CPUSubtypePtrAuth uint32 = 0x80000000
)

// ARM subtypes (CPU_TYPE_ARM namespace).
const (
	CPUSubtypeArmAll    CPUSubtype = 0
	CPUSubtypeArmV4T    CPUSubtype = 5
	CPUSubtypeArmV6     CPUSubtype = 6
	CPUSubtypeArmV5Tej  CPUSubtype = 7
	CPUSubtypeArmXscale CPUSubtype = 8
	CPUSubtypeArmV7     CPUSubtype = 9
	CPUSubtypeArmV7F    CPUSubtype = 10
	CPUSubtypeArmV7S    CPUSubtype = 11
	CPUSubtypeArmV7K    CPUSubtype = 12
	CPUSubtypeArmV8     CPUSubtype = 13
	CPUSubtypeArmV6M    CPUSubtype = 14
	CPUSubtypeArmV7M    CPUSubtype = 15
	CPUSubtypeArmV7Em   CPUSubtype = 16
)

// ARM64 subtypes (CPU_TYPE_ARM64 namespace).
const (
	CPUSubtypeArm64All CPUSubtype = 0
	CPUSubtypeArm64V8  CPUSubtype = 1
	CPUSubtypeArm64E   CPUSubtype = 2
)

// x86 subtypes.
const (
	CPUSubtypeX86All   CPUSubtype = 3
	CPUSubtypeX86Arch1 CPUSubtype = 4
	CPUSubtypeX86_64H  CPUSubtype = 8
)

var armSubtypeStrings = []IntName{
	{uint32(CPUSubtypeArmAll), "ARM"},
	{uint32(CPUSubtypeArmV4T), "ARMv4t"},
	{uint32(CPUSubtypeArmV6), "ARMv6"},
	{uint32(CPUSubtypeArmV5Tej), "ARMv5tej"},
	{uint32(CPUSubtypeArmXscale), "ARM XScale"},
	{uint32(CPUSubtypeArmV7), "ARMv7"},
	{uint32(CPUSubtypeArmV7F), "ARMv7f"},
	{uint32(CPUSubtypeArmV7S), "ARMv7s"},
	{uint32(CPUSubtypeArmV7K), "ARMv7k"},
	{uint32(CPUSubtypeArmV8), "ARMv8"},
	{uint32(CPUSubtypeArmV6M), "ARMv6m"},
	{uint32(CPUSubtypeArmV7M), "ARMv7m"},
	{uint32(CPUSubtypeArmV7Em), "ARMv7em"},
}

var arm64SubtypeStrings = []IntName{
	{uint32(CPUSubtypeArm64All), "arm64"},
	{uint32(CPUSubtypeArm64V8), "arm64v8"},
	{uint32(CPUSubtypeArm64E), "arm64e"},
}

var x86SubtypeStrings = []IntName{
	{uint32(CPUSubtypeX86All), "x86_64"},
	{uint32(CPUSubtypeX86Arch1), "i486"},
	{uint32(CPUSubtypeX86_64H), "x86_64h"},
}

// Base strips the capability bits, leaving the table index.
func (st CPUSubtype) Base() CPUSubtype {
	return CPUSubtype(uint32(st) &^ CPUSubtypeMask)
}

// IsPtrAuth reports whether the pointer-authentication ABI bit is set.
// Only meaningful when the cpu type is ARM64.
func (st CPUSubtype) IsPtrAuth() bool {
	return uint32(st)&CPUSubtypePtrAuth != 0
}

// String resolves the subtype in the namespace of the given cpu type.
// ARM64 subtypes carrying the pointer-authentication ABI bit resolve to
// "arm64e" regardless of their base value; everything unrecognized falls
// back to a numeric label, never an error.
func (st CPUSubtype) String(c CPU) string {
	switch c {
	case CPUArm64:
		if st.IsPtrAuth() {
			return "arm64e"
		}
		return StringName(uint32(st.Base()), arm64SubtypeStrings, false)
	case CPUArm:
		return StringName(uint32(st.Base()), armSubtypeStrings, false)
	case CPUI386, CPUX86_64:
		return StringName(uint32(st.Base()), x86SubtypeStrings, false)
	}
	return fmt.Sprintf("%#x", uint32(st.Base()))
}

// Caps renders the capability byte, e.g. "caps: PAC00" for arm64e.
func (st CPUSubtype) Caps(c CPU) string {
	if c == CPUArm64 && st.IsPtrAuth() {
		return fmt.Sprintf("caps: PAC%02d", uint32(st)>>24&^0x80)
	}
	if caps := uint32(st) & CPUSubtypeMask; caps != 0 {
		return fmt.Sprintf("caps: %#x", caps>>24)
	}
	return ""
}
