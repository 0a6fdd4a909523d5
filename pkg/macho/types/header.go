package types

import (
	"fmt"
	"strings"
)

// A HeaderFileType is the Mach-O file type, e.g. an object file,
// executable, or dynamic library.
type HeaderFileType uint32

const (
	MH_OBJECT      HeaderFileType = 0x1
	MH_EXECUTE     HeaderFileType = 0x2
	MH_FVMLIB      HeaderFileType = 0x3
	MH_CORE        HeaderFileType = 0x4
	MH_PRELOAD     HeaderFileType = 0x5
	MH_DYLIB       HeaderFileType = 0x6
	MH_DYLINKER    HeaderFileType = 0x7
	MH_BUNDLE      HeaderFileType = 0x8
	MH_DYLIB_STUB  HeaderFileType = 0x9
	MH_DSYM        HeaderFileType = 0xa
	MH_KEXT_BUNDLE HeaderFileType = 0xb
	MH_FILESET     HeaderFileType = 0xc
)

var headerFileTypeStrings = []IntName{
	{uint32(MH_OBJECT), "MH_OBJECT"},
	{uint32(MH_EXECUTE), "MH_EXECUTE"},
	{uint32(MH_FVMLIB), "MH_FVMLIB"},
	{uint32(MH_CORE), "MH_CORE"},
	{uint32(MH_PRELOAD), "MH_PRELOAD"},
	{uint32(MH_DYLIB), "MH_DYLIB"},
	{uint32(MH_DYLINKER), "MH_DYLINKER"},
	{uint32(MH_BUNDLE), "MH_BUNDLE"},
	{uint32(MH_DYLIB_STUB), "MH_DYLIB_STUB"},
	{uint32(MH_DSYM), "MH_DSYM"},
	{uint32(MH_KEXT_BUNDLE), "MH_KEXT_BUNDLE"},
	{uint32(MH_FILESET), "MH_FILESET"},
}

func (t HeaderFileType) String() string {
	return StringName(uint32(t), headerFileTypeStrings, false)
}

// Description returns the long human description for a file type.
func (t HeaderFileType) Description() string {
	switch t {
	case MH_OBJECT:
		return "Relocatable Object File"
	case MH_EXECUTE:
		return "Demand Paged Executable File"
	case MH_FVMLIB:
		return "Fixed VM Shared Library File"
	case MH_CORE:
		return "Core File"
	case MH_PRELOAD:
		return "Preloaded Executable File"
	case MH_DYLIB:
		return "Dynamically Bound Shared Library"
	case MH_DYLINKER:
		return "Dynamic Link Editor"
	case MH_BUNDLE:
		return "Dynamically Bound Bundle File"
	case MH_DYLIB_STUB:
		return "Shared Library Stub for Static Linking Only"
	case MH_DSYM:
		return "Companion File With Only Debug Sections"
	case MH_KEXT_BUNDLE:
		return "Kernel Extension Bundle"
	case MH_FILESET:
		return "Kernel Cache Fileset"
	}
	return "Unknown File Type"
}

// A HeaderFlag is the flags bitmask of the Mach-O header.
type HeaderFlag uint32

const (
	NoUndefs                   HeaderFlag = 0x1
	IncrLink                   HeaderFlag = 0x2
	DyldLink                   HeaderFlag = 0x4
	BindAtLoad                 HeaderFlag = 0x8
	Prebound                   HeaderFlag = 0x10
	SplitSegs                  HeaderFlag = 0x20
	LazyInit                   HeaderFlag = 0x40
	TwoLevel                   HeaderFlag = 0x80
	ForceFlat                  HeaderFlag = 0x100
	NoMultiDefs                HeaderFlag = 0x200
	NoFixPrebinding            HeaderFlag = 0x400
	Prebindable                HeaderFlag = 0x800
	AllModsBound               HeaderFlag = 0x1000
	SubsectionsViaSymbols      HeaderFlag = 0x2000
	Canonical                  HeaderFlag = 0x4000
	WeakDefines                HeaderFlag = 0x8000
	BindsToWeak                HeaderFlag = 0x10000
	AllowStackExecution        HeaderFlag = 0x20000
	RootSafe                   HeaderFlag = 0x40000
	SetuidSafe                 HeaderFlag = 0x80000
	NoReexportedDylibs         HeaderFlag = 0x100000
	PIE                        HeaderFlag = 0x200000
	DeadStrippableDylib        HeaderFlag = 0x400000
	HasTLVDescriptors          HeaderFlag = 0x800000
	NoHeapExecution            HeaderFlag = 0x1000000
	AppExtensionSafe           HeaderFlag = 0x2000000
	NlistOutofsyncWithDyldinfo HeaderFlag = 0x4000000
	SimSupport                 HeaderFlag = 0x8000000
	DylibInCache               HeaderFlag = 0x80000000
)

var headerFlagNames = []IntName{
	{uint32(NoUndefs), "NOUNDEFS"},
	{uint32(IncrLink), "INCRLINK"},
	{uint32(DyldLink), "DYLDLINK"},
	{uint32(BindAtLoad), "BINDATLOAD"},
	{uint32(Prebound), "PREBOUND"},
	{uint32(SplitSegs), "SPLIT_SEGS"},
	{uint32(LazyInit), "LAZY_INIT"},
	{uint32(TwoLevel), "TWOLEVEL"},
	{uint32(ForceFlat), "FORCE_FLAT"},
	{uint32(NoMultiDefs), "NOMULTIDEFS"},
	{uint32(NoFixPrebinding), "NOFIXPREBINDING"},
	{uint32(Prebindable), "PREBINDABLE"},
	{uint32(AllModsBound), "ALLMODSBOUND"},
	{uint32(SubsectionsViaSymbols), "SUBSECTIONS_VIA_SYMBOLS"},
	{uint32(Canonical), "CANONICAL"},
	{uint32(WeakDefines), "WEAK_DEFINES"},
	{uint32(BindsToWeak), "BINDS_TO_WEAK"},
	{uint32(AllowStackExecution), "ALLOW_STACK_EXECUTION"},
	{uint32(RootSafe), "ROOT_SAFE"},
	{uint32(SetuidSafe), "SETUID_SAFE"},
	{uint32(NoReexportedDylibs), "NO_REEXPORTED_DYLIBS"},
	{uint32(PIE), "PIE"},
	{uint32(DeadStrippableDylib), "DEAD_STRIPPABLE_DYLIB"},
	{uint32(HasTLVDescriptors), "HAS_TLV_DESCRIPTORS"},
	{uint32(NoHeapExecution), "NO_HEAP_EXECUTION"},
	{uint32(AppExtensionSafe), "APP_EXTENSION_SAFE"},
	{uint32(NlistOutofsyncWithDyldinfo), "NLIST_OUTOFSYNC_WITH_DYLDINFO"},
	{uint32(SimSupport), "SIM_SUPPORT"},
	{uint32(DylibInCache), "DYLIB_IN_CACHE"},
}

// List expands the bitmask into its symbolic flag names, low bit first.
// Bits with no defined name are retained as hex literals rather than
// dropped.
func (f HeaderFlag) List() []string {
	var flags []string
	rest := uint32(f)
	for _, n := range headerFlagNames {
		if rest&n.I != 0 {
			flags = append(flags, n.S)
			rest &^= n.I
		}
	}
	// surviving bits have no defined name
	for bit := 0; bit < 32; bit++ {
		if rest&(1<<bit) != 0 {
			flags = append(flags, fmt.Sprintf("%#x", uint32(1)<<bit))
		}
	}
	return flags
}

func (f HeaderFlag) String() string {
	return strings.Join(f.List(), ", ")
}
