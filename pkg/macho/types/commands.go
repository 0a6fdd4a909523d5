package types

// LC_REQ_DYLD is or'd into a load command identifier when dyld must refuse
// to load the image if it does not understand the command.
const LC_REQ_DYLD uint32 = 0x80000000

// A LoadCmd is a Mach-O load command identifier.
type LoadCmd uint32

const (
	LC_SEGMENT                  LoadCmd = 0x1
	LC_SYMTAB                   LoadCmd = 0x2
	LC_SYMSEG                   LoadCmd = 0x3
	LC_THREAD                   LoadCmd = 0x4
	LC_UNIXTHREAD               LoadCmd = 0x5
	LC_LOADFVMLIB               LoadCmd = 0x6
	LC_IDFVMLIB                 LoadCmd = 0x7
	LC_IDENT                    LoadCmd = 0x8
	LC_FVMFILE                  LoadCmd = 0x9
	LC_PREPAGE                  LoadCmd = 0xa
	LC_DYSYMTAB                 LoadCmd = 0xb
	LC_LOAD_DYLIB               LoadCmd = 0xc
	LC_ID_DYLIB                 LoadCmd = 0xd
	LC_LOAD_DYLINKER            LoadCmd = 0xe
	LC_ID_DYLINKER              LoadCmd = 0xf
	LC_PREBOUND_DYLIB           LoadCmd = 0x10
	LC_ROUTINES                 LoadCmd = 0x11
	LC_SUB_FRAMEWORK            LoadCmd = 0x12
	LC_SUB_UMBRELLA             LoadCmd = 0x13
	LC_SUB_CLIENT               LoadCmd = 0x14
	LC_SUB_LIBRARY              LoadCmd = 0x15
	LC_TWOLEVEL_HINTS           LoadCmd = 0x16
	LC_PREBIND_CKSUM            LoadCmd = 0x17
	LC_LOAD_WEAK_DYLIB          LoadCmd = LoadCmd(0x18 | LC_REQ_DYLD)
	LC_SEGMENT_64               LoadCmd = 0x19
	LC_ROUTINES_64              LoadCmd = 0x1a
	LC_UUID                     LoadCmd = 0x1b
	LC_RPATH                    LoadCmd = LoadCmd(0x1c | LC_REQ_DYLD)
	LC_CODE_SIGNATURE           LoadCmd = 0x1d
	LC_SEGMENT_SPLIT_INFO       LoadCmd = 0x1e
	LC_REEXPORT_DYLIB           LoadCmd = LoadCmd(0x1f | LC_REQ_DYLD)
	LC_LAZY_LOAD_DYLIB          LoadCmd = 0x20
	LC_ENCRYPTION_INFO          LoadCmd = 0x21
	LC_DYLD_INFO                LoadCmd = 0x22
	LC_DYLD_INFO_ONLY           LoadCmd = LoadCmd(0x22 | LC_REQ_DYLD)
	LC_LOAD_UPWARD_DYLIB        LoadCmd = LoadCmd(0x23 | LC_REQ_DYLD)
	LC_VERSION_MIN_MACOSX       LoadCmd = 0x24
	LC_VERSION_MIN_IPHONEOS     LoadCmd = 0x25
	LC_FUNCTION_STARTS          LoadCmd = 0x26
	LC_DYLD_ENVIRONMENT         LoadCmd = 0x27
	LC_MAIN                     LoadCmd = LoadCmd(0x28 | LC_REQ_DYLD)
	LC_DATA_IN_CODE             LoadCmd = 0x29
	LC_SOURCE_VERSION           LoadCmd = 0x2a
	LC_DYLIB_CODE_SIGN_DRS      LoadCmd = 0x2b
	LC_ENCRYPTION_INFO_64       LoadCmd = 0x2c
	LC_LINKER_OPTION            LoadCmd = 0x2d
	LC_LINKER_OPTIMIZATION_HINT LoadCmd = 0x2e
	LC_VERSION_MIN_TVOS         LoadCmd = 0x2f
	LC_VERSION_MIN_WATCHOS      LoadCmd = 0x30
	LC_NOTE                     LoadCmd = 0x31
	LC_BUILD_VERSION            LoadCmd = 0x32
	LC_DYLD_EXPORTS_TRIE        LoadCmd = LoadCmd(0x33 | LC_REQ_DYLD)
	LC_DYLD_CHAINED_FIXUPS      LoadCmd = LoadCmd(0x34 | LC_REQ_DYLD)
	LC_FILESET_ENTRY            LoadCmd = LoadCmd(0x35 | LC_REQ_DYLD)
	LC_ATOM_INFO                LoadCmd = 0x36
	LC_FUNCTION_VARIANTS        LoadCmd = 0x37
	LC_FUNCTION_VARIANT_FIXUPS  LoadCmd = 0x38
	LC_TARGET_TRIPLE            LoadCmd = 0x39
)

var cmdStrings = []IntName{
	{uint32(LC_SEGMENT), "LC_SEGMENT"},
	{uint32(LC_SYMTAB), "LC_SYMTAB"},
	{uint32(LC_SYMSEG), "LC_SYMSEG"},
	{uint32(LC_THREAD), "LC_THREAD"},
	{uint32(LC_UNIXTHREAD), "LC_UNIXTHREAD"},
	{uint32(LC_LOADFVMLIB), "LC_LOADFVMLIB"},
	{uint32(LC_IDFVMLIB), "LC_IDFVMLIB"},
	{uint32(LC_IDENT), "LC_IDENT"},
	{uint32(LC_FVMFILE), "LC_FVMFILE"},
	{uint32(LC_PREPAGE), "LC_PREPAGE"},
	{uint32(LC_DYSYMTAB), "LC_DYSYMTAB"},
	{uint32(LC_LOAD_DYLIB), "LC_LOAD_DYLIB"},
	{uint32(LC_ID_DYLIB), "LC_ID_DYLIB"},
	{uint32(LC_LOAD_DYLINKER), "LC_LOAD_DYLINKER"},
	{uint32(LC_ID_DYLINKER), "LC_ID_DYLINKER"},
	{uint32(LC_PREBOUND_DYLIB), "LC_PREBOUND_DYLIB"},
	{uint32(LC_ROUTINES), "LC_ROUTINES"},
	{uint32(LC_SUB_FRAMEWORK), "LC_SUB_FRAMEWORK"},
	{uint32(LC_SUB_UMBRELLA), "LC_SUB_UMBRELLA"},
	{uint32(LC_SUB_CLIENT), "LC_SUB_CLIENT"},
	{uint32(LC_SUB_LIBRARY), "LC_SUB_LIBRARY"},
	{uint32(LC_TWOLEVEL_HINTS), "LC_TWOLEVEL_HINTS"},
	{uint32(LC_PREBIND_CKSUM), "LC_PREBIND_CKSUM"},
	{uint32(LC_LOAD_WEAK_DYLIB), "LC_LOAD_WEAK_DYLIB"},
	{uint32(LC_SEGMENT_64), "LC_SEGMENT_64"},
	{uint32(LC_ROUTINES_64), "LC_ROUTINES_64"},
	{uint32(LC_UUID), "LC_UUID"},
	{uint32(LC_RPATH), "LC_RPATH"},
	{uint32(LC_CODE_SIGNATURE), "LC_CODE_SIGNATURE"},
	{uint32(LC_SEGMENT_SPLIT_INFO), "LC_SEGMENT_SPLIT_INFO"},
	{uint32(LC_REEXPORT_DYLIB), "LC_REEXPORT_DYLIB"},
	{uint32(LC_LAZY_LOAD_DYLIB), "LC_LAZY_LOAD_DYLIB"},
	{uint32(LC_ENCRYPTION_INFO), "LC_ENCRYPTION_INFO"},
	{uint32(LC_DYLD_INFO), "LC_DYLD_INFO"},
	{uint32(LC_DYLD_INFO_ONLY), "LC_DYLD_INFO_ONLY"},
	{uint32(LC_LOAD_UPWARD_DYLIB), "LC_LOAD_UPWARD_DYLIB"},
	{uint32(LC_VERSION_MIN_MACOSX), "LC_VERSION_MIN_MACOSX"},
	{uint32(LC_VERSION_MIN_IPHONEOS), "LC_VERSION_MIN_IPHONEOS"},
	{uint32(LC_FUNCTION_STARTS), "LC_FUNCTION_STARTS"},
	{uint32(LC_DYLD_ENVIRONMENT), "LC_DYLD_ENVIRONMENT"},
	{uint32(LC_MAIN), "LC_MAIN"},
	{uint32(LC_DATA_IN_CODE), "LC_DATA_IN_CODE"},
	{uint32(LC_SOURCE_VERSION), "LC_SOURCE_VERSION"},
	{uint32(LC_DYLIB_CODE_SIGN_DRS), "LC_DYLIB_CODE_SIGN_DRS"},
	{uint32(LC_ENCRYPTION_INFO_64), "LC_ENCRYPTION_INFO_64"},
	{uint32(LC_LINKER_OPTION), "LC_LINKER_OPTION"},
	{uint32(LC_LINKER_OPTIMIZATION_HINT), "LC_LINKER_OPTIMIZATION_HINT"},
	{uint32(LC_VERSION_MIN_TVOS), "LC_VERSION_MIN_TVOS"},
	{uint32(LC_VERSION_MIN_WATCHOS), "LC_VERSION_MIN_WATCHOS"},
	{uint32(LC_NOTE), "LC_NOTE"},
	{uint32(LC_BUILD_VERSION), "LC_BUILD_VERSION"},
	{uint32(LC_DYLD_EXPORTS_TRIE), "LC_DYLD_EXPORTS_TRIE"},
	{uint32(LC_DYLD_CHAINED_FIXUPS), "LC_DYLD_CHAINED_FIXUPS"},
	{uint32(LC_FILESET_ENTRY), "LC_FILESET_ENTRY"},
	{uint32(LC_ATOM_INFO), "LC_ATOM_INFO"},
	{uint32(LC_FUNCTION_VARIANTS), "LC_FUNCTION_VARIANTS"},
	{uint32(LC_FUNCTION_VARIANT_FIXUPS), "LC_FUNCTION_VARIANT_FIXUPS"},
	{uint32(LC_TARGET_TRIPLE), "LC_TARGET_TRIPLE"},
}

// IsKnown reports whether the identifier has a decoder-visible name.
func (c LoadCmd) IsKnown() bool {
	for _, n := range cmdStrings {
		if n.I == uint32(c) {
			return true
		}
	}
	return false
}

func (c LoadCmd) String() string {
	for _, n := range cmdStrings {
		if n.I == uint32(c) {
			return n.S
		}
	}
	// an unnamed id with the dyld bit set may still have a named base
	if base := uint32(c) &^ LC_REQ_DYLD; base != uint32(c) {
		for _, n := range cmdStrings {
			if n.I == base {
				return n.S
			}
		}
	}
	return "UNKNOWN_LOAD_COMMAND"
}

func (c LoadCmd) GoString() string { return StringName(uint32(c), cmdStrings, true) }
