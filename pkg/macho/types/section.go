package types

// SectionFlag is the raw flags word of a section: an 8-bit type in the low
// byte plus attribute bits above it.
type SectionFlag uint32

const (
	SectionType       uint32 = 0x000000ff
	SectionAttributes uint32 = 0xffffff00
)

// Section types (low byte of flags).
const (
	S_REGULAR                             SectionFlag = 0x0
	S_ZEROFILL                            SectionFlag = 0x1
	S_CSTRING_LITERALS                    SectionFlag = 0x2
	S_4BYTE_LITERALS                      SectionFlag = 0x3
	S_8BYTE_LITERALS                      SectionFlag = 0x4
	S_LITERAL_POINTERS                    SectionFlag = 0x5
	S_NON_LAZY_SYMBOL_POINTERS            SectionFlag = 0x6
	S_LAZY_SYMBOL_POINTERS                SectionFlag = 0x7
	S_SYMBOL_STUBS                        SectionFlag = 0x8
	S_MOD_INIT_FUNC_POINTERS              SectionFlag = 0x9
	S_MOD_TERM_FUNC_POINTERS              SectionFlag = 0xa
	S_COALESCED                           SectionFlag = 0xb
	S_GB_ZEROFILL                         SectionFlag = 0xc
	S_INTERPOSING                         SectionFlag = 0xd
	S_16BYTE_LITERALS                     SectionFlag = 0xe
	S_DTRACE_DOF                          SectionFlag = 0xf
	S_LAZY_DYLIB_SYMBOL_POINTERS          SectionFlag = 0x10
	S_THREAD_LOCAL_REGULAR                SectionFlag = 0x11
	S_THREAD_LOCAL_ZEROFILL               SectionFlag = 0x12
	S_THREAD_LOCAL_VARIABLES              SectionFlag = 0x13
	S_THREAD_LOCAL_VARIABLE_POINTERS      SectionFlag = 0x14
	S_THREAD_LOCAL_INIT_FUNCTION_POINTERS SectionFlag = 0x15
	S_INIT_FUNC_OFFSETS                   SectionFlag = 0x16
)

// Section attributes.
const (
	S_ATTR_PURE_INSTRUCTIONS   SectionFlag = 0x80000000
	S_ATTR_NO_TOC              SectionFlag = 0x40000000
	S_ATTR_STRIP_STATIC_SYMS   SectionFlag = 0x20000000
	S_ATTR_NO_DEAD_STRIP       SectionFlag = 0x10000000
	S_ATTR_LIVE_SUPPORT        SectionFlag = 0x08000000
	S_ATTR_SELF_MODIFYING_CODE SectionFlag = 0x04000000
	S_ATTR_DEBUG               SectionFlag = 0x02000000
	S_ATTR_SOME_INSTRUCTIONS   SectionFlag = 0x00000400
	S_ATTR_EXT_RELOC           SectionFlag = 0x00000200
	S_ATTR_LOC_RELOC           SectionFlag = 0x00000100
)

// Type strips the attribute bits.
func (f SectionFlag) Type() SectionFlag {
	return f & SectionFlag(SectionType)
}

// Attributes strips the type byte.
func (f SectionFlag) Attributes() SectionFlag {
	return f & SectionFlag(SectionAttributes)
}

func (f SectionFlag) IsCstringLiterals() bool {
	return f.Type() == S_CSTRING_LITERALS
}

func (f SectionFlag) IsZerofill() bool {
	t := f.Type()
	return t == S_ZEROFILL || t == S_GB_ZEROFILL || t == S_THREAD_LOCAL_ZEROFILL
}

func (f SectionFlag) IsSymbolPointers() bool {
	t := f.Type()
	return t == S_LAZY_SYMBOL_POINTERS || t == S_NON_LAZY_SYMBOL_POINTERS || t == S_LAZY_DYLIB_SYMBOL_POINTERS
}

func (f SectionFlag) IsSymbolStubs() bool {
	return f.Type() == S_SYMBOL_STUBS
}

func (f SectionFlag) IsLiterals() bool {
	t := f.Type()
	return t == S_4BYTE_LITERALS || t == S_8BYTE_LITERALS || t == S_16BYTE_LITERALS || t == S_LITERAL_POINTERS
}

func (f SectionFlag) IsPureInstructions() bool {
	return f&S_ATTR_PURE_INSTRUCTIONS != 0
}

func (f SectionFlag) IsDebug() bool {
	return f&S_ATTR_DEBUG != 0
}

// Well known segment names.
const (
	SegPagezero  = "__PAGEZERO"
	SegText      = "__TEXT"
	SegData      = "__DATA"
	SegDataConst = "__DATA_CONST"
	SegLinkedit  = "__LINKEDIT"
)
