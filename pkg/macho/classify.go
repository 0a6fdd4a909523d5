package macho

import (
	"strings"

	"github.com/moscope/moscope/pkg/macho/types"
)

// Kind is the semantic classification of a section.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindCode
	KindStub
	KindData
	KindBss
	KindCString
	KindConstData
	KindSymbolPointer
	KindException
	KindUnwind
	KindObjC
	KindObjCMetadata
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "Code"
	case KindStub:
		return "Stub"
	case KindData:
		return "Data"
	case KindBss:
		return "Bss"
	case KindCString:
		return "CString"
	case KindConstData:
		return "ConstData"
	case KindSymbolPointer:
		return "SymbolPointer"
	case KindException:
		return "Exception"
	case KindUnwind:
		return "Unwind"
	case KindObjC:
		return "ObjC"
	case KindObjCMetadata:
		return "ObjCMetadata"
	case KindOther:
		return "Other"
	}
	return "Unknown"
}

// A classifyRule is one independent predicate in the ordered rule table.
type classifyRule struct {
	match func(flags types.SectionFlag, name, seg string) bool
	kind  Kind
}

// classifyRules resolves the overlapping signals (type code, attributes,
// name, segment) in priority order: explicit type codes first, well-known
// name/segment combinations second, then catch-alls. First match wins.
var classifyRules = []classifyRule{
	// 1. explicit section type codes
	{func(f types.SectionFlag, _, _ string) bool { return f.IsCstringLiterals() }, KindCString},
	{func(f types.SectionFlag, _, _ string) bool { return f.IsZerofill() }, KindBss},
	{func(f types.SectionFlag, _, _ string) bool { return f.IsSymbolStubs() }, KindStub},
	{func(f types.SectionFlag, _, _ string) bool { return f.IsSymbolPointers() }, KindSymbolPointer},
	{func(f types.SectionFlag, _, _ string) bool { return f.IsLiterals() }, KindConstData},
	{func(f types.SectionFlag, _, _ string) bool { return f.Type() == types.S_COALESCED }, KindData},
	{func(f types.SectionFlag, _, _ string) bool {
		t := f.Type()
		return t == types.S_MOD_INIT_FUNC_POINTERS || t == types.S_MOD_TERM_FUNC_POINTERS || t == types.S_INIT_FUNC_OFFSETS
	}, KindOther},

	// 2. well-known name/segment combinations
	{func(_ types.SectionFlag, name, _ string) bool { return name == "__text" }, KindCode},
	{func(f types.SectionFlag, _, _ string) bool { return f.IsPureInstructions() }, KindCode},
	{func(_ types.SectionFlag, name, _ string) bool {
		return name == "__stubs" || name == "__stub_helper" || name == "__picsymbol_stub"
	}, KindStub},
	{func(_ types.SectionFlag, name, _ string) bool {
		return name == "__got" || name == "__la_symbol_ptr" || name == "__nl_symbol_ptr" || name == "__auth_got"
	}, KindSymbolPointer},
	{func(_ types.SectionFlag, name, _ string) bool {
		return name == "__unwind_info" || name == "__compact_unwind"
	}, KindUnwind},
	{func(_ types.SectionFlag, name, _ string) bool {
		return name == "__gcc_except_tab" || name == "__eh_frame"
	}, KindException},
	{func(_ types.SectionFlag, name, _ string) bool {
		switch name {
		case "__objc_classlist", "__objc_nlclslist", "__objc_catlist", "__objc_nlcatlist",
			"__objc_protolist", "__objc_imageinfo", "__objc_selrefs", "__objc_classrefs",
			"__objc_superrefs", "__objc_protorefs":
			return true
		}
		return false
	}, KindObjCMetadata},
	{func(_ types.SectionFlag, name, _ string) bool { return strings.HasPrefix(name, "__objc_") }, KindObjC},
	{func(_ types.SectionFlag, name, _ string) bool { return name == "__bss" || name == "__common" }, KindBss},
	{func(_ types.SectionFlag, name, seg string) bool {
		return name == "__const" || seg == types.SegDataConst
	}, KindConstData},
	{func(_ types.SectionFlag, name, seg string) bool {
		return name == "__data" && (seg == types.SegData || seg == types.SegDataConst)
	}, KindData},

	// 3. catch-alls
	{func(_ types.SectionFlag, name, _ string) bool { return name != "" }, KindOther},
}

// ClassifySection derives a semantic Kind from a section's raw flags, its
// name, and its owning segment name. The function is total: any input
// resolves to a Kind, with KindUnknown only when no rule applies at all.
func ClassifySection(flags types.SectionFlag, name, seg string) Kind {
	for _, r := range classifyRules {
		if r.match(flags, name, seg) {
			return r.kind
		}
	}
	return KindUnknown
}
