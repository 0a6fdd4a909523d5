package macho

import (
	"testing"

	"github.com/moscope/moscope/pkg/macho/types"
)

func TestClassifySection(t *testing.T) {
	type args struct {
		flags types.SectionFlag
		name  string
		seg   string
	}
	tests := []struct {
		name string
		args args
		want Kind
	}{
		{"text", args{types.S_ATTR_PURE_INSTRUCTIONS | types.S_ATTR_SOME_INSTRUCTIONS, "__text", "__TEXT"}, KindCode},
		{"pure instructions without the name", args{types.S_ATTR_PURE_INSTRUCTIONS, "__auth_stubs_x", "__TEXT"}, KindCode},
		{"stubs by type", args{types.S_SYMBOL_STUBS, "__stubs", "__TEXT"}, KindStub},
		{"stub helper by name", args{0, "__stub_helper", "__TEXT"}, KindStub},
		{"cstring", args{types.S_CSTRING_LITERALS, "__cstring", "__TEXT"}, KindCString},
		{"zerofill", args{types.S_ZEROFILL, "__bss", "__DATA"}, KindBss},
		{"common by name", args{0, "__common", "__DATA"}, KindBss},
		{"lazy symbol pointers", args{types.S_LAZY_SYMBOL_POINTERS, "__la_symbol_ptr", "__DATA"}, KindSymbolPointer},
		{"got by name", args{0, "__got", "__DATA_CONST"}, KindSymbolPointer},
		{"literals", args{types.S_4BYTE_LITERALS, "__literal4", "__TEXT"}, KindConstData},
		{"objc prefix beats const segment", args{0, "__objc_arraydata", "__DATA_CONST"}, KindObjC},
		{"const section", args{0, "__const", "__TEXT"}, KindConstData},
		{"data", args{0, "__data", "__DATA"}, KindData},
		{"gcc except tab", args{0, "__gcc_except_tab", "__TEXT"}, KindException},
		{"eh frame", args{0, "__eh_frame", "__TEXT"}, KindException},
		{"unwind info", args{0, "__unwind_info", "__TEXT"}, KindUnwind},
		{"objc classlist", args{0, "__objc_classlist", "__DATA_CONST"}, KindObjCMetadata},
		{"objc selrefs", args{0, "__objc_selrefs", "__DATA"}, KindObjCMetadata},
		{"objc payload", args{0, "__objc_data", "__DATA"}, KindObjC},
		{"mod init", args{types.S_MOD_INIT_FUNC_POINTERS, "__mod_init_func", "__DATA_CONST"}, KindOther},
		{"unmatched name", args{0, "__strange", "__WEIRD"}, KindOther},
		{"empty everything", args{0, "", ""}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySection(tt.args.flags, tt.args.name, tt.args.seg); got != tt.want {
				t.Errorf("ClassifySection() = %v, want %v", got, tt.want)
			}
		})
	}
}
