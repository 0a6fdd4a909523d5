package types

import "testing"

func TestCPUSubtypeString(t *testing.T) {
	type args struct {
		cpu CPU
		sub CPUSubtype
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{"arm64e via ptrauth bit", args{CPUArm64, 0x80000002}, "arm64e"},
		{"arm64e base value", args{CPUArm64, CPUSubtypeArm64E}, "arm64e"},
		{"arm64 all", args{CPUArm64, CPUSubtypeArm64All}, "arm64"},
		{"x86_64 all", args{CPUX86_64, CPUSubtypeX86All}, "x86_64"},
		{"x86_64h", args{CPUX86_64, CPUSubtypeX86_64H}, "x86_64h"},
		{"armv7", args{CPUArm, CPUSubtypeArmV7}, "ARMv7"},
		{"armv7 is not an arm64 subtype", args{CPUArm64, 9}, "0x9"},
		{"unknown cpu namespace", args{CPUPpc, 0}, "0x0"},
		{"lib64 bit masked before lookup", args{CPUX86_64, CPUSubtype(0x80000003)}, "x86_64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.args.sub.String(tt.args.cpu); got != tt.want {
				t.Errorf("CPUSubtype.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCPUIs64Bit(t *testing.T) {
	tests := []struct {
		name string
		cpu  CPU
		want bool
	}{
		{"arm64", CPUArm64, true},
		{"x86_64", CPUX86_64, true},
		{"arm", CPUArm, false},
		{"i386", CPUI386, false},
		{"arm64_32 uses 32-bit pointers", CPUArm64_32, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cpu.Is64Bit(); got != tt.want {
				t.Errorf("Is64Bit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeaderFlagList(t *testing.T) {
	tests := []struct {
		name string
		flag HeaderFlag
		want []string
	}{
		{
			name: "typical executable",
			flag: NoUndefs | DyldLink | TwoLevel | BindsToWeak | PIE,
			want: []string{"NOUNDEFS", "DYLDLINK", "TWOLEVEL", "BINDS_TO_WEAK", "PIE"},
		},
		{
			name: "unnamed bits kept as hex",
			flag: NoUndefs | 0x40000000,
			want: []string{"NOUNDEFS", "0x40000000"},
		},
		{
			name: "empty",
			flag: 0,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.flag.List()
			if len(got) != len(tt.want) {
				t.Fatalf("List() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("List()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		name string
		v    Version
		want string
	}{
		{"packed", Version(0x00010203), "1.2.3"},
		{"major only", Version(0x000d0000), "13.0.0"},
		{"zero", Version(0), "0.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("Version.String() = %q, want %q", got, tt.want)
			}
		})
	}
}
