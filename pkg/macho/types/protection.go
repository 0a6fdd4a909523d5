package types

// VmProtection is a segment protection bitmask.
type VmProtection int32

const (
	VM_PROT_READ    VmProtection = 0x1
	VM_PROT_WRITE   VmProtection = 0x2
	VM_PROT_EXECUTE VmProtection = 0x4
)

func (v VmProtection) Read() bool { return v&VM_PROT_READ != 0 }

func (v VmProtection) Write() bool { return v&VM_PROT_WRITE != 0 }

func (v VmProtection) Execute() bool { return v&VM_PROT_EXECUTE != 0 }

// String renders the protections as an "rwx" triplet, e.g. "r-x".
func (v VmProtection) String() string {
	var p string
	if v.Read() {
		p = "r"
	} else {
		p = "-"
	}
	if v.Write() {
		p += "w"
	} else {
		p += "-"
	}
	if v.Execute() {
		p += "x"
	} else {
		p += "-"
	}
	return p
}
