package types

// NLType is the type byte of an nlist symbol table entry:
//
//	N_STAB (0xe0) | N_PEXT (0x10) | N_TYPE (0x0e) | N_EXT (0x01)
type NLType uint8

const (
	N_STAB NLType = 0xe0
	N_PEXT NLType = 0x10
	N_TYPE NLType = 0x0e
	N_EXT  NLType = 0x01
)

// N_TYPE values.
const (
	N_UNDF NLType = 0x0
	N_ABS  NLType = 0x2
	N_SECT NLType = 0xe
	N_PBUD NLType = 0xc
	N_INDR NLType = 0xa
)

// IsDebugSym reports whether any stab bit is set, marking a debugging
// entry whose whole type byte is a stab code.
func (t NLType) IsDebugSym() bool { return t&N_STAB != 0 }

// IsExternalSym reports whether the symbol is visible to other images.
func (t NLType) IsExternalSym() bool { return t&N_EXT != 0 }

// IsPrivateExternalSym reports whether the symbol is external but limited
// in visibility.
func (t NLType) IsPrivateExternalSym() bool { return t&N_PEXT != 0 }

func (t NLType) IsUndefinedSym() bool         { return t&N_TYPE == N_UNDF }
func (t NLType) IsAbsoluteSym() bool          { return t&N_TYPE == N_ABS }
func (t NLType) IsDefinedInSection() bool     { return t&N_TYPE == N_SECT }
func (t NLType) IsPreboundUndefinedSym() bool { return t&N_TYPE == N_PBUD }
func (t NLType) IsIndirectSym() bool          { return t&N_TYPE == N_INDR }

// NO_SECT is the section index of symbols not defined in any section.
const NO_SECT = 0
