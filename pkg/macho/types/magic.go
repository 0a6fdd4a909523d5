package types

// Magic is the first 32-bit word of a Mach-O or fat file. The value alone
// encodes both the word size of the image and whether the file was written
// in the reader's byte order: the CIGAM forms are the byte-swapped MAGIC
// forms as seen from the opposite endianness.
type Magic uint32

const (
	Magic32    Magic = 0xfeedface /* MH_MAGIC */
	Cigam32    Magic = 0xcefaedfe /* MH_CIGAM, NXSwapInt(MH_MAGIC) */
	Magic64    Magic = 0xfeedfacf /* MH_MAGIC_64 */
	Cigam64    Magic = 0xcffaedfe /* MH_CIGAM_64 */
	MagicFat   Magic = 0xcafebabe /* FAT_MAGIC */
	CigamFat   Magic = 0xbebafeca /* FAT_CIGAM */
	MagicFat64 Magic = 0xcafebabf /* FAT_MAGIC_64 */
	CigamFat64 Magic = 0xbfbafeca /* FAT_CIGAM_64 */
)

var magicStrings = []IntName{
	{uint32(Magic32), "32-bit MachO"},
	{uint32(Cigam32), "32-bit MachO (byte-swapped)"},
	{uint32(Magic64), "64-bit MachO"},
	{uint32(Cigam64), "64-bit MachO (byte-swapped)"},
	{uint32(MagicFat), "Fat MachO"},
	{uint32(CigamFat), "Fat MachO (byte-swapped)"},
	{uint32(MagicFat64), "Fat64 MachO"},
	{uint32(CigamFat64), "Fat64 MachO (byte-swapped)"},
}

func (m Magic) Int() uint32      { return uint32(m) }
func (m Magic) String() string   { return StringName(uint32(m), magicStrings, false) }
func (m Magic) GoString() string { return StringName(uint32(m), magicStrings, true) }
