package oleread

// ========================================================================= //

const (
	HEADER_LEN                  int = 512 // length of CFB file header, in bytes
	SECTOR_LEN                  int = 512 // classic (version 3) sector length
	MINI_SECTOR_LEN             int = 64  // SECTOR_LEN / 8
	DIR_ENTRY_LEN               int = 128 // length of directory entry, in bytes
	NUM_DIFAT_ENTRIES_IN_HEADER int = 109
	LINKS_PER_SECTOR            int = SECTOR_LEN / 4
	DIFAT_SLOTS_PER_SECTOR      int = LINKS_PER_SECTOR - 1 // last slot points to the next DIFAT sector
)

// Constants for CFB file header values:
var MAGIC_NUMBER = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

const (
	MINOR_VERSION      uint16 = 0x3e
	BYTE_ORDER_MARK    uint16 = 0xfffe
	SECTOR_SHIFT       uint16 = 9
	MINI_SECTOR_SHIFT  uint16 = 6
	MINI_STREAM_CUTOFF int32  = 4096
)

// Header field offsets.
const (
	NUM_FAT_SECTORS_POS     = 0x2c
	FIRST_DIR_SECTOR_POS    = 0x30
	FIRST_MINIFAT_POS       = 0x3c
	NUM_MINIFAT_SECTORS_POS = 0x40
	FIRST_DIFAT_SECTOR_POS  = 0x44
	NUM_DIFAT_SECTORS_POS   = 0x48
	INLINE_DIFAT_POS        = 0x4c
)

// Directory entry field offsets.
const (
	NAME_LEN_POS     = 0x40
	OBJ_TYPE_POS     = 0x42
	START_SECTOR_POS = 0x74
	STREAM_SIZE_POS  = 0x78
	MAX_NAME_LEN     = 64 // bytes, including the UTF-16 terminator
)

// Raw FAT entry values. Anything at or above MAX_INT4D is folded into
// END_OF_CHAIN when decoded.
const (
	MAX_REGULAR_SECTOR uint32 = 0xfffffffa
	INVALID_SECTOR     uint32 = 0xfffffffb
	DIFAT_SECTOR       uint32 = 0xfffffffc
	FAT_SECTOR         uint32 = 0xfffffffd
	MAX_INT4D          uint32 = 0xfffffffe
	FREE_SECTOR        uint32 = 0xffffffff

	END_OF_CHAIN int32 = -2
)

// Constants for directory entries:
const (
	ROOT_DIR_NAME                = "Root Entry"
	OBJ_TYPE_UNALLOCATED  uint8  = 0
	OBJ_TYPE_STORAGE      uint8  = 1
	OBJ_TYPE_STREAM       uint8  = 2
	OBJ_TYPE_LOCKBYTES    uint8  = 3
	OBJ_TYPE_PROPERTY     uint8  = 4
	OBJ_TYPE_ROOT         uint8  = 5
	COLOR_RED             uint8  = 0
	COLOR_BLACK           uint8  = 1
	MAX_REGULAR_STREAM_ID uint32 = 0xfffffffa
	NO_STREAM             uint32 = 0xffffffff
)

// Names under which legacy spreadsheets store their BIFF record stream.
var WORKBOOK_NAMES = []string{"Workbook", "Book"}
