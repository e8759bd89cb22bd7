package oleread

import (
	"encoding/binary"
	"fmt"
)

// SectorID addresses a 512-byte sector of the container. Sector 0 starts
// right after the header.
type SectorID uint32

// MiniSectorID addresses a 64-byte mini sector inside the root entry's
// mini stream.
type MiniSectorID uint32

// Offset returns the absolute byte offset of the sector in the file.
func (id SectorID) Offset() int {
	return (int(id) + 1) * SECTOR_LEN
}

// Offset returns the byte offset of the mini sector within the mini stream.
func (id MiniSectorID) Offset() int {
	return int(id) * MINI_SECTOR_LEN
}

// readInt4d reads a little-endian 32-bit value at pos. Raw values in the
// end-of-chain/free range come back as END_OF_CHAIN.
func readInt4d(buf []byte, pos int) (int32, error) {
	if pos < 0 || pos+4 > len(buf) {
		return 0, fmt.Errorf("int32 at offset %v is past the end of %v bytes: %w", pos, len(buf), ErrorCorrupt)
	}

	return foldInt4d(binary.LittleEndian.Uint32(buf[pos : pos+4])), nil
}

// foldInt4d maps a raw 32-bit field to its signed value, with everything at
// or above MAX_INT4D read as END_OF_CHAIN.
func foldInt4d(value uint32) int32 {
	if value >= MAX_INT4D {
		return END_OF_CHAIN
	}
	return int32(value)
}

// Sectors gives bounds-checked access to the sectors of a container buffer.
// Returned slices alias the buffer and must not be modified.
type Sectors struct {
	NumSectors uint32
	Validation Validation

	buf []byte
}

func NewSectors(buf []byte, validation Validation) *Sectors {
	numSectors := 0
	if len(buf) > HEADER_LEN {
		numSectors = (len(buf) - HEADER_LEN + SECTOR_LEN - 1) / SECTOR_LEN
	}

	return &Sectors{
		NumSectors: uint32(numSectors),
		Validation: validation,
		buf:        buf,
	}
}

// Sector returns the bytes of the given sector. In permissive mode a short
// final sector is returned as-is.
func (s *Sectors) Sector(id SectorID) ([]byte, error) {
	if uint32(id) >= s.NumSectors {
		return nil, fmt.Errorf("tried to read sector %v, but sector count is only %v: %w", id, s.NumSectors, ErrorCorrupt)
	}

	start := id.Offset()
	end := start + SECTOR_LEN
	if end > len(s.buf) {
		if s.Validation.IsStrict() {
			return nil, fmt.Errorf("sector %v is truncated at %v bytes: %w", id, len(s.buf)-start, ErrorCorrupt)
		}
		end = len(s.buf)
	}

	return s.buf[start:end], nil
}

// decodeLinks reinterprets a sector as its chain entries. A short sector
// yields only the entries it fully contains.
func decodeLinks(sector []byte, links []Link) ([]Link, error) {
	for pos := 0; pos+4 <= len(sector); pos += 4 {
		value, err := readInt4d(sector, pos)
		if err != nil {
			return nil, err
		}
		links = append(links, linkFromInt4d(value))
	}

	return links, nil
}
