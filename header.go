package oleread

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// Header holds the header fields needed to locate the allocation tables
// and the directory.
type Header struct {
	Version            Version
	NumFatSectors      int32
	FirstDirSector     int32
	FirstMinifatSector int32
	NumMinifatSectors  int32
	FirstDifatSector   int32
	NumDifatSectors    int32
}

// headerFields mirrors the full on-disk header. It is only consulted for
// consistency checks.
type headerFields struct {
	Signature            [8]byte
	CLSID                [16]byte
	MinorVersion         uint16
	MajorVersion         uint16
	ByteOrder            uint16
	SectorShift          uint16
	MiniSectorShift      uint16
	Reserved             [6]byte
	NumDirSectors        uint32
	NumFatSectors        uint32
	FirstDirSector       uint32
	TransactionSignature uint32
	MiniStreamCutoff     uint32
	FirstMinifatSector   uint32
	NumMinifatSectors    uint32
	FirstDifatSector     uint32
	NumDifatSectors      uint32
	InitialDifat         [NUM_DIFAT_ENTRIES_IN_HEADER]uint32
}

func parseHeader(buf []byte, validation Validation) (*Header, error) {
	if len(buf) == 0 {
		return nil, ErrorNoContent
	}

	if len(buf) < len(MAGIC_NUMBER) || !bytes.Equal(buf[:len(MAGIC_NUMBER)], MAGIC_NUMBER) {
		return nil, ErrorInvalidCFB
	}

	if len(buf) < HEADER_LEN {
		return nil, fmt.Errorf("file is too small for a header (%v bytes): %w", len(buf), ErrorCorrupt)
	}

	fields := headerFields{}
	if err := restruct.Unpack(buf[:HEADER_LEN], binary.LittleEndian, &fields); err != nil {
		return nil, fmt.Errorf("decoding header: %v: %w", err, ErrorInvalidCFB)
	}

	version, err := VersionNumber(fields.MajorVersion)
	if err != nil && validation.IsStrict() {
		return nil, err
	}

	if validation.IsStrict() {
		if err := fields.validate(version); err != nil {
			return nil, err
		}
	}

	header := &Header{Version: version}
	for _, field := range []struct {
		pos int
		dst *int32
	}{
		{NUM_FAT_SECTORS_POS, &header.NumFatSectors},
		{FIRST_DIR_SECTOR_POS, &header.FirstDirSector},
		{FIRST_MINIFAT_POS, &header.FirstMinifatSector},
		{NUM_MINIFAT_SECTORS_POS, &header.NumMinifatSectors},
		{FIRST_DIFAT_SECTOR_POS, &header.FirstDifatSector},
		{NUM_DIFAT_SECTORS_POS, &header.NumDifatSectors},
	} {
		*field.dst, err = readInt4d(buf, field.pos)
		if err != nil {
			return nil, err
		}
	}

	logger.Debugf("header: version=%v fat=%v dir=%v minifat=%v/%v difat=%v/%v",
		header.Version, header.NumFatSectors, header.FirstDirSector,
		header.FirstMinifatSector, header.NumMinifatSectors,
		header.FirstDifatSector, header.NumDifatSectors)

	return header, nil
}

func (h *headerFields) validate(version Version) error {
	if h.ByteOrder != BYTE_ORDER_MARK {
		return fmt.Errorf("invalid CFB byte order mark (expected %#04x, found %#04x): %w", BYTE_ORDER_MARK, h.ByteOrder, ErrorInvalidCFB)
	}

	if !version.Supported() {
		return fmt.Errorf("unsupported CFB version %v (sector length %v): %w", version, version.SectorLen(), ErrorInvalidCFB)
	}

	if h.SectorShift != version.SectorShift() {
		return fmt.Errorf("incorrect sector shift for CFB version %v (expected %v, found %v): %w", version, version.SectorShift(), h.SectorShift, ErrorInvalidCFB)
	}

	if h.MiniSectorShift != MINI_SECTOR_SHIFT {
		return fmt.Errorf("incorrect mini sector shift (expected %v, found %v): %w", MINI_SECTOR_SHIFT, h.MiniSectorShift, ErrorInvalidCFB)
	}

	if h.MiniStreamCutoff != uint32(MINI_STREAM_CUTOFF) {
		return fmt.Errorf("incorrect mini stream cutoff (expected %v, found %v): %w", MINI_STREAM_CUTOFF, h.MiniStreamCutoff, ErrorInvalidCFB)
	}

	return nil
}
