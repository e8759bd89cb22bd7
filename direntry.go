package oleread

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-restruct/restruct"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
)

// DirEntry is one 128-byte directory record.
type DirEntry struct {
	// Name is the on-disk UTF-16 name with its zero bytes removed.
	Name string
	// DisplayName is the same name decoded as UTF-16LE.
	DisplayName    string
	ObjType        ObjectType
	Color          Color
	LeftSibling    uint32
	RightSibling   uint32
	Child          uint32
	CLSID          uuid.UUID
	StateBits      uint32
	CreationTime   uint64
	ModifiedTime   uint64
	StartingSector int32
	StreamSize     int32
}

type rawDirEntry struct {
	Name           [MAX_NAME_LEN]byte
	NameLen        uint16
	ObjType        uint8
	Color          uint8
	LeftSibling    uint32
	RightSibling   uint32
	Child          uint32
	CLSID          [16]byte
	StateBits      uint32
	CreationTime   uint64
	ModifiedTime   uint64
	StartingSector uint32
	StreamSizeLow  uint32
	StreamSizeHigh uint32
}

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func ReadDirEntry(record []byte, validation Validation) (*DirEntry, error) {
	if len(record) < DIR_ENTRY_LEN {
		return nil, fmt.Errorf("directory record is %v bytes: %w", len(record), ErrorCorrupt)
	}

	raw := rawDirEntry{}
	if err := restruct.Unpack(record[:DIR_ENTRY_LEN], binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("decoding directory record: %v: %w", err, ErrorCorrupt)
	}

	nameLen := raw.NameLen
	if int(nameLen) > MAX_NAME_LEN {
		if validation.IsStrict() {
			return nil, fmt.Errorf("directory entry name length %v exceeds %v bytes: %w", nameLen, MAX_NAME_LEN, ErrorCorrupt)
		}
		nameLen = uint16(MAX_NAME_LEN)
	}
	nameBytes := raw.Name[:nameLen]

	dir := DirEntry{
		Name:           string(bytes.ReplaceAll(nameBytes, []byte{0}, nil)),
		DisplayName:    decodeName(nameBytes),
		ObjType:        ObjectFromByte(raw.ObjType),
		Color:          ColorFromByte(raw.Color),
		LeftSibling:    raw.LeftSibling,
		RightSibling:   raw.RightSibling,
		Child:          raw.Child,
		CLSID:          uuid.UUID(raw.CLSID),
		StateBits:      raw.StateBits,
		CreationTime:   raw.CreationTime,
		ModifiedTime:   raw.ModifiedTime,
		StartingSector: foldInt4d(raw.StartingSector),
		StreamSize:     foldInt4d(raw.StreamSizeLow),
	}

	return &dir, nil
}

func decodeName(nameBytes []byte) string {
	decoded, err := utf16Decoder.NewDecoder().Bytes(nameBytes[:len(nameBytes)&^1])
	if err != nil {
		return string(bytes.ReplaceAll(nameBytes, []byte{0}, nil))
	}

	return strings.TrimRight(string(decoded), "\x00")
}

// IsMini reports whether the stream lives in the mini stream.
func (d *DirEntry) IsMini() bool {
	return d.StreamSize < MINI_STREAM_CUTOFF
}

func (d *DirEntry) StartLink() Link {
	return linkFromInt4d(d.StartingSector)
}

func (d *DirEntry) Created() time.Time {
	return fileTimeToTime(d.CreationTime)
}

func (d *DirEntry) Modified() time.Time {
	return fileTimeToTime(d.ModifiedTime)
}

// FILETIME counts 100ns intervals since 1601-01-01 UTC.
const (
	fileTimeTicksPerSecond = 10000000
	fileTimeEpochSeconds   = 11644473600 // 1601-01-01 to 1970-01-01
)

func fileTimeToTime(ft uint64) time.Time {
	if ft == 0 {
		return time.Time{}
	}

	sec := int64(ft/fileTimeTicksPerSecond) - fileTimeEpochSeconds
	nsec := int64(ft%fileTimeTicksPerSecond) * 100
	return time.Unix(sec, nsec).UTC()
}

// TrimToSize cuts reconstructed stream data down to the entry's declared
// size. Data shorter than the declared size is returned unchanged.
func TrimToSize(data []byte, entry *DirEntry) []byte {
	if entry.StreamSize < 0 || int(entry.StreamSize) >= len(data) {
		return data
	}

	return data[:entry.StreamSize]
}
