package oleread

import "fmt"

const (
	V3 Version = 3
	V4 Version = 4
)

type Version int

func VersionNumber(v uint16) (Version, error) {
	switch v {
	case 3:
		return V3, nil
	case 4:
		return V4, nil
	default:
		return 0, fmt.Errorf("invalid version number: %v: %w", v, ErrorInvalidCFB)
	}
}

// SectorShift is the log2 of the sector size a header of this version
// must declare.
func (v Version) SectorShift() uint16 {
	return uint16(v * 3)
}

func (v Version) SectorLen() int {
	return 1 << v.SectorShift()
}

// Supported reports whether sectors of this version can be addressed. Only
// the 512-byte sector layout is.
func (v Version) Supported() bool {
	return v.SectorLen() == SECTOR_LEN
}
