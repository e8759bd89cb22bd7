// Package cfbtest builds small, well-formed version 3 compound files for
// tests.
package cfbtest

import (
	"encoding/binary"
	"slices"
	"sort"
	"strings"
	"unicode/utf16"
)

const (
	SectorLen     = 512
	MiniSectorLen = 64
	MiniCutoff    = 4096
	DirEntryLen   = 128
	InlineDifat   = 109
	DifatSlots    = SectorLen/4 - 1

	FreeSector  uint32 = 0xffffffff
	EndOfChain  uint32 = 0xfffffffe
	FatSector   uint32 = 0xfffffffd
	DifatSector uint32 = 0xfffffffc
	NoStream    uint32 = 0xffffffff

	TypeEmpty   uint8 = 0
	TypeStorage uint8 = 1
	TypeStream  uint8 = 2
	TypeRoot    uint8 = 5
)

// Header field offsets, for patching.
const (
	OffNumFatSectors     = 0x2c
	OffFirstDirSector    = 0x30
	OffFirstMinifat      = 0x3c
	OffNumMinifatSectors = 0x40
	OffFirstDifatSector  = 0x44
	OffNumDifatSectors   = 0x48
	OffInlineDifat       = 0x4c
)

// Node is a stream, or a storage when Children is not nil.
type Node struct {
	Name     string
	Data     []byte
	Children []Node
	// Size overrides the declared size when non-zero.
	Size uint32
}

func (n Node) isStorage() bool {
	return n.Children != nil
}

func (n Node) declaredSize() uint32 {
	if n.Size != 0 {
		return n.Size
	}
	return uint32(len(n.Data))
}

// Layout records where the builder put things.
type Layout struct {
	NumSectors      int
	FatSectors      []uint32
	DifatSectors    []uint32
	FirstDirSector  uint32
	FirstMinifat    uint32
	RootStart       uint32
	MiniStreamLen   int
	MinifatEntries  int
	EntryStart      map[string]uint32 // by path, e.g. "/Workbook"
	EntryIndex      map[string]int
	DirectoryOffset int // byte offset of the first directory sector
}

type Container struct {
	// NumFatSectors defaults to 1.
	NumFatSectors int
	// RootName defaults to "Root Entry".
	RootName string
	Nodes    []Node
}

type dirRecord struct {
	name        string
	objType     uint8
	left, right uint32
	child       uint32
	start       uint32
	size        uint32
}

type builder struct {
	sectors  [][]byte
	fat      []uint32
	minifat  []uint32
	mini     []byte
	records  []dirRecord
	layout   *Layout
	pathName []string
}

// Build lays out the container and returns its bytes.
func (c Container) Build() ([]byte, *Layout) {
	numFat := c.NumFatSectors
	if numFat == 0 {
		numFat = 1
	}
	rootName := c.RootName
	if rootName == "" {
		rootName = "Root Entry"
	}

	layout := &Layout{
		EntryStart: map[string]uint32{},
		EntryIndex: map[string]int{},
	}
	b := &builder{layout: layout}

	for i := 0; i < numFat; i++ {
		layout.FatSectors = append(layout.FatSectors, b.reserve(FatSector))
	}
	numDifat := 0
	if numFat > InlineDifat {
		numDifat = (numFat - InlineDifat + DifatSlots - 1) / DifatSlots
	}
	for i := 0; i < numDifat; i++ {
		layout.DifatSectors = append(layout.DifatSectors, b.reserve(DifatSector))
	}

	b.records = append(b.records, dirRecord{
		name: rootName, objType: TypeRoot,
		left: NoStream, right: NoStream, child: NoStream,
	})
	b.records[0].child = b.addSiblings(c.Nodes, "")

	layout.RootStart = b.addChain(b.mini)
	layout.MiniStreamLen = len(b.mini)
	b.records[0].start = layout.RootStart
	b.records[0].size = uint32(len(b.mini))

	layout.MinifatEntries = len(b.minifat)
	minifatBytes := linksToBytes(b.minifat)
	layout.FirstMinifat = b.addChain(minifatBytes)
	numMinifatSectors := len(minifatBytes) / SectorLen

	for len(b.records)%(SectorLen/DirEntryLen) != 0 {
		b.records = append(b.records, dirRecord{left: NoStream, right: NoStream, child: NoStream})
	}
	dir := make([]byte, 0, len(b.records)*DirEntryLen)
	for _, r := range b.records {
		dir = append(dir, encodeRecord(r)...)
	}
	layout.FirstDirSector = b.addChain(dir)
	layout.DirectoryOffset = int(layout.FirstDirSector+1) * SectorLen

	if len(b.fat) > numFat*SectorLen/4 {
		panic("cfbtest: FAT too small for container")
	}

	fatBytes := make([]byte, numFat*SectorLen)
	for i := range fatBytes[:] {
		fatBytes[i] = 0xff
	}
	for i, v := range b.fat {
		binary.LittleEndian.PutUint32(fatBytes[i*4:], v)
	}
	for i, id := range layout.FatSectors {
		copy(b.sectors[id], fatBytes[i*SectorLen:(i+1)*SectorLen])
	}

	for k, id := range layout.DifatSectors {
		sector := b.sectors[id]
		for i := 0; i < DifatSlots; i++ {
			v := FreeSector
			if n := InlineDifat + k*DifatSlots + i; n < numFat {
				v = layout.FatSectors[n]
			}
			binary.LittleEndian.PutUint32(sector[i*4:], v)
		}
		next := EndOfChain
		if k+1 < len(layout.DifatSectors) {
			next = layout.DifatSectors[k+1]
		}
		binary.LittleEndian.PutUint32(sector[DifatSlots*4:], next)
	}

	header := make([]byte, SectorLen)
	copy(header, []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1})
	binary.LittleEndian.PutUint16(header[24:], 0x3e)
	binary.LittleEndian.PutUint16(header[26:], 3)
	binary.LittleEndian.PutUint16(header[28:], 0xfffe)
	binary.LittleEndian.PutUint16(header[30:], 9)
	binary.LittleEndian.PutUint16(header[32:], 6)
	binary.LittleEndian.PutUint32(header[OffNumFatSectors:], uint32(numFat))
	binary.LittleEndian.PutUint32(header[OffFirstDirSector:], layout.FirstDirSector)
	binary.LittleEndian.PutUint32(header[56:], MiniCutoff)
	binary.LittleEndian.PutUint32(header[OffFirstMinifat:], layout.FirstMinifat)
	binary.LittleEndian.PutUint32(header[OffNumMinifatSectors:], uint32(numMinifatSectors))
	firstDifat := EndOfChain
	if numDifat > 0 {
		firstDifat = layout.DifatSectors[0]
	}
	binary.LittleEndian.PutUint32(header[OffFirstDifatSector:], firstDifat)
	binary.LittleEndian.PutUint32(header[OffNumDifatSectors:], uint32(numDifat))
	for i := 0; i < InlineDifat; i++ {
		v := FreeSector
		if i < numFat {
			v = layout.FatSectors[i]
		}
		binary.LittleEndian.PutUint32(header[OffInlineDifat+i*4:], v)
	}

	out := header
	for _, s := range b.sectors {
		out = append(out, s...)
	}
	layout.NumSectors = len(b.sectors)

	return out, layout
}

func (b *builder) reserve(marker uint32) uint32 {
	id := uint32(len(b.sectors))
	b.sectors = append(b.sectors, make([]byte, SectorLen))
	b.fat = append(b.fat, marker)
	return id
}

// addChain stores data in fresh sectors linked through the FAT and returns
// the first sector, or EndOfChain for no data.
func (b *builder) addChain(data []byte) uint32 {
	if len(data) == 0 {
		return EndOfChain
	}

	n := (len(data) + SectorLen - 1) / SectorLen
	first := uint32(len(b.sectors))
	for i := 0; i < n; i++ {
		sector := make([]byte, SectorLen)
		copy(sector, data[i*SectorLen:])
		b.sectors = append(b.sectors, sector)

		next := EndOfChain
		if i+1 < n {
			next = first + uint32(i) + 1
		}
		b.fat = append(b.fat, next)
	}

	return first
}

func (b *builder) addMini(data []byte) uint32 {
	if len(data) == 0 {
		return EndOfChain
	}

	n := (len(data) + MiniSectorLen - 1) / MiniSectorLen
	first := uint32(len(b.minifat))
	for i := 0; i < n; i++ {
		chunk := make([]byte, MiniSectorLen)
		copy(chunk, data[i*MiniSectorLen:])
		b.mini = append(b.mini, chunk...)

		next := EndOfChain
		if i+1 < n {
			next = first + uint32(i) + 1
		}
		b.minifat = append(b.minifat, next)
	}

	return first
}

// addSiblings appends nodes as one sibling tree, a right-leaning chain in
// name order, and returns the index of its top entry.
func (b *builder) addSiblings(nodes []Node, parent string) uint32 {
	if len(nodes) == 0 {
		return NoStream
	}

	sorted := make([]Node, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareNames(sorted[i].Name, sorted[j].Name) < 0
	})

	indexes := make([]int, len(sorted))
	for i, n := range sorted {
		indexes[i] = len(b.records)
		r := dirRecord{name: n.Name, left: NoStream, right: NoStream, child: NoStream}
		if n.isStorage() {
			r.objType = TypeStorage
		} else {
			r.objType = TypeStream
			r.size = n.declaredSize()
			if r.size < MiniCutoff {
				r.start = b.addMini(n.Data)
			} else {
				r.start = b.addChain(n.Data)
			}
		}
		path := parent + "/" + n.Name
		b.layout.EntryStart[path] = r.start
		b.layout.EntryIndex[path] = indexes[i]
		b.records = append(b.records, r)

		if n.isStorage() {
			child := b.addSiblings(n.Children, path)
			b.records[indexes[i]].child = child
		}
	}

	for i := 0; i+1 < len(indexes); i++ {
		b.records[indexes[i]].right = uint32(indexes[i+1])
	}

	return uint32(indexes[0])
}

func compareNames(a, b string) int {
	la, lb := len(utf16.Encode([]rune(a))), len(utf16.Encode([]rune(b)))
	if la != lb {
		return la - lb
	}
	return slices.Compare(utf16.Encode([]rune(strings.ToUpper(a))), utf16.Encode([]rune(strings.ToUpper(b))))
}

func encodeRecord(r dirRecord) []byte {
	rec := make([]byte, DirEntryLen)
	if r.name != "" {
		units := utf16.Encode([]rune(r.name))
		for i, u := range units {
			binary.LittleEndian.PutUint16(rec[i*2:], u)
		}
		binary.LittleEndian.PutUint16(rec[0x40:], uint16((len(units)+1)*2))
	}
	rec[0x42] = r.objType
	rec[0x43] = 1
	binary.LittleEndian.PutUint32(rec[0x44:], r.left)
	binary.LittleEndian.PutUint32(rec[0x48:], r.right)
	binary.LittleEndian.PutUint32(rec[0x4c:], r.child)
	if r.objType == TypeEmpty {
		binary.LittleEndian.PutUint32(rec[0x74:], 0)
	} else {
		binary.LittleEndian.PutUint32(rec[0x74:], r.start)
	}
	binary.LittleEndian.PutUint32(rec[0x78:], r.size)
	return rec
}

func linksToBytes(links []uint32) []byte {
	if len(links) == 0 {
		return nil
	}

	perSector := SectorLen / 4
	n := (len(links) + perSector - 1) / perSector
	out := make([]byte, n*SectorLen)
	for i := 0; i < n*perSector; i++ {
		v := FreeSector
		if i < len(links) {
			v = links[i]
		}
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// PutUint32 patches a little-endian value into buf.
func PutUint32(buf []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:], v)
}
