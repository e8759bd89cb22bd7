package oleread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asalih/go-oleread/internal/cfbtest"
)

func TestAllocatorInlineFat(t *testing.T) {
	data, layout := workbookContainer(pattern(6000, 1)).Build()
	f := mustOpen(t, data, ValidationStrict)

	assert.Len(t, f.alloc.FatSectorIds, 1)
	assert.Empty(t, f.alloc.DifatSectorIds)
	assert.Len(t, f.alloc.Fat, LINKS_PER_SECTOR)
	assert.Equal(t, SectorID(layout.FatSectors[0]), f.alloc.FatSectorIds[0])
}

// The DIFAT block count is never trusted while the header already lists
// every FAT sector.
func TestAllocatorIgnoresDifatWhenInlineSuffices(t *testing.T) {
	data, _ := workbookContainer([]byte("HELLOWORLD")).Build()
	cfbtest.PutUint32(data, cfbtest.OffNumDifatSectors, 3)
	cfbtest.PutUint32(data, cfbtest.OffFirstDifatSector, 0x7ffffff0)

	header, err := parseHeader(data, ValidationPermissive)
	require.NoError(t, err)
	fatIds, difatIds, err := buildFatSectors(NewSectors(data, ValidationPermissive), header)
	require.NoError(t, err)
	assert.Len(t, fatIds, 1)
	assert.Empty(t, difatIds)

	f := mustOpen(t, data, ValidationPermissive)
	wb, err := f.Workbook()
	require.NoError(t, err)
	assert.True(t, hasPrefix(wb, []byte("HELLOWORLD")))
}

func TestAllocatorDifatBlocks(t *testing.T) {
	tests := []struct {
		name      string
		numFat    int
		numDifat  int
		streamLen int
	}{
		{name: "one block", numFat: NUM_DIFAT_ENTRIES_IN_HEADER + 1, numDifat: 1, streamLen: 20000},
		{name: "one full block", numFat: NUM_DIFAT_ENTRIES_IN_HEADER + DIFAT_SLOTS_PER_SECTOR, numDifat: 1, streamLen: 5000},
		{name: "two blocks", numFat: NUM_DIFAT_ENTRIES_IN_HEADER + DIFAT_SLOTS_PER_SECTOR + 1, numDifat: 2, streamLen: 70000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := pattern(tt.streamLen, 9)
			c := workbookContainer(want, cfbtest.Node{Name: "Small", Data: pattern(100, 4)})
			c.NumFatSectors = tt.numFat
			data, layout := c.Build()

			f := mustOpen(t, data, ValidationStrict)
			require.Len(t, f.alloc.FatSectorIds, tt.numFat)
			require.Len(t, f.alloc.DifatSectorIds, tt.numDifat)
			for i, id := range layout.FatSectors {
				assert.Equal(t, SectorID(id), f.alloc.FatSectorIds[i])
			}
			for i, id := range layout.DifatSectors {
				assert.Equal(t, SectorID(id), f.alloc.DifatSectorIds[i])
			}
			assert.Len(t, f.alloc.Fat, tt.numFat*LINKS_PER_SECTOR)

			wb, err := f.Workbook()
			require.NoError(t, err)
			assert.Equal(t, want, TrimToSize(wb, f.WorkbookEntry()))

			small, err := f.Stream("Small")
			require.NoError(t, err)
			assert.Equal(t, pattern(100, 4), small[:100])
		})
	}
}

func TestAllocatorDifatCountTooSmall(t *testing.T) {
	c := workbookContainer([]byte("HELLOWORLD"))
	c.NumFatSectors = NUM_DIFAT_ENTRIES_IN_HEADER + DIFAT_SLOTS_PER_SECTOR + 1
	data, _ := c.Build()
	cfbtest.PutUint32(data, cfbtest.OffNumDifatSectors, 1)

	_, err := OpenBytes("test.xls", data, ValidationPermissive)
	assert.ErrorIs(t, err, ErrorCorrupt)
}

func TestAllocatorCorrupt(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		value  uint32
	}{
		{name: "fat sector past end", offset: cfbtest.OffInlineDifat, value: 0x7000},
		{name: "fat sector is free", offset: cfbtest.OffInlineDifat, value: cfbtest.FreeSector},
		{name: "more fat sectors than file", offset: cfbtest.OffNumFatSectors, value: 1000},
		{name: "negative fat count", offset: cfbtest.OffNumFatSectors, value: 0x80000000},
		{name: "difat start past end", offset: cfbtest.OffFirstDifatSector, value: 0x7000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := workbookContainer([]byte("HELLOWORLD"))
			if tt.offset == cfbtest.OffFirstDifatSector {
				c.NumFatSectors = NUM_DIFAT_ENTRIES_IN_HEADER + 1
			}
			data, _ := c.Build()
			cfbtest.PutUint32(data, tt.offset, tt.value)

			_, err := OpenBytes("test.xls", data, ValidationPermissive)
			assert.ErrorIs(t, err, ErrorCorrupt)
		})
	}
}

func TestAllocatorValidateMarkers(t *testing.T) {
	data, layout := workbookContainer([]byte("HELLOWORLD")).Build()
	// FAT entry describing the FAT sector itself
	cfbtest.PutUint32(data, int(layout.FatSectors[0]+1)*cfbtest.SectorLen+int(layout.FatSectors[0])*4, cfbtest.EndOfChain)

	_, err := OpenBytes("test.xls", data, ValidationStrict)
	assert.ErrorIs(t, err, ErrorCorrupt)

	_, err = OpenBytes("test.xls", data, ValidationPermissive)
	assert.NoError(t, err)
}
