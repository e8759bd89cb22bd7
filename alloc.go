package oleread

import "fmt"

// Allocator owns the FAT and the sectors it was built from.
type Allocator struct {
	Sectors        *Sectors
	DifatSectorIds []SectorID
	FatSectorIds   []SectorID
	Fat            SectorChain
}

func NewAllocator(sectors *Sectors, header *Header) (*Allocator, error) {
	fatSectorIds, difatSectorIds, err := buildFatSectors(sectors, header)
	if err != nil {
		return nil, err
	}

	fat, err := buildSectorChain(sectors, fatSectorIds)
	if err != nil {
		return nil, err
	}

	alloc := Allocator{
		Sectors:        sectors,
		DifatSectorIds: difatSectorIds,
		FatSectorIds:   fatSectorIds,
		Fat:            fat,
	}

	if sectors.Validation.IsStrict() {
		if err := alloc.Validate(); err != nil {
			return nil, err
		}
	}

	return &alloc, nil
}

// buildFatSectors lists the sectors holding the FAT in table order. The
// first ids live in the header; the rest come from DIFAT blocks, which are
// only read while ids are still missing.
func buildFatSectors(sectors *Sectors, header *Header) ([]SectorID, []SectorID, error) {
	numFat := int(header.NumFatSectors)
	if numFat < 0 || numFat > int(sectors.NumSectors) {
		return nil, nil, fmt.Errorf("header declares %v FAT sectors, but file has only %v sectors: %w",
			header.NumFatSectors, sectors.NumSectors, ErrorCorrupt)
	}

	fatSectorIds := make([]SectorID, 0, numFat)
	difatSectorIds := make([]SectorID, 0)

	inline := min(numFat, NUM_DIFAT_ENTRIES_IN_HEADER)
	for i := 0; i < inline; i++ {
		id, err := readFatSectorRef(sectors.buf, INLINE_DIFAT_POS+i*4)
		if err != nil {
			return nil, nil, err
		}
		fatSectorIds = append(fatSectorIds, id)
	}

	remaining := numFat - inline
	next := linkFromInt4d(header.FirstDifatSector)
	for block := 0; block < int(header.NumDifatSectors) && remaining > 0; block++ {
		if next.Kind != LinkIndex {
			return nil, nil, fmt.Errorf("DIFAT block %v is %v, but %v FAT sectors are still missing: %w",
				block, next, remaining, ErrorCorrupt)
		}

		id := SectorID(next.Index)
		sector, err := sectors.Sector(id)
		if err != nil {
			return nil, nil, err
		}
		logger.Debugf("DIFAT block %v in sector %v", block, id)
		difatSectorIds = append(difatSectorIds, id)

		toRead := min(remaining, DIFAT_SLOTS_PER_SECTOR)
		for i := 0; i < toRead; i++ {
			fatId, err := readFatSectorRef(sector, i*4)
			if err != nil {
				return nil, nil, err
			}
			fatSectorIds = append(fatSectorIds, fatId)
		}

		remaining -= toRead
		if remaining > 0 {
			value, err := readInt4d(sector, DIFAT_SLOTS_PER_SECTOR*4)
			if err != nil {
				return nil, nil, err
			}
			next = linkFromInt4d(value)
		}
	}

	if remaining > 0 {
		return nil, nil, fmt.Errorf("DIFAT lists only %v of %v FAT sectors: %w",
			numFat-remaining, numFat, ErrorCorrupt)
	}

	logger.Debugf("FAT is stored in %v sectors (%v DIFAT blocks read)", len(fatSectorIds), len(difatSectorIds))
	return fatSectorIds, difatSectorIds, nil
}

func readFatSectorRef(buf []byte, pos int) (SectorID, error) {
	value, err := readInt4d(buf, pos)
	if err != nil {
		return 0, err
	}

	link := linkFromInt4d(value)
	if link.Kind != LinkIndex {
		return 0, fmt.Errorf("FAT sector reference at offset %v is %v: %w", pos, link, ErrorCorrupt)
	}

	return SectorID(link.Index), nil
}

// buildSectorChain concatenates the entries of every FAT sector, in table
// order, into the chain map indexed by sector.
func buildSectorChain(sectors *Sectors, fatSectorIds []SectorID) (SectorChain, error) {
	fat := make([]Link, 0, len(fatSectorIds)*LINKS_PER_SECTOR)
	for _, id := range fatSectorIds {
		sector, err := sectors.Sector(id)
		if err != nil {
			return nil, fmt.Errorf("reading FAT sector: %w", err)
		}

		fat, err = decodeLinks(sector, fat)
		if err != nil {
			return nil, err
		}
	}

	return SectorChain(fat), nil
}

// Validate checks that the sectors holding the FAT and the DIFAT are marked
// as such in the FAT.
func (a *Allocator) Validate() error {
	for _, difatSector := range a.DifatSectorIds {
		next, err := a.Fat.Next(difatSector)
		if err != nil {
			return fmt.Errorf("invalid FAT has %v entries, but DIFAT lists %v as a DIFAT sector: %w",
				len(a.Fat), difatSector, ErrorCorrupt)
		}

		if next.Kind != LinkSpecial || next.Index != DIFAT_SECTOR {
			return fmt.Errorf("invalid DIFAT sector %v is not marked as such in the FAT: %w", difatSector, ErrorCorrupt)
		}
	}

	for _, fatSector := range a.FatSectorIds {
		next, err := a.Fat.Next(fatSector)
		if err != nil {
			return fmt.Errorf("invalid FAT has %v entries, but DIFAT lists %v as a FAT sector: %w",
				len(a.Fat), fatSector, ErrorCorrupt)
		}

		if next.Kind != LinkSpecial || next.Index != FAT_SECTOR {
			return fmt.Errorf("invalid FAT sector %v is not marked as such in the FAT: %w", fatSector, ErrorCorrupt)
		}
	}

	return nil
}

func (a *Allocator) ReadChain(start Link) ([]byte, error) {
	return readChain(a.Sectors, a.Fat, start)
}
