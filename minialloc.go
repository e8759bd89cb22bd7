package oleread

import "fmt"

// buildMiniChain reads the mini FAT. Its storage is an ordinary FAT chain.
func buildMiniChain(alloc *Allocator, header *Header) (MiniSectorChain, error) {
	data, err := alloc.ReadChain(linkFromInt4d(header.FirstMinifatSector))
	if err != nil {
		return nil, fmt.Errorf("reading mini FAT: %w", err)
	}

	minifat, err := decodeLinks(data, make([]Link, 0, len(data)/4))
	if err != nil {
		return nil, err
	}

	numSectors := len(data) / SECTOR_LEN
	if alloc.Sectors.Validation.IsStrict() && header.NumMinifatSectors >= 0 && int(header.NumMinifatSectors) != numSectors {
		return nil, fmt.Errorf("incorrect number of mini FAT sectors (header says %v, FAT says %v): %w",
			header.NumMinifatSectors, numSectors, ErrorCorrupt)
	}

	logger.Debugf("mini FAT has %v entries in %v sectors", len(minifat), numSectors)
	return MiniSectorChain(minifat), nil
}
