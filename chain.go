package oleread

import (
	"fmt"
)

type LinkKind uint8

const (
	LinkIndex LinkKind = iota
	LinkEndOfChain
	LinkSpecial // FAT, DIFAT or reserved marker
)

// Link is one decoded allocation table entry: the next sector of a chain,
// the end of the chain, or a special marker that no chain may pass through.
type Link struct {
	Kind  LinkKind
	Index uint32
}

var EndOfChain = Link{Kind: LinkEndOfChain}

func IndexLink(index uint32) Link {
	return Link{Kind: LinkIndex, Index: index}
}

func linkFromInt4d(value int32) Link {
	switch {
	case value == END_OF_CHAIN:
		return EndOfChain
	case value < 0:
		return Link{Kind: LinkSpecial, Index: uint32(value)}
	default:
		return IndexLink(uint32(value))
	}
}

func (l Link) String() string {
	switch l.Kind {
	case LinkEndOfChain:
		return "END_OF_CHAIN"
	case LinkSpecial:
		return fmt.Sprintf("special(%#x)", l.Index)
	default:
		return fmt.Sprintf("%v", l.Index)
	}
}

// SectorChain is the FAT: for every sector, the link to the next sector of
// its chain.
type SectorChain []Link

func (c SectorChain) Next(id SectorID) (Link, error) {
	if uint64(id) >= uint64(len(c)) {
		return Link{}, fmt.Errorf("sector %v is outside the FAT of %v entries: %w", id, len(c), ErrorCorrupt)
	}

	return c[id], nil
}

// Walk calls visit for every sector of the chain beginning at start. A chain
// longer than the FAT itself must contain a cycle and is rejected.
func (c SectorChain) Walk(start Link, visit func(SectorID) error) error {
	current := start
	for steps := 0; current.Kind != LinkEndOfChain; steps++ {
		if current.Kind != LinkIndex {
			return fmt.Errorf("chain from %v runs into %v: %w", start, current, ErrorCorrupt)
		}
		if steps >= len(c) {
			return fmt.Errorf("chain from %v does not end within %v sectors: %w", start, len(c), ErrorCorrupt)
		}

		id := SectorID(current.Index)
		next, err := c.Next(id)
		if err != nil {
			return err
		}

		if err := visit(id); err != nil {
			return err
		}
		current = next
	}

	return nil
}

// SectorIds returns the sectors of the chain beginning at start, in order.
func (c SectorChain) SectorIds(start Link) ([]SectorID, error) {
	ids := make([]SectorID, 0)
	err := c.Walk(start, func(id SectorID) error {
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// readChain concatenates the sectors of a chain. The result always covers
// whole sectors.
func readChain(sectors *Sectors, chain SectorChain, start Link) ([]byte, error) {
	data := make([]byte, 0)
	err := chain.Walk(start, func(id SectorID) error {
		sector, err := sectors.Sector(id)
		if err != nil {
			return err
		}

		data = append(data, sector...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}
