package oleread

import (
	"fmt"
)

// MiniSectorChain is the mini FAT, indexed by mini sector.
type MiniSectorChain []Link

func (c MiniSectorChain) Next(id MiniSectorID) (Link, error) {
	if uint64(id) >= uint64(len(c)) {
		return Link{}, fmt.Errorf("mini sector %v is outside the mini FAT of %v entries: %w", id, len(c), ErrorCorrupt)
	}

	return c[id], nil
}

func (c MiniSectorChain) Walk(start Link, visit func(MiniSectorID) error) error {
	current := start
	for steps := 0; current.Kind != LinkEndOfChain; steps++ {
		if current.Kind != LinkIndex {
			return fmt.Errorf("mini chain from %v runs into %v: %w", start, current, ErrorCorrupt)
		}
		if steps >= len(c) {
			return fmt.Errorf("mini chain from %v does not end within %v mini sectors: %w", start, len(c), ErrorCorrupt)
		}

		id := MiniSectorID(current.Index)
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

func (c MiniSectorChain) MiniSectorIds(start Link) ([]MiniSectorID, error) {
	ids := make([]MiniSectorID, 0)
	err := c.Walk(start, func(id MiniSectorID) error {
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}
