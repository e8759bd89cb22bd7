package oleread

import (
	"bytes"
	"fmt"
)

// assemble rebuilds the content of entry. Entries below the mini stream
// cutoff are gathered from the root entry's content in mini sectors, the
// rest straight from the FAT. Either way the result covers whole sectors.
func assemble(alloc *Allocator, minifat MiniSectorChain, dir *Directory, entry *DirEntry) ([]byte, error) {
	if entry.IsMini() {
		return assembleMini(alloc, minifat, dir.RootDirEntry(), entry)
	}

	numSectors := (int(entry.StreamSize) + SECTOR_LEN - 1) / SECTOR_LEN
	if numSectors == 0 {
		return []byte{}, nil
	}

	data, err := alloc.ReadChain(entry.StartLink())
	if err != nil {
		return nil, fmt.Errorf("reading stream %q: %w", entry.DisplayName, err)
	}

	return data, nil
}

func assembleMini(alloc *Allocator, minifat MiniSectorChain, root, entry *DirEntry) ([]byte, error) {
	rootData, err := alloc.ReadChain(root.StartLink())
	if err != nil {
		return nil, fmt.Errorf("reading mini stream: %w", err)
	}

	data := make([]byte, 0)
	err = minifat.Walk(entry.StartLink(), func(id MiniSectorID) error {
		start := id.Offset()
		end := start + MINI_SECTOR_LEN
		if end > len(rootData) {
			return fmt.Errorf("mini sector %v is past the end of the %v-byte mini stream: %w", id, len(rootData), ErrorCorrupt)
		}

		data = append(data, rootData[start:end]...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading stream %q: %w", entry.DisplayName, err)
	}

	return data, nil
}

// StreamReader is a read-only view of one stream, cut to its declared size.
type StreamReader struct {
	*bytes.Reader

	Path  string
	Entry *DirEntry
}

func newStream(path string, entry *DirEntry, data []byte) *StreamReader {
	return &StreamReader{
		Reader: bytes.NewReader(TrimToSize(data, entry)),
		Path:   path,
		Entry:  entry,
	}
}
