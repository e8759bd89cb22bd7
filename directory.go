package oleread

import "fmt"

type Directory struct {
	Entries       []*DirEntry
	RootIndex     int
	WorkbookIndex int
}

// WalkFunc is called for every entry reachable from the root storage.
type WalkFunc func(path string, index int, entry *DirEntry) error

func parseDirectory(alloc *Allocator, header *Header, validation Validation) (*Directory, error) {
	data, err := alloc.ReadChain(linkFromInt4d(header.FirstDirSector))
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	dirEntries := make([]*DirEntry, 0, len(data)/DIR_ENTRY_LEN)
	rootIndex, workbookIndex := -1, -1

	for offset := 0; offset+DIR_ENTRY_LEN <= len(data); offset += DIR_ENTRY_LEN {
		entry, err := ReadDirEntry(data[offset:offset+DIR_ENTRY_LEN], validation)
		if err != nil {
			return nil, err
		}
		index := len(dirEntries)
		dirEntries = append(dirEntries, entry)

		if entry.Name == ROOT_DIR_NAME {
			if rootIndex >= 0 && validation.IsStrict() {
				return nil, fmt.Errorf("directory has a second root entry at %v: %w", index, ErrorCorrupt)
			}
			rootIndex = index
		}

		if isWorkbookName(entry.Name) {
			if workbookIndex >= 0 && validation.IsStrict() {
				return nil, fmt.Errorf("directory has a second workbook entry at %v: %w", index, ErrorCorrupt)
			}
			workbookIndex = index
		}
	}

	logger.Debugf("directory has %v entries, root=%v workbook=%v", len(dirEntries), rootIndex, workbookIndex)

	return NewDirectory(dirEntries, rootIndex, workbookIndex, validation)
}

func isWorkbookName(name string) bool {
	for _, alias := range WORKBOOK_NAMES {
		if name == alias {
			return true
		}
	}
	return false
}

func NewDirectory(dirEntries []*DirEntry, rootIndex, workbookIndex int, validation Validation) (*Directory, error) {
	dir := Directory{
		Entries:       dirEntries,
		RootIndex:     rootIndex,
		WorkbookIndex: workbookIndex,
	}

	if err := dir.Validate(validation); err != nil {
		return nil, err
	}

	return &dir, nil
}

func (d *Directory) RootDirEntry() *DirEntry {
	return d.Entries[d.RootIndex]
}

func (d *Directory) WorkbookDirEntry() *DirEntry {
	return d.Entries[d.WorkbookIndex]
}

func (d *Directory) Validate(validation Validation) error {
	if len(d.Entries) == 0 {
		return fmt.Errorf("directory has no entries: %w", ErrorCorrupt)
	}

	if d.RootIndex < 0 || d.RootIndex >= len(d.Entries) {
		return fmt.Errorf("directory has no %q entry: %w", ROOT_DIR_NAME, ErrorCorrupt)
	}

	if d.WorkbookIndex < 0 || d.WorkbookIndex >= len(d.Entries) {
		return fmt.Errorf("directory has no %q or %q entry: %w", WORKBOOK_NAMES[0], WORKBOOK_NAMES[1], ErrorCorrupt)
	}

	if !validation.IsStrict() {
		return nil
	}

	if rootDirEntry := d.RootDirEntry(); rootDirEntry.ObjType != Root {
		return fmt.Errorf("root entry has object type: %v: %w", rootDirEntry.ObjType, ErrorCorrupt)
	}

	visited := make(map[uint32]bool)
	stack := []uint32{uint32(d.RootIndex)}

	for len(stack) > 0 {
		dirEntryId := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[dirEntryId] {
			return fmt.Errorf("directory has a cycle at entry %v: %w", dirEntryId, ErrorCorrupt)
		}
		visited[dirEntryId] = true

		dirEntry := d.Entries[dirEntryId]
		for _, link := range []uint32{dirEntry.LeftSibling, dirEntry.RightSibling, dirEntry.Child} {
			if link == NO_STREAM {
				continue
			}
			if link >= uint32(len(d.Entries)) {
				return fmt.Errorf("entry %v links to %v, but directory entry count is %v: %w",
					dirEntryId, link, len(d.Entries), ErrorCorrupt)
			}
			stack = append(stack, link)
		}
	}

	return nil
}

func (d *Directory) entry(id uint32) (*DirEntry, error) {
	if id >= uint32(len(d.Entries)) {
		return nil, fmt.Errorf("directory entry %v is out of range (%v entries): %w", id, len(d.Entries), ErrorCorrupt)
	}
	return d.Entries[id], nil
}

// StreamIDForNameChain descends from the root storage through the sibling
// trees of each storage along names.
func (d *Directory) StreamIDForNameChain(names []string) (int, error) {
	streamId := uint32(d.RootIndex)

	for _, name := range names {
		parent, err := d.entry(streamId)
		if err != nil {
			return 0, err
		}
		streamId = parent.Child

		for steps := 0; ; steps++ {
			if streamId == NO_STREAM {
				return 0, fmt.Errorf("%v: %w", name, ErrorNotFound)
			}
			if steps >= len(d.Entries) {
				return 0, fmt.Errorf("sibling tree for %v does not end within %v entries: %w", name, len(d.Entries), ErrorCorrupt)
			}

			dirEntry, err := d.entry(streamId)
			if err != nil {
				return 0, err
			}

			order := CompareNames(name, dirEntry.DisplayName)
			if order == OrderEqual {
				break
			}

			switch order {
			case OrderLess:
				streamId = dirEntry.LeftSibling
			case OrderGreater:
				streamId = dirEntry.RightSibling
			}
		}
	}

	return int(streamId), nil
}

// Walk visits the root and then every entry of the storage tree in name
// order, storages before their children.
func (d *Directory) Walk(fn WalkFunc) error {
	root := d.RootDirEntry()
	if err := fn("/", d.RootIndex, root); err != nil {
		return err
	}

	visited := map[uint32]bool{uint32(d.RootIndex): true}
	return d.walkTree(root.Child, []string{}, visited, fn)
}

func (d *Directory) walkTree(id uint32, parent []string, visited map[uint32]bool, fn WalkFunc) error {
	if id == NO_STREAM {
		return nil
	}

	entry, err := d.entry(id)
	if err != nil {
		return err
	}
	if visited[id] {
		return fmt.Errorf("directory has a cycle at entry %v: %w", id, ErrorCorrupt)
	}
	visited[id] = true

	if err := d.walkTree(entry.LeftSibling, parent, visited, fn); err != nil {
		return err
	}

	names := append(parent[:len(parent):len(parent)], entry.DisplayName)
	if err := fn(PathFromNameChain(names), int(id), entry); err != nil {
		return err
	}

	if entry.ObjType == Storage {
		if err := d.walkTree(entry.Child, names, visited, fn); err != nil {
			return err
		}
	}

	return d.walkTree(entry.RightSibling, parent, visited, fn)
}
