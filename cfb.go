package oleread

import (
	"errors"
	"fmt"
	"os"
)

var (
	ErrorNotReadable = errors.New("file is not readable")
	ErrorNoContent   = errors.New("file has no content")
	ErrorInvalidCFB  = errors.New("not a valid compound file")
	ErrorCorrupt     = errors.New("corrupt compound file")
	ErrorNotFound    = errors.New("stream not found")
)

// FileError ties a failure to the file it happened in.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// WorkbookConsumer receives the reconstructed workbook stream, e.g. a BIFF
// record decoder.
type WorkbookConsumer interface {
	ConsumeWorkbook(data []byte) error
}

// File is a loaded compound file. It is never modified after Open returns,
// so its methods may be called from several goroutines at once.
type File struct {
	name      string
	header    *Header
	alloc     *Allocator
	minifat   MiniSectorChain
	directory *Directory
}

// Open reads the whole file at path and decodes its container structure.
func Open(path string, validation Validation) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: fmt.Errorf("%w: %w", ErrorNotReadable, err)}
	}

	return OpenBytes(path, data, validation)
}

// OpenBytes decodes a container already held in memory. name is only used
// in errors. data must not be modified afterwards.
func OpenBytes(name string, data []byte, validation Validation) (*File, error) {
	f, err := load(name, data, validation)
	if err != nil {
		return nil, &FileError{Path: name, Err: err}
	}

	return f, nil
}

func load(name string, data []byte, validation Validation) (*File, error) {
	if len(data) == 0 {
		return nil, ErrorNoContent
	}

	header, err := parseHeader(data, validation)
	if err != nil {
		return nil, err
	}

	sectors := NewSectors(data, validation)
	alloc, err := NewAllocator(sectors, header)
	if err != nil {
		return nil, err
	}

	minifat, err := buildMiniChain(alloc, header)
	if err != nil {
		return nil, err
	}

	directory, err := parseDirectory(alloc, header, validation)
	if err != nil {
		return nil, err
	}

	logger.Debugf("opened %v: %v sectors, %v FAT entries, %v mini FAT entries, %v directory entries",
		name, sectors.NumSectors, len(alloc.Fat), len(minifat), len(directory.Entries))

	return &File{
		name:      name,
		header:    header,
		alloc:     alloc,
		minifat:   minifat,
		directory: directory,
	}, nil
}

func (f *File) fail(err error) error {
	return &FileError{Path: f.name, Err: err}
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Header() Header {
	return *f.header
}

// Entries returns the directory entries in on-disk order.
func (f *File) Entries() []*DirEntry {
	entries := make([]*DirEntry, len(f.directory.Entries))
	copy(entries, f.directory.Entries)
	return entries
}

func (f *File) RootEntry() *DirEntry {
	return f.directory.RootDirEntry()
}

func (f *File) WorkbookEntry() *DirEntry {
	return f.directory.WorkbookDirEntry()
}

// Workbook reconstructs the workbook stream. The result is not trimmed to
// the declared size; see TrimToSize.
func (f *File) Workbook() ([]byte, error) {
	data, err := assemble(f.alloc, f.minifat, f.directory, f.WorkbookEntry())
	if err != nil {
		return nil, f.fail(err)
	}

	return data, nil
}

// Feed hands the reconstructed workbook stream to c.
func (f *File) Feed(c WorkbookConsumer) error {
	data, err := f.Workbook()
	if err != nil {
		return err
	}

	return c.ConsumeWorkbook(data)
}

// StreamAt reconstructs the stream stored in the directory entry at index.
func (f *File) StreamAt(index int) ([]byte, error) {
	if index < 0 || index >= len(f.directory.Entries) {
		return nil, f.fail(fmt.Errorf("directory entry %v is out of range (%v entries): %w",
			index, len(f.directory.Entries), ErrorNotFound))
	}

	entry := f.directory.Entries[index]
	if entry.ObjType != Stream {
		return nil, f.fail(fmt.Errorf("entry %v (%q) is a %v, not a stream: %w", index, entry.DisplayName, entry.ObjType, ErrorNotFound))
	}

	data, err := assemble(f.alloc, f.minifat, f.directory, entry)
	if err != nil {
		return nil, f.fail(err)
	}

	return data, nil
}

// Stream reconstructs the stream at path, e.g. "Workbook" or
// "/_VBA_PROJECT_CUR/VBA/dir".
func (f *File) Stream(path string) ([]byte, error) {
	index, err := f.Lookup(path)
	if err != nil {
		return nil, err
	}

	return f.StreamAt(index)
}

// OpenStream returns a reader over the stream at path, cut to its declared
// size.
func (f *File) OpenStream(path string) (*StreamReader, error) {
	index, err := f.Lookup(path)
	if err != nil {
		return nil, err
	}

	data, err := f.StreamAt(index)
	if err != nil {
		return nil, err
	}

	return newStream(PathFromNameChain(NameChainFromPath(path)), f.directory.Entries[index], data), nil
}

// Lookup resolves path to a directory entry index through the storage
// tree. Single names that the tree cannot resolve are matched against the
// flat entry list.
func (f *File) Lookup(path string) (int, error) {
	names := NameChainFromPath(path)
	if len(names) == 0 {
		return f.directory.RootIndex, nil
	}

	index, err := f.directory.StreamIDForNameChain(names)
	if err == nil {
		return index, nil
	}

	if len(names) == 1 {
		for i, entry := range f.directory.Entries {
			if entry.ObjType != Unallocated && CompareNames(entry.DisplayName, names[0]) == OrderEqual {
				return i, nil
			}
		}
	}

	return 0, f.fail(err)
}

// Walk visits every entry reachable from the root storage.
func (f *File) Walk(fn WalkFunc) error {
	if err := f.directory.Walk(fn); err != nil {
		return f.fail(err)
	}
	return nil
}
