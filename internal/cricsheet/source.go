package cricsheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

const (
	jsonExt   = ".json"
	gzJSONExt = ".json.gz"
	zipExt    = ".zip"
)

// ErrSourceNotFound is returned when neither the directory nor its archive exists
var ErrSourceNotFound = errors.New("source not found")

// Entry is one match document in a Set
type Entry struct {
	Name    string // path as listed, relative to the set
	MatchID string // file name without extension
	open    func() (io.ReadCloser, error)
}

// ReadAll returns the document bytes, decompressing .json.gz entries
func (e Entry) ReadAll() ([]byte, error) {
	rc, err := e.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if strings.HasSuffix(e.Name, gzJSONExt) {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return io.ReadAll(r)
}

// Set is the list of documents of one format
type Set struct {
	Root    string
	Entries []Entry
	closer  io.Closer
}

// Close releases the archive backing the set, if any
func (s *Set) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// OpenSet lists the match documents under dir in lexical order. When dir
// does not exist, a sibling dir+".zip" archive (the bulk download layout)
// is read instead. ErrSourceNotFound is returned when neither exists.
func OpenSet(dir string) (*Set, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return openDir(dir)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	archive := strings.TrimRight(dir, `/\`) + zipExt
	if _, err := os.Stat(archive); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrSourceNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", archive, err)
	}
	return openZip(archive)
}

func openDir(dir string) (*Set, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	set := &Set{Root: dir}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		id, ok := MatchIDFromName(f.Name())
		if !ok {
			continue
		}
		p := filepath.Join(dir, f.Name())
		set.Entries = append(set.Entries, Entry{
			Name:    f.Name(),
			MatchID: id,
			open:    func() (io.ReadCloser, error) { return os.Open(p) },
		})
	}

	// os.ReadDir already sorts by name
	return set, nil
}

func openZip(archive string) (*Set, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archive, err)
	}

	set := &Set{Root: archive, closer: zr}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		id, ok := MatchIDFromName(path.Base(f.Name))
		if !ok {
			continue
		}
		set.Entries = append(set.Entries, Entry{
			Name:    f.Name,
			MatchID: id,
			open:    f.Open,
		})
	}

	sort.Slice(set.Entries, func(i, j int) bool {
		return set.Entries[i].Name < set.Entries[j].Name
	})
	return set, nil
}

// MatchIDFromName derives the match id from a document file name
// ("1082591.json" -> "1082591"). Non-document names report false.
func MatchIDFromName(name string) (string, bool) {
	switch {
	case strings.HasSuffix(name, gzJSONExt):
		name = strings.TrimSuffix(name, gzJSONExt)
	case strings.HasSuffix(name, jsonExt):
		name = strings.TrimSuffix(name, jsonExt)
	default:
		return "", false
	}
	if name == "" || strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}

// ReadFile reads a single document from disk
func ReadFile(p string) (*Document, error) {
	entry := Entry{
		Name: filepath.Base(p),
		open: func() (io.ReadCloser, error) { return os.Open(p) },
	}
	data, err := entry.ReadAll()
	if err != nil {
		return nil, err
	}
	return DecodeDocument(data)
}
