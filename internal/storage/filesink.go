package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/errgroup"

	"cricket-analyzer/internal/logging"
	"cricket-analyzer/internal/model"
)

// Encoding selects the flat file format
type Encoding string

const (
	EncodingCSV   Encoding = "csv"
	EncodingJSONL Encoding = "jsonl"
)

const (
	hotDirName    = ".hot"
	writeBufSize  = 64 * 1024
	ctxCheckEvery = 10000
)

// ParseEncoding validates an encoding name
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case EncodingCSV, EncodingJSONL:
		return Encoding(s), nil
	}
	return "", fmt.Errorf("unknown encoding %q (want csv or jsonl)", s)
}

// FileSinkOptions configures a FileSink
type FileSinkOptions struct {
	Dir      string
	Encoding Encoding
	Gzip     bool
	Logger   *slog.Logger
}

// FileSink writes each table to its own file under Dir. Files are staged in
// Dir/.hot and renamed into place once all four are complete, so a failed
// run leaves the previous output untouched.
type FileSink struct {
	dir      string
	hotDir   string
	encoding Encoding
	gzip     bool
	log      *slog.Logger
}

// NewFileSink creates the output directory and validates the options
func NewFileSink(opts FileSinkOptions) (*FileSink, error) {
	if opts.Encoding == "" {
		opts.Encoding = EncodingCSV
	}
	if _, err := ParseEncoding(string(opts.Encoding)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", opts.Dir, err)
	}

	return &FileSink{
		dir:      opts.Dir,
		hotDir:   filepath.Join(opts.Dir, hotDirName),
		encoding: opts.Encoding,
		gzip:     opts.Gzip,
		log:      logging.Component(opts.Logger, "filesink"),
	}, nil
}

func (s *FileSink) Name() string {
	return "files:" + s.dir
}

// Path returns the final location of a table's file
func (s *FileSink) Path(table string) string {
	return filepath.Join(s.dir, s.fileName(table, s.encoding, s.gzip))
}

func (s *FileSink) fileName(table string, enc Encoding, gz bool) string {
	name := table + "." + string(enc)
	if gz {
		name += ".gz"
	}
	return name
}

// WriteTables replaces the four table files
func (s *FileSink) WriteTables(ctx context.Context, t *model.Tables) error {
	if err := os.RemoveAll(s.hotDir); err != nil {
		return fmt.Errorf("failed to clear staging directory: %w", err)
	}
	if err := os.MkdirAll(s.hotDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(s.hotDir)

	tables := t.All()
	g, gctx := errgroup.WithContext(ctx)
	for _, table := range tables {
		g.Go(func() error {
			p := filepath.Join(s.hotDir, s.fileName(table.Name, s.encoding, s.gzip))
			if err := s.writeFile(gctx, p, table); err != nil {
				return fmt.Errorf("write %s: %w", table.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, table := range tables {
		name := s.fileName(table.Name, s.encoding, s.gzip)
		if err := os.Rename(filepath.Join(s.hotDir, name), filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("failed to move %s into place: %w", name, err)
		}
		s.removeStale(table.Name)
		s.log.Info("wrote table", "table", table.Name, "rows", table.Len, "file", name)
	}
	return nil
}

// removeStale deletes files a previous run wrote for the same table under a
// different encoding, so the output directory holds one set only
func (s *FileSink) removeStale(table string) {
	for _, enc := range []Encoding{EncodingCSV, EncodingJSONL} {
		for _, gz := range []bool{false, true} {
			if enc == s.encoding && gz == s.gzip {
				continue
			}
			p := filepath.Join(s.dir, s.fileName(table, enc, gz))
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				s.log.Warn("failed to remove stale file", "file", p, "error", err)
			}
		}
	}
}

func (s *FileSink) writeFile(ctx context.Context, p string, table model.TableData) (err error) {
	file, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	buf := bufio.NewWriterSize(file, writeBufSize)
	var w io.Writer = buf
	var gz *gzip.Writer
	if s.gzip {
		gz = gzip.NewWriter(buf)
		w = gz
	}

	enc := newRowEncoder(s.encoding, w, table.Columns)
	if err := enc.header(); err != nil {
		return err
	}
	for i := 0; i < table.Len; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := enc.row(table.Row(i)); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := enc.flush(); err != nil {
		return err
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to close gzip stream: %w", err)
		}
	}
	return buf.Flush()
}

type rowEncoder interface {
	header() error
	row(values []any) error
	flush() error
}

func newRowEncoder(enc Encoding, w io.Writer, columns []string) rowEncoder {
	if enc == EncodingJSONL {
		return &jsonlEncoder{w: w, columns: columns}
	}
	return &csvEncoder{w: csv.NewWriter(w), columns: columns}
}

// csvEncoder writes a header row then one record per row; NULL is an empty cell
type csvEncoder struct {
	w       *csv.Writer
	columns []string
	record  []string
}

func (e *csvEncoder) header() error {
	return e.w.Write(e.columns)
}

func (e *csvEncoder) row(values []any) error {
	e.record = e.record[:0]
	for _, v := range values {
		e.record = append(e.record, model.FormatCell(v))
	}
	return e.w.Write(e.record)
}

func (e *csvEncoder) flush() error {
	e.w.Flush()
	return e.w.Error()
}

// jsonlEncoder writes one object per line with keys in column order
type jsonlEncoder struct {
	w       io.Writer
	columns []string
	line    []byte
}

func (e *jsonlEncoder) header() error { return nil }

func (e *jsonlEncoder) row(values []any) error {
	e.line = append(e.line[:0], '{')
	for i, v := range values {
		if i > 0 {
			e.line = append(e.line, ',')
		}
		key, err := json.Marshal(e.columns[i])
		if err != nil {
			return err
		}
		e.line = append(e.line, key...)
		e.line = append(e.line, ':')

		val, err := jsonValue(v)
		if err != nil {
			return err
		}
		e.line = append(e.line, val...)
	}
	e.line = append(e.line, '}', '\n')
	_, err := e.w.Write(e.line)
	return err
}

func (e *jsonlEncoder) flush() error { return nil }

func jsonValue(v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return []byte("null"), nil
	case string, int64:
		return json.Marshal(x)
	default:
		return json.Marshal(model.FormatCell(v))
	}
}
