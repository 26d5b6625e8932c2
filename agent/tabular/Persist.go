package tabular

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// FormatVersion is the version of the table file format written by Save
const FormatVersion int = 1

var (
	// ErrTableNotFound is returned by Load when there is no table file
	ErrTableNotFound = errors.New("table not found")

	// ErrCorruptTable is returned by Load when a table file exists but
	// cannot be decoded
	ErrCorruptTable = errors.New("corrupt table")
)

// header is written as a single JSON line at the start of the
// decompressed stream, so that files can be identified with zstdcat
type header struct {
	Version int `json:"version"`
	Actions int `json:"actions"`
	States  int `json:"states"`
}

// Entry is a single row of a Table
type Entry struct {
	State  State
	Values []float64
}

// Save writes the table to path. The file is first written to a
// temporary file in the same directory and then renamed, so a failed
// Save never leaves a partial table behind.
func (t *Table) Save(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".qtable-*")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := t.encode(tmp); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// encode writes the compressed header and entries to w
func (t *Table) encode(w io.Writer) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriter(enc)
	h, err := json.Marshal(header{FormatVersion, t.actions, len(t.values)})
	if err != nil {
		return err
	}
	if _, err := bw.Write(append(h, '\n')); err != nil {
		return err
	}

	states := t.States()
	entries := make([]Entry, len(states))
	for i, s := range states {
		entries[i] = Entry{State: s, Values: t.values[s]}
	}
	if err := gob.NewEncoder(bw).Encode(entries); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

// Load reads a table written by Save. A missing file results in an
// error wrapping ErrTableNotFound; a file which cannot be decoded
// results in an error wrapping ErrCorruptTable.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load: %w: %v", ErrTableNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer f.Close()

	t, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("load: %w: %v: %v", ErrCorruptTable, path, err)
	}
	return t, nil
}

func decode(r io.Reader) (*Table, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported version %d", h.Version)
	}
	if h.Actions < 1 {
		return nil, fmt.Errorf("header: %d actions", h.Actions)
	}

	var entries []Entry
	if err := gob.NewDecoder(br).Decode(&entries); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	if len(entries) != h.States {
		return nil, fmt.Errorf("header lists %d states, have %d", h.States,
			len(entries))
	}

	t := NewTable(h.Actions)
	for _, e := range entries {
		if len(e.Values) != h.Actions {
			return nil, fmt.Errorf("state %v has %d values, want %d", e.State,
				len(e.Values), h.Actions)
		}
		if _, ok := t.values[e.State]; ok {
			return nil, fmt.Errorf("duplicate state %v", e.State)
		}
		t.values[e.State] = e.Values
	}
	return t, nil
}
