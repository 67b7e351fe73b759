package vm

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileTable maps open file names to line readers. A fork shares its
// parent's table, so the table locks internally.
type FileTable struct {
	mu      sync.Mutex
	baseDir string
	open    map[string]*openFile
}

type openFile struct {
	f *os.File
	r *bufio.Reader
}

// NewFileTable resolves relative names against baseDir ("" means the
// working directory).
func NewFileTable(baseDir string) *FileTable {
	return &FileTable{baseDir: baseDir, open: make(map[string]*openFile)}
}

func (t *FileTable) resolve(name string) string {
	if t.baseDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(t.baseDir, name)
}

func (t *FileTable) Open(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.open[name]; ok {
		return newError(CodeFileAlreadyOpen, "file %q is already open", name)
	}
	f, err := os.Open(t.resolve(name))
	if err != nil {
		return newError(CodeFileIO, "open %q: %v", name, err)
	}
	t.open[name] = &openFile{f: f, r: bufio.NewReader(f)}
	return nil
}

// ReadLine returns the next line without its terminator. ok is false
// at end of file.
func (t *FileTable) ReadLine(name string) (line string, ok bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	of, found := t.open[name]
	if !found {
		return "", false, newError(CodeFileNotOpen, "file %q is not open", name)
	}
	line, rerr := of.r.ReadString('\n')
	if rerr != nil && !errors.Is(rerr, io.EOF) {
		return "", false, newError(CodeFileIO, "read %q: %v", name, rerr)
	}
	if rerr != nil && line == "" {
		return "", false, nil
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

func (t *FileTable) Close(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	of, ok := t.open[name]
	if !ok {
		return newError(CodeFileNotOpen, "file %q is not open", name)
	}
	delete(t.open, name)
	if err := of.f.Close(); err != nil {
		return newError(CodeFileIO, "close %q: %v", name, err)
	}
	return nil
}

// Names returns the open file names in sorted order.
func (t *FileTable) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.open))
	for name := range t.open {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CloseAll closes every handle a finished run left open.
func (t *FileTable) CloseAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var errs []error
	for name, of := range t.open {
		if err := of.f.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(t.open, name)
	}
	return errors.Join(errs...)
}
