package transfer

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
)

// MemorySession is an in-memory remote tree. It backs tests and dry runs.
type MemorySession struct {
	mu       sync.Mutex
	protocol model.Protocol
	files    map[string][]byte // clean absolute path -> content
	dirs     map[string]bool
	failures map[string]error // "op path" -> injected error
	closed   int
}

func NewMemorySession(protocol model.Protocol) *MemorySession {
	return &MemorySession{
		protocol: protocol,
		files:    make(map[string][]byte),
		dirs:     map[string]bool{"/": true},
		failures: make(map[string]error),
	}
}

func clean(p string) string {
	return path.Clean("/" + p)
}

// Put seeds a file, creating parent directories.
func (m *MemorySession) Put(remotePath string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := clean(remotePath)
	m.mkdirAll(path.Dir(p))
	m.files[p] = append([]byte(nil), data...)
}

// MkdirAll seeds a directory and its parents.
func (m *MemorySession) MkdirAll(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(clean(dir))
}

// File returns a stored file.
func (m *MemorySession) File(remotePath string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[clean(remotePath)]
	return data, ok
}

// FailOn makes the next and every later op on remotePath fail with err.
func (m *MemorySession) FailOn(op, remotePath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+" "+clean(remotePath)] = err
}

// Closes returns how many times Close was called.
func (m *MemorySession) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MemorySession) mkdirAll(dir string) {
	for d := dir; ; d = path.Dir(d) {
		m.dirs[d] = true
		if d == "/" {
			return
		}
	}
}

func (m *MemorySession) check(op, p string) error {
	if m.closed > 0 {
		return errs.RemoteIO(op, p, fmt.Errorf("session closed"))
	}
	if err, ok := m.failures[op+" "+p]; ok {
		return errs.RemoteIO(op, p, err)
	}
	return nil
}

func (m *MemorySession) Protocol() model.Protocol {
	return m.protocol
}

func (m *MemorySession) List(dir string) ([]string, error) {
	entries, err := m.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

func (m *MemorySession) ReadDir(dir string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := clean(dir)
	if err := m.check("list", d); err != nil {
		return nil, err
	}
	if !m.dirs[d] {
		return nil, errs.RemoteIO("list", d, os.ErrNotExist)
	}

	var entries []Entry
	for p := range m.dirs {
		if p != d && path.Dir(p) == d {
			entries = append(entries, Entry{Name: path.Base(p), Dir: true})
		}
	}
	for p := range m.files {
		if path.Dir(p) == d {
			entries = append(entries, Entry{Name: path.Base(p)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MemorySession) Download(remotePath string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clean(remotePath)
	if err := m.check("download", p); err != nil {
		return nil, err
	}
	data, ok := m.files[p]
	if !ok {
		return nil, errs.RemoteIO("download", p, os.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemorySession) Upload(remotePath string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clean(remotePath)
	if err := m.check("upload", p); err != nil {
		return err
	}
	if !m.dirs[path.Dir(p)] {
		return errs.RemoteIO("upload", p, os.ErrNotExist)
	}
	m.files[p] = append([]byte(nil), data...)
	return nil
}

func (m *MemorySession) Delete(remotePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clean(remotePath)
	if err := m.check("delete", p); err != nil {
		return err
	}
	if _, ok := m.files[p]; !ok {
		return errs.RemoteIO("delete", p, os.ErrNotExist)
	}
	delete(m.files, p)
	return nil
}

func (m *MemorySession) Move(remotePath, newDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clean(remotePath)
	if err := m.check("move", p); err != nil {
		return err
	}
	data, ok := m.files[p]
	if !ok {
		return errs.RemoteIO("move", p, os.ErrNotExist)
	}
	d := clean(newDir)
	if !m.dirs[d] {
		return errs.RemoteIO("move", p, os.ErrNotExist)
	}
	delete(m.files, p)
	m.files[clean(model.JoinRemote(d, path.Base(p)))] = data
	return nil
}

func (m *MemorySession) Mkdir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := clean(dir)
	if err := m.check("mkdir", d); err != nil {
		return err
	}
	if m.dirs[d] {
		return errs.RemoteIO("mkdir", d, os.ErrExist)
	}
	if !m.dirs[path.Dir(d)] {
		return errs.RemoteIO("mkdir", d, os.ErrNotExist)
	}
	m.dirs[d] = true
	return nil
}

func (m *MemorySession) Rmdir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := clean(dir)
	if err := m.check("rmdir", d); err != nil {
		return err
	}
	if !m.dirs[d] || d == "/" {
		return errs.RemoteIO("rmdir", d, os.ErrNotExist)
	}
	prefix := strings.TrimSuffix(d, "/") + "/"
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return errs.RemoteIO("rmdir", d, fmt.Errorf("directory not empty"))
		}
	}
	for p := range m.dirs {
		if strings.HasPrefix(p, prefix) {
			return errs.RemoteIO("rmdir", d, fmt.Errorf("directory not empty"))
		}
	}
	delete(m.dirs, d)
	return nil
}

func (m *MemorySession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}
