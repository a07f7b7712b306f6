// Package romlib keeps an in-memory catalog of CHIP-8 program images, usually
// loaded from a directory of .ch8 files, for frontends that switch between
// programs at runtime.
package romlib

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"gochip8/pkg/chip8"
)

// MaxROMBytes is the largest image that fits between ProgramStart and the end
// of memory.
const MaxROMBytes = chip8.MemorySize - chip8.ProgramStart

// validFilename accepts plain file names as ROM collections name them, e.g.
// "Space Invaders [David Winter].ch8". Path separators are never allowed.
var validFilename = regexp.MustCompile(`^[a-zA-Z0-9_(\[][a-zA-Z0-9_ ()\[\]\-.,'&!]{0,79}$`)

var (
	ErrROMNotFound     = errors.New("rom not found")
	ErrInvalidFilename = errors.New("invalid rom filename")
	ErrROMTooLarge     = errors.New("rom too large")
	ErrEmptyROM        = errors.New("rom is empty")
)

type Entry struct {
	Data     []byte
	Modified time.Time
}

// Library is safe for concurrent use.
type Library struct {
	mu    sync.RWMutex
	roms  map[string]*Entry
	bytes int
}

func New() *Library {
	return &Library{
		roms: make(map[string]*Entry),
	}
}

// Add stores a copy of data under name, replacing any previous image.
func (l *Library) Add(name string, data []byte) error {
	if !validFilename.MatchString(name) {
		return ErrInvalidFilename
	}
	if len(data) == 0 {
		return ErrEmptyROM
	}
	if len(data) > MaxROMBytes {
		return ErrROMTooLarge
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.roms[name]; ok {
		l.bytes -= len(old.Data)
	}
	l.roms[name] = &Entry{
		Data:     slices.Clone(data),
		Modified: time.Now(),
	}
	l.bytes += len(data)
	return nil
}

// Read returns a copy of the named image.
func (l *Library) Read(name string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !validFilename.MatchString(name) {
		return nil, ErrInvalidFilename
	}
	entry, ok := l.roms[name]
	if !ok {
		return nil, ErrROMNotFound
	}
	return slices.Clone(entry.Data), nil
}

func (l *Library) Size(name string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !validFilename.MatchString(name) {
		return 0, ErrInvalidFilename
	}
	entry, ok := l.roms[name]
	if !ok {
		return 0, ErrROMNotFound
	}
	return len(entry.Data), nil
}

func (l *Library) Remove(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.roms[name]
	if !ok {
		return ErrROMNotFound
	}
	l.bytes -= len(entry.Data)
	delete(l.roms, name)
	return nil
}

// List returns the ROM names in sorted order.
func (l *Library) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.roms))
	for name := range l.roms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.roms)
}

// TotalBytes is the combined size of every stored image.
func (l *Library) TotalBytes() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bytes
}

// Next returns the name after current in sorted order, wrapping around. An
// unknown current name selects the first ROM.
func (l *Library) Next(current string) (string, bool) {
	return l.step(current, 1)
}

// Prev is the reverse of Next.
func (l *Library) Prev(current string) (string, bool) {
	return l.step(current, -1)
}

func (l *Library) step(current string, dir int) (string, bool) {
	names := l.List()
	if len(names) == 0 {
		return "", false
	}
	i, found := slices.BinarySearch(names, current)
	if !found {
		return names[0], true
	}
	i = (i + dir + len(names)) % len(names)
	return names[i], true
}

// LoadFrom adds every regular file in dir whose name is valid and whose size
// fits in memory. Other files are skipped. It returns the number of ROMs
// added.
func (l *Library) LoadFrom(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !validFilename.MatchString(name) {
			continue
		}

		fullPath := filepath.Join(dir, name)
		raw, err := os.ReadFile(fullPath)
		if err != nil {
			continue
		}
		if err := l.Add(name, raw); err != nil {
			continue
		}

		if info, err := entry.Info(); err == nil {
			l.mu.Lock()
			l.roms[name].Modified = info.ModTime()
			l.mu.Unlock()
		}
		added++
	}

	return added, nil
}

// Modified returns the modification time recorded for name.
func (l *Library) Modified(name string) (time.Time, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.roms[name]
	if !ok {
		return time.Time{}, ErrROMNotFound
	}
	return entry.Modified, nil
}
