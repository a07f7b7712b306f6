package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestGetPathInfo(t *testing.T) {
	dir := t.TempDir()
	full, parent, err := GetPathInfo(filepath.Join(dir, "roms", "..", "pong.ch8"))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pong.ch8"), full)
	assert.Equal(t, dir, parent)
}

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()

	bin := filepath.Join(dir, "clear.ch8")
	assert.NoError(t, os.WriteFile(bin, []byte{0x00, 0xE0}, 0o644))
	got, err := LoadProgram(bin)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xE0}, got)

	src := filepath.Join(dir, "loop.asm")
	assert.NoError(t, os.WriteFile(src, []byte("start: JP start\n"), 0o644))
	got, err = LoadProgram(src)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x00}, got)

	bad := filepath.Join(dir, "bad.asm")
	assert.NoError(t, os.WriteFile(bad, []byte("NOPE\n"), 0o644))
	_, err = LoadProgram(bad)
	assert.Equal(t, true, err != nil)

	big := filepath.Join(dir, "big.ch8")
	assert.NoError(t, os.WriteFile(big, make([]byte, 4000), 0o644))
	_, err = LoadProgram(big)
	assert.Equal(t, true, err != nil)

	_, err = LoadProgram(filepath.Join(dir, "missing.ch8"))
	assert.Equal(t, true, err != nil)
}

func TestIsSource(t *testing.T) {
	assert.Equal(t, true, IsSource("a/b/game.ASM"))
	assert.Equal(t, true, IsSource("x.s"))
	assert.Equal(t, false, IsSource("pong.ch8"))
	assert.Equal(t, false, IsSource("README"))
}
