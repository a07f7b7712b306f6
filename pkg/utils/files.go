package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// IsSource reports whether path names assembler source rather than a binary
// program image.
func IsSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asm", ".s", ".src":
		return true
	}
	return false
}

// LoadProgram reads a program image from path. Assembler source is assembled
// first. The result is checked to fit in memory above chip8.ProgramStart.
func LoadProgram(path string) ([]byte, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}

	program := raw
	if IsSource(fullPath) {
		program, _, err = asm.Assemble(string(raw))
		if err != nil {
			return nil, fmt.Errorf("assembling %s: %w", filepath.Base(fullPath), err)
		}
	}

	if limit := chip8.MemorySize - chip8.ProgramStart; len(program) > limit {
		return nil, fmt.Errorf("%s is %d bytes, at most %d fit in memory", filepath.Base(fullPath), len(program), limit)
	}
	return program, nil
}
