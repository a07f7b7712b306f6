package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/chip8"
)

// forms maps a mnemonic and its operand shape to an operation. Shapes use
// V for a register, n for a number or label, and the literal names of the
// special operands.
var forms = map[string]chip8.Op{
	"CLS":       chip8.OpCLS,
	"RET":       chip8.OpRET,
	"SYS n":     chip8.OpSYS,
	"JP n":      chip8.OpJP,
	"JP V,n":    chip8.OpJPV0,
	"CALL n":    chip8.OpCALL,
	"SE V,n":    chip8.OpSEImm,
	"SE V,V":    chip8.OpSEReg,
	"SNE V,n":   chip8.OpSNEImm,
	"SNE V,V":   chip8.OpSNEReg,
	"LD V,n":    chip8.OpLDImm,
	"LD V,V":    chip8.OpLDReg,
	"LD I,n":    chip8.OpLDI,
	"LD V,DT":   chip8.OpLDVxDT,
	"LD V,K":    chip8.OpLDVxK,
	"LD DT,V":   chip8.OpLDDTVx,
	"LD ST,V":   chip8.OpLDSTVx,
	"LD F,V":    chip8.OpLDF,
	"LD B,V":    chip8.OpLDB,
	"LD [I],V":  chip8.OpLDIVx,
	"LD V,[I]":  chip8.OpLDVxI,
	"ADD V,n":   chip8.OpADDImm,
	"ADD V,V":   chip8.OpADDReg,
	"ADD I,V":   chip8.OpADDI,
	"OR V,V":    chip8.OpOR,
	"AND V,V":   chip8.OpAND,
	"XOR V,V":   chip8.OpXOR,
	"SUB V,V":   chip8.OpSUB,
	"SUBN V,V":  chip8.OpSUBN,
	"SHR V":     chip8.OpSHR,
	"SHR V,V":   chip8.OpSHR,
	"SHL V":     chip8.OpSHL,
	"SHL V,V":   chip8.OpSHL,
	"RND V,n":   chip8.OpRND,
	"DRW V,V,n": chip8.OpDRW,
	"SKP V":     chip8.OpSKP,
	"SKNP V":    chip8.OpSKNP,
}

// mnemonics is the set of instruction names accepted in pass 1.
var mnemonics = func() map[string]bool {
	m := make(map[string]bool)
	for form := range forms {
		name, _, _ := strings.Cut(form, " ")
		m[name] = true
	}
	return m
}()

var specialOperands = map[string]bool{
	"I": true, "[I]": true, "DT": true, "ST": true, "K": true, "F": true, "B": true,
}

type Assembler struct {
	// Origin is the address of the first emitted byte.
	Origin uint16
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		Origin: chip8.ProgramStart,
		labels: make(map[string]uint16),
	}
}

// Assemble translates source into a big-endian program image meant to be
// loaded at chip8.ProgramStart. The source map records the line that produced
// each emitted address.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	address := uint32(a.Origin)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address >= chip8.MemorySize {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		var length uint32
		switch p.mnemonic {
		case ".ORG":
			target, err := parseOrigin(p.operands, lineNo)
			if err != nil {
				return err
			}
			if target < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = target
			continue
		case ".BYTE":
			if len(p.operands) == 0 {
				return fmt.Errorf(".BYTE expects at least one operand on line %d", lineNo)
			}
			length = uint32(len(p.operands))
		case ".WORD":
			if len(p.operands) == 0 {
				return fmt.Errorf(".WORD expects at least one operand on line %d", lineNo)
			}
			length = uint32(len(p.operands)) * 2
		default:
			if !mnemonics[p.mnemonic] {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			length = 2
		}

		if address+length > chip8.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		ops := p.operands

		if p.mnemonic == ".ORG" {
			target, err := parseOrigin(ops, lineNo)
			if err != nil {
				return nil, nil, err
			}
			padding := int(target) - int(a.Origin) - len(program)
			if padding < 0 {
				return nil, nil, fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			program = append(program, make([]byte, padding)...)
			continue
		}

		sourceMap[a.Origin+uint16(len(program))] = lineNo

		switch p.mnemonic {
		case ".BYTE":
			for _, tok := range ops {
				val, err := a.parseImmediate(tok, lineNo)
				if err != nil {
					return nil, nil, err
				}
				if val > 0xFF {
					return nil, nil, fmt.Errorf(".BYTE value out of range on line %d: %s", lineNo, tok)
				}
				program = append(program, byte(val))
			}
			continue
		case ".WORD":
			for _, tok := range ops {
				val, err := a.parseImmediate(tok, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val>>8), byte(val))
			}
			continue
		}

		in, err := a.encode(p)
		if err != nil {
			return nil, nil, err
		}
		word := in.Encode()
		program = append(program, byte(word>>8), byte(word))
	}

	return program, sourceMap, nil
}

// encode resolves the operand shape of p to an instruction and fills its
// fields.
func (a *Assembler) encode(p parsedLine) (chip8.Instruction, error) {
	shapes := make([]string, len(p.operands))
	for i, tok := range p.operands {
		shapes[i] = operandShape(tok)
	}
	form := p.mnemonic
	if len(shapes) > 0 {
		form += " " + strings.Join(shapes, ",")
	}

	op, ok := forms[form]
	if !ok {
		return chip8.Instruction{}, fmt.Errorf("invalid operands for %s on line %d: %s",
			p.mnemonic, p.lineNo, strings.Join(p.operands, ", "))
	}

	in := chip8.Instruction{Op: op}
	regs := 0
	for i, tok := range p.operands {
		switch shapes[i] {
		case "V":
			reg, err := parseRegister(tok, p.lineNo)
			if err != nil {
				return in, err
			}
			if regs == 0 {
				in.X = reg
			} else {
				in.Y = reg
			}
			regs++
		case "n":
			val, err := a.parseImmediate(tok, p.lineNo)
			if err != nil {
				return in, err
			}
			if err := setImmediate(&in, val, tok, p.lineNo); err != nil {
				return in, err
			}
		}
	}

	switch op {
	case chip8.OpJPV0:
		if in.X != 0 {
			return in, fmt.Errorf("JP with offset only accepts V0 on line %d", p.lineNo)
		}
	case chip8.OpSHR, chip8.OpSHL:
		if regs == 1 {
			in.Y = in.X
		}
	}

	return in, nil
}

// setImmediate stores val in the field the operation reads, checking its
// width.
func setImmediate(in *chip8.Instruction, val uint16, tok string, lineNo int) error {
	switch in.Op {
	case chip8.OpDRW:
		if val > 0xF {
			return fmt.Errorf("sprite height out of range on line %d: %s", lineNo, tok)
		}
		in.N = uint8(val)
	case chip8.OpSEImm, chip8.OpSNEImm, chip8.OpLDImm, chip8.OpADDImm, chip8.OpRND:
		if val > 0xFF {
			return fmt.Errorf("byte immediate out of range on line %d: %s", lineNo, tok)
		}
		in.NN = byte(val)
	default:
		if val > 0xFFF {
			return fmt.Errorf("address out of range on line %d: %s", lineNo, tok)
		}
		in.NNN = val
	}
	return nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

// normalizeInstructionText turns commas into separators and glues "[ I ]"
// back into a single token.
func normalizeInstructionText(line string) string {
	line = strings.ReplaceAll(line, ",", " ")
	replacer := strings.NewReplacer("[ ", "[", " ]", "]")
	for {
		next := replacer.Replace(line)
		if next == line {
			return line
		}
		line = next
	}
}

func operandShape(token string) string {
	upper := strings.ToUpper(token)
	if specialOperands[upper] {
		return upper
	}
	if isRegister(upper) {
		return "V"
	}
	return "n"
}

func isRegister(token string) bool {
	if len(token) != 2 || (token[0] != 'V' && token[0] != 'v') {
		return false
	}
	_, err := strconv.ParseUint(token[1:], 16, 8)
	return err == nil
}

func parseRegister(token string, lineNo int) (uint8, error) {
	if !isRegister(token) {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	n, _ := strconv.ParseUint(token[1:], 16, 8)
	return uint8(n), nil
}

func parseNumber(token string) (uint64, error) {
	if hex, ok := strings.CutPrefix(token, "$"); ok {
		return strconv.ParseUint(hex, 16, 32)
	}
	if hex, ok := strings.CutPrefix(token, "#"); ok {
		return strconv.ParseUint(hex, 16, 32)
	}
	return strconv.ParseUint(token, 0, 32)
}

func (a *Assembler) parseImmediate(token string, lineNo int) (uint16, error) {
	if value, err := parseNumber(token); err == nil {
		if value > 0xFFFF {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

func parseOrigin(operands []string, lineNo int) (uint32, error) {
	if len(operands) != 1 {
		return 0, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}
	target, err := parseNumber(operands[0])
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, operands[0])
	}
	if target >= chip8.MemorySize {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", lineNo, operands[0])
	}
	return uint32(target), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
