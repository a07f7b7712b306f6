package chip8

import (
	"fmt"
	"strings"

	isa "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies one of the 35 instruction forms.
type Op uint8

const (
	OpInvalid Op = iota
	OpSYS        // 0NNN
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1NNN
	OpCALL       // 2NNN
	OpSEImm      // 3XNN
	OpSNEImm     // 4XNN
	OpSEReg      // 5XY0
	OpLDImm      // 6XNN
	OpADDImm     // 7XNN
	OpLDReg      // 8XY0
	OpOR         // 8XY1
	OpAND        // 8XY2
	OpXOR        // 8XY3
	OpADDReg     // 8XY4
	OpSUB        // 8XY5
	OpSHR        // 8XY6
	OpSUBN       // 8XY7
	OpSHL        // 8XYE
	OpSNEReg     // 9XY0
	OpLDI        // ANNN
	OpJPV0       // BNNN
	OpRND        // CXNN
	OpDRW        // DXYN
	OpSKP        // EX9E
	OpSKNP       // EXA1
	OpLDVxDT     // FX07
	OpLDVxK      // FX0A
	OpLDDTVx     // FX15
	OpLDSTVx     // FX18
	OpADDI       // FX1E
	OpLDF        // FX29
	OpLDB        // FX33
	OpLDIVx      // FX55
	OpLDVxI      // FX65
)

// mnemonics holds the assembler name of every operation, taken from the
// retrogolib instruction set definitions.
var mnemonics = [...]string{
	OpInvalid: "???",
	OpSYS:     "SYS",
	OpCLS:     upperName(isa.ClsInst),
	OpRET:     upperName(isa.RetInst),
	OpJP:      upperName(isa.JpInst),
	OpCALL:    upperName(isa.CallInst),
	OpSEImm:   upperName(isa.SeInst),
	OpSNEImm:  upperName(isa.SneInst),
	OpSEReg:   upperName(isa.SeInst),
	OpLDImm:   upperName(isa.LdInst),
	OpADDImm:  upperName(isa.AddInst),
	OpLDReg:   upperName(isa.LdInst),
	OpOR:      upperName(isa.OrInst),
	OpAND:     upperName(isa.AndInst),
	OpXOR:     upperName(isa.XorInst),
	OpADDReg:  upperName(isa.AddInst),
	OpSUB:     upperName(isa.SubInst),
	OpSHR:     upperName(isa.ShrInst),
	OpSUBN:    upperName(isa.SubnInst),
	OpSHL:     upperName(isa.ShlInst),
	OpSNEReg:  upperName(isa.SneInst),
	OpLDI:     upperName(isa.LdInst),
	OpJPV0:    upperName(isa.JpInst),
	OpRND:     upperName(isa.RndInst),
	OpDRW:     upperName(isa.DrwInst),
	OpSKP:     upperName(isa.SkpInst),
	OpSKNP:    upperName(isa.SknpInst),
	OpLDVxDT:  upperName(isa.LdInst),
	OpLDVxK:   upperName(isa.LdInst),
	OpLDDTVx:  upperName(isa.LdInst),
	OpLDSTVx:  upperName(isa.LdInst),
	OpADDI:    upperName(isa.AddInst),
	OpLDF:     upperName(isa.LdInst),
	OpLDB:     upperName(isa.LdInst),
	OpLDIVx:   upperName(isa.LdInst),
	OpLDVxI:   upperName(isa.LdInst),
}

func upperName(ins *isa.Instruction) string {
	return strings.ToUpper(ins.Name)
}

// Mnemonic returns the assembler name of the operation.
func (op Op) Mnemonic() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}
	return mnemonics[OpInvalid]
}

func (op Op) String() string {
	return op.Mnemonic()
}

// Instruction is a decoded opcode. Every field is extracted from the opcode;
// which of them are meaningful depends on Op.
type Instruction struct {
	Op  Op
	X   uint8
	Y   uint8
	N   uint8
	NN  byte
	NNN uint16
}

// Decode splits opcode into its fields and classifies it. Bit patterns outside
// the instruction set return ErrUnknownOpcode.
func Decode(opcode uint16) (Instruction, error) {
	in := Instruction{
		X:   uint8(opcode>>8) & 0x0F,
		Y:   uint8(opcode>>4) & 0x0F,
		N:   uint8(opcode) & 0x0F,
		NN:  byte(opcode),
		NNN: opcode & 0x0FFF,
	}

	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			in.Op = OpCLS
		case 0x00EE:
			in.Op = OpRET
		default:
			in.Op = OpSYS
		}
	case 0x1000:
		in.Op = OpJP
	case 0x2000:
		in.Op = OpCALL
	case 0x3000:
		in.Op = OpSEImm
	case 0x4000:
		in.Op = OpSNEImm
	case 0x5000:
		if in.N == 0 {
			in.Op = OpSEReg
		}
	case 0x6000:
		in.Op = OpLDImm
	case 0x7000:
		in.Op = OpADDImm
	case 0x8000:
		switch in.N {
		case 0x0:
			in.Op = OpLDReg
		case 0x1:
			in.Op = OpOR
		case 0x2:
			in.Op = OpAND
		case 0x3:
			in.Op = OpXOR
		case 0x4:
			in.Op = OpADDReg
		case 0x5:
			in.Op = OpSUB
		case 0x6:
			in.Op = OpSHR
		case 0x7:
			in.Op = OpSUBN
		case 0xE:
			in.Op = OpSHL
		}
	case 0x9000:
		if in.N == 0 {
			in.Op = OpSNEReg
		}
	case 0xA000:
		in.Op = OpLDI
	case 0xB000:
		in.Op = OpJPV0
	case 0xC000:
		in.Op = OpRND
	case 0xD000:
		in.Op = OpDRW
	case 0xE000:
		switch in.NN {
		case 0x9E:
			in.Op = OpSKP
		case 0xA1:
			in.Op = OpSKNP
		}
	case 0xF000:
		switch in.NN {
		case 0x07:
			in.Op = OpLDVxDT
		case 0x0A:
			in.Op = OpLDVxK
		case 0x15:
			in.Op = OpLDDTVx
		case 0x18:
			in.Op = OpLDSTVx
		case 0x1E:
			in.Op = OpADDI
		case 0x29:
			in.Op = OpLDF
		case 0x33:
			in.Op = OpLDB
		case 0x55:
			in.Op = OpLDIVx
		case 0x65:
			in.Op = OpLDVxI
		}
	}

	if in.Op == OpInvalid {
		return in, fmt.Errorf("%w: 0x%04X", ErrUnknownOpcode, opcode)
	}
	return in, nil
}

// Encode is the inverse of Decode. Fields that the operation does not use are
// ignored.
func (in Instruction) Encode() uint16 {
	x := uint16(in.X&0x0F) << 8
	xy := x | uint16(in.Y&0x0F)<<4
	nnn := in.NNN & 0x0FFF
	nn := uint16(in.NN)

	switch in.Op {
	case OpSYS:
		return nnn
	case OpCLS:
		return 0x00E0
	case OpRET:
		return 0x00EE
	case OpJP:
		return 0x1000 | nnn
	case OpCALL:
		return 0x2000 | nnn
	case OpSEImm:
		return 0x3000 | x | nn
	case OpSNEImm:
		return 0x4000 | x | nn
	case OpSEReg:
		return 0x5000 | xy
	case OpLDImm:
		return 0x6000 | x | nn
	case OpADDImm:
		return 0x7000 | x | nn
	case OpLDReg:
		return 0x8000 | xy
	case OpOR:
		return 0x8001 | xy
	case OpAND:
		return 0x8002 | xy
	case OpXOR:
		return 0x8003 | xy
	case OpADDReg:
		return 0x8004 | xy
	case OpSUB:
		return 0x8005 | xy
	case OpSHR:
		return 0x8006 | xy
	case OpSUBN:
		return 0x8007 | xy
	case OpSHL:
		return 0x800E | xy
	case OpSNEReg:
		return 0x9000 | xy
	case OpLDI:
		return 0xA000 | nnn
	case OpJPV0:
		return 0xB000 | nnn
	case OpRND:
		return 0xC000 | x | nn
	case OpDRW:
		return 0xD000 | xy | uint16(in.N&0x0F)
	case OpSKP:
		return 0xE09E | x
	case OpSKNP:
		return 0xE0A1 | x
	case OpLDVxDT:
		return 0xF007 | x
	case OpLDVxK:
		return 0xF00A | x
	case OpLDDTVx:
		return 0xF015 | x
	case OpLDSTVx:
		return 0xF018 | x
	case OpADDI:
		return 0xF01E | x
	case OpLDF:
		return 0xF029 | x
	case OpLDB:
		return 0xF033 | x
	case OpLDIVx:
		return 0xF055 | x
	case OpLDVxI:
		return 0xF065 | x
	}
	return 0
}

// String disassembles the instruction, e.g. "LD V1, $0A" or "DRW V0, V1, $5".
func (in Instruction) String() string {
	name := in.Op.Mnemonic()
	switch in.Op {
	case OpCLS, OpRET:
		return name
	case OpSYS, OpJP, OpCALL:
		return fmt.Sprintf("%s $%03X", name, in.NNN)
	case OpSEImm, OpSNEImm, OpLDImm, OpADDImm, OpRND:
		return fmt.Sprintf("%s V%X, $%02X", name, in.X, in.NN)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSUBN, OpSHR, OpSHL:
		return fmt.Sprintf("%s V%X, V%X", name, in.X, in.Y)
	case OpLDI:
		return fmt.Sprintf("%s I, $%03X", name, in.NNN)
	case OpJPV0:
		return fmt.Sprintf("%s V0, $%03X", name, in.NNN)
	case OpDRW:
		return fmt.Sprintf("%s V%X, V%X, $%X", name, in.X, in.Y, in.N)
	case OpSKP, OpSKNP:
		return fmt.Sprintf("%s V%X", name, in.X)
	case OpLDVxDT:
		return fmt.Sprintf("%s V%X, DT", name, in.X)
	case OpLDVxK:
		return fmt.Sprintf("%s V%X, K", name, in.X)
	case OpLDDTVx:
		return fmt.Sprintf("%s DT, V%X", name, in.X)
	case OpLDSTVx:
		return fmt.Sprintf("%s ST, V%X", name, in.X)
	case OpADDI:
		return fmt.Sprintf("%s I, V%X", name, in.X)
	case OpLDF:
		return fmt.Sprintf("%s F, V%X", name, in.X)
	case OpLDB:
		return fmt.Sprintf("%s B, V%X", name, in.X)
	case OpLDIVx:
		return fmt.Sprintf("%s [I], V%X", name, in.X)
	case OpLDVxI:
		return fmt.Sprintf("%s V%X, [I]", name, in.X)
	}
	return name
}

// Disassemble decodes a program image loaded at origin into one line per
// opcode. Words that do not decode are emitted as data.
func Disassemble(program []byte, origin uint16) []string {
	lines := make([]string, 0, len(program)/2+1)
	for i := 0; i < len(program); i += 2 {
		addr := origin + uint16(i)
		if i+1 >= len(program) {
			lines = append(lines, fmt.Sprintf("%03X: %02X      .BYTE $%02X", addr, program[i], program[i]))
			break
		}
		opcode := uint16(program[i])<<8 | uint16(program[i+1])
		in, err := Decode(opcode)
		text := in.String()
		if err != nil {
			text = fmt.Sprintf(".WORD $%04X", opcode)
		}
		lines = append(lines, fmt.Sprintf("%03X: %04X    %s", addr, opcode, text))
	}
	return lines
}
