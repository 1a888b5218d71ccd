/*
	Copyright 2015 Franc[e]sco (lolisamurai@tfwno.gf)
	This file is part of go-hachi.
	go-hachi is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.
	go-hachi is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.
	You should have received a copy of the GNU General Public License
	along with go-hachi. If not, see <http://www.gnu.org/licenses/>.
*/

package hachi

import (
	"fmt"
	"strings"
)

// An Instruction is any disassembled CHIP-8 instruction.
type Instruction interface {
	// Returns the address the instruction was read from.
	Address() uint16
	// Returns a detailed description of what the instruction does.
	Description() string
	// Returns a pseudo-asm representation of the instruction.
	String() string
	// Returns the instruction word, or the raw byte for a lone trailing byte.
	Opcode() uint16
	// Returns the size of the instruction in bytes.
	Size() int
	// Returns the ASCII representation of the raw data for this instruction.
	// Returns an empty string if the data is not printable ascii.
	ASCII() string
}

// RawData holds 1 or 2 bytes that the emulator would refuse to execute.
type RawData struct {
	addr uint16
	b    []byte
}

func (i RawData) Address() uint16     { return i.addr }
func (i RawData) String() string      { return fmt.Sprintf("DB % 02X", i.b) }
func (i RawData) Size() int           { return len(i.b) }
func (i RawData) Description() string { return "Unknown / Raw Data" }

// Opcode returns the data as a 16-bit integer. Normally, this function is
// used to get the opcode for an instruction, but RawData is a special case
// in which it might hold a single byte.
func (i RawData) Opcode() (res uint16) {
	res = uint16(i.b[0])
	if len(i.b) == 2 {
		res <<= 8
		res |= uint16(i.b[1])
	}
	return
}

func (i RawData) ASCII() (res string) {
	if isPrintableASCII(i.b) {
		res = string(i.b)
	}
	return
}

// -----------------------------------------------------------------------------

// operand layouts used by the mnemonic formats
const (
	noOperands = iota
	addrOperand
	regOperand
	regValueOperands
	regRegOperands
	drawOperands
)

type form struct {
	mnemonic    string
	operands    int
	description string
}

var (
	formCls  = form{"CLS", noOperands, "00E0: Clears the screen."}
	formRet  = form{"RET", noOperands, "00EE: Returns from a subroutine."}
	formJp   = form{"JP", addrOperand, "1NNN: Jumps to address NNN."}
	formCall = form{"CALL", addrOperand, "2NNN: Calls subroutine at NNN."}
	formSe   = form{"SE", regValueOperands,
		"3XNN: Skips the next instruction if VX equals NN."}
	formSne = form{"SNE", regValueOperands,
		"4XNN: Skips the next instruction if VX doesn't equal NN."}
	formSeRegister = form{"SE", regRegOperands,
		"5XY0: Skips the next instruction if VX equals VY."}
	formLd  = form{"LD", regValueOperands, "6XNN: Sets VX to NN."}
	formAdd = form{"ADD", regValueOperands,
		"7XNN: Adds NN to VX. VF is not affected."}
	formLdRegister = form{"LD", regRegOperands, "8XY0: Sets VX to the value of VY."}
	formOr         = form{"OR", regRegOperands,
		"8XY1: Sets VX to VX | VY (bit-wise OR). VF is reset to 0."}
	formAnd = form{"AND", regRegOperands,
		"8XY2: Sets VX to VX & VY (bit-wise AND). VF is reset to 0."}
	formXor = form{"XOR", regRegOperands,
		"8XY3: Sets VX to VX ^ VY (bit-wise XOR). VF is reset to 0."}
	formAddRegister = form{"ADD", regRegOperands,
		"8XY4: VX += VY. VF = 1 when there's a carry, 0 when there isn't."}
	formSubRegister = form{"SUB", regRegOperands,
		"8XY5: VX -= VY. VF = 0 when there's a borrow, 1 when there isn't."}
	formShr = form{"SHR", regRegOperands,
		"8XY6: VX = VY >> 1. VF = least significant bit prior to the shift."}
	formSubn = form{"SUBN", regRegOperands,
		"8XY7: VX = VY - VX. VF = 0 when there's a borrow, 1 when there isn't."}
	formShl = form{"SHL", regRegOperands,
		"8XYE: VX = VY << 1. VF = most significant bit prior to the shift."}
	formSneRegister = form{"SNE", regRegOperands,
		"9XY0: Skips the next instruction if VX doesn't equal VY."}
	formLdI  = form{"LD I,", addrOperand, "ANNN: Sets I to the address NNN."}
	formJpV0 = form{"JP V0,", addrOperand,
		"BNNN: Jumps to the address NNN plus V0."}
	formRnd = form{"RND", regValueOperands,
		"CXNN: Sets VX to a random number (0-FF) & NN (bit-wise AND)."}
	formDrw = form{"DRW", drawOperands,
		"DXYN: Draws N rows of sprite pointed by I at VX,VY. " +
			"VF = 1 when a lit pixel is turned off."}
	formSkp = form{"SKP", regOperand,
		"EX9E: Skips the next instruction if the key stored in VX is pressed."}
	formSknp = form{"SKNP", regOperand,
		"EXA1: Skips the next instruction if the key stored " +
			"in VX isn't pressed."}
	formLdDelayTimer = form{"LD %s, DT", regOperand,
		"FX07: Sets VX to the value of the delay timer."}
	formLdKeyboard = form{"LD %s, K", regOperand,
		"FX0A: A key release is awaited, and then key number is stored in VX."}
	formLdSetDelayTimer = form{"LD DT,", regOperand,
		"FX15: Sets the delay timer to VX."}
	formLdSetSoundTimer = form{"LD ST,", regOperand,
		"FX18: Sets the sound timer to VX."}
	formAddI   = form{"ADD I,", regOperand, "FX1E: Adds VX to I."}
	formLdFont = form{"LD I,CHAR", regOperand,
		"FX29: Sets I to the location of the sprite for the character in VX."}
	formLdBcd = form{"LD [I],BCD", regOperand,
		"FX33: Store BCD representation of VX in memory at I, I+1, and I+2."}
	formLdSetMemory = form{"LD [I],", regOperand,
		"FX55: Stores V0 to VX in memory starting at address I. " +
			"I is incremented by X+1."}
	formLdMemory = form{"LD %s,[I]", regOperand,
		"FX65: Fills V0 to VX with values from memory starting at address I. " +
			"I is incremented by X+1."}
)

// Decoded is a recognized instruction.
type Decoded struct {
	addr uint16
	op   Opcode
	form *form
}

func (i Decoded) Address() uint16     { return i.addr }
func (i Decoded) Opcode() uint16      { return i.op.Raw }
func (i Decoded) Size() int           { return 2 }
func (i Decoded) Description() string { return i.form.description }

// Decoded returns the instruction fields.
func (i Decoded) Decoded() Opcode { return i.op }

func (i Decoded) ASCII() (res string) {
	b := []byte{byte(i.op.Raw >> 8), byte(i.op.Raw)}
	if isPrintableASCII(b) {
		res = string(b)
	}
	return
}

func (i Decoded) String() string {
	op := i.op
	vx := fmt.Sprintf("V%1X", op.X)

	switch i.form.operands {
	case addrOperand:
		return fmt.Sprintf("%s %03X", i.form.mnemonic, op.Address)
	case regOperand:
		if strings.Contains(i.form.mnemonic, "%s") {
			return fmt.Sprintf(i.form.mnemonic, vx)
		}
		return fmt.Sprintf("%s %s", i.form.mnemonic, vx)
	case regValueOperands:
		return fmt.Sprintf("%s %s,%02X", i.form.mnemonic, vx, op.Value)
	case regRegOperands:
		return fmt.Sprintf("%s %s,V%1X", i.form.mnemonic, vx, op.Y)
	case drawOperands:
		return fmt.Sprintf("%s %s,V%1X,%1X", i.form.mnemonic, vx, op.Y, op.N)
	}
	return i.form.mnemonic
}

// -----------------------------------------------------------------------------

// lookupForm mirrors the dispatch in execute. It returns nil for every word
// the emulator would reject as invalid code.
func lookupForm(op Opcode) *form {
	switch op.Op {
	case 0x0:
		switch op.Value {
		case 0xE0:
			return &formCls
		case 0xEE:
			return &formRet
		}
	case 0x1:
		return &formJp
	case 0x2:
		return &formCall
	case 0x3:
		return &formSe
	case 0x4:
		return &formSne
	case 0x5:
		if op.N == 0 {
			return &formSeRegister
		}
	case 0x6:
		return &formLd
	case 0x7:
		return &formAdd
	case 0x8:
		switch op.N {
		case 0x0:
			return &formLdRegister
		case 0x1:
			return &formOr
		case 0x2:
			return &formAnd
		case 0x3:
			return &formXor
		case 0x4:
			return &formAddRegister
		case 0x5:
			return &formSubRegister
		case 0x6:
			return &formShr
		case 0x7:
			return &formSubn
		case 0xE:
			return &formShl
		}
	case 0x9:
		if op.N == 0 {
			return &formSneRegister
		}
	case 0xA:
		return &formLdI
	case 0xB:
		return &formJpV0
	case 0xC:
		return &formRnd
	case 0xD:
		return &formDrw
	case 0xE:
		switch op.Value {
		case 0x9E:
			return &formSkp
		case 0xA1:
			return &formSknp
		}
	case 0xF:
		switch op.Value {
		case 0x07:
			return &formLdDelayTimer
		case 0x0A:
			return &formLdKeyboard
		case 0x15:
			return &formLdSetDelayTimer
		case 0x18:
			return &formLdSetSoundTimer
		case 0x1E:
			return &formAddI
		case 0x29:
			return &formLdFont
		case 0x33:
			return &formLdBcd
		case 0x55:
			return &formLdSetMemory
		case 0x65:
			return &formLdMemory
		}
	}
	return nil
}

// decodeInstruction disassembles a single decoded word found at addr.
func decodeInstruction(addr uint16, op Opcode) Instruction {
	f := lookupForm(op)
	if f == nil {
		return RawData{addr: addr, b: []byte{byte(op.Raw >> 8), byte(op.Raw)}}
	}
	return Decoded{addr: addr, op: op, form: f}
}

// Disassemble disassembles raw data loaded at origin and returns an array of
// instructions. Every word is treated as an instruction, so sprite data
// embedded in the code shows up as whatever it happens to decode to. A lone
// trailing byte is returned as RawData.
func Disassemble(b []byte, origin uint16) (res []Instruction) {
	res = make([]Instruction, 0, (len(b)+1)/2)
	for i := 0; i < len(b); i += 2 {
		addr := origin + uint16(i)
		if i+1 == len(b) {
			res = append(res, RawData{addr: addr, b: b[i : i+1]})
			break
		}
		res = append(res, decodeInstruction(addr, Decode(b[i], b[i+1])))
	}
	return
}
