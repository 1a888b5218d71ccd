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

import "fmt"

// An Opcode is a decoded CHIP-8 instruction word. Every field is a view of the
// same big-endian 16-bit word and all of them are computed regardless of which
// instruction the word encodes.
type Opcode struct {
	// The raw instruction word.
	Raw uint16
	// Op is the high nibble of the first byte.
	Op uint8
	// X is the low nibble of the first byte, usually a register index.
	X uint8
	// Y is the high nibble of the second byte, usually a register index.
	Y uint8
	// N is the low nibble of the second byte (4-bit immediate).
	N uint8
	// Value is the whole second byte (NN, 8-bit immediate).
	Value uint8
	// Address is the low 12 bits of the word (NNN).
	Address uint16
}

// Decode splits the two bytes of an instruction into its fields.
func Decode(b0, b1 byte) Opcode {
	return Opcode{
		Raw:     uint16(b0)<<8 | uint16(b1),
		Op:      b0 >> 4,
		X:       b0 & 0x0F,
		Y:       b1 >> 4,
		N:       b1 & 0x0F,
		Value:   b1,
		Address: uint16(b0&0x0F)<<8 | uint16(b1),
	}
}

// DecodeWord is Decode for an already assembled instruction word.
func DecodeWord(w uint16) Opcode { return Decode(byte(w>>8), byte(w)) }

func (o Opcode) String() string { return fmt.Sprintf("%04X", o.Raw) }
