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
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		word uint16
		want string
	}{
		{0x00E0, "CLS"},
		{0x03E0, "CLS"},
		{0x00EE, "RET"},
		{0x1234, "JP 234"},
		{0x2ABC, "CALL ABC"},
		{0x3A12, "SE VA,12"},
		{0x4A12, "SNE VA,12"},
		{0x5AB0, "SE VA,VB"},
		{0x6FFF, "LD VF,FF"},
		{0x7001, "ADD V0,01"},
		{0x8120, "LD V1,V2"},
		{0x8121, "OR V1,V2"},
		{0x8122, "AND V1,V2"},
		{0x8123, "XOR V1,V2"},
		{0x8124, "ADD V1,V2"},
		{0x8125, "SUB V1,V2"},
		{0x8126, "SHR V1,V2"},
		{0x8127, "SUBN V1,V2"},
		{0x812E, "SHL V1,V2"},
		{0x9120, "SNE V1,V2"},
		{0xA123, "LD I, 123"},
		{0xB123, "JP V0, 123"},
		{0xC30F, "RND V3,0F"},
		{0xD125, "DRW V1,V2,5"},
		{0xE59E, "SKP V5"},
		{0xE5A1, "SKNP V5"},
		{0xF507, "LD V5, DT"},
		{0xF50A, "LD V5, K"},
		{0xF515, "LD DT, V5"},
		{0xF518, "LD ST, V5"},
		{0xF51E, "ADD I, V5"},
		{0xF529, "LD I,CHAR V5"},
		{0xF533, "LD [I],BCD V5"},
		{0xF555, "LD [I], V5"},
		{0xF565, "LD V5,[I]"},
		{0x5121, "DB 51 21"},
		{0xF0FF, "DB F0 FF"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			res := Disassemble([]byte{byte(tt.word >> 8), byte(tt.word)}, 0x300)
			assert.Equal(t, 1, len(res))

			ins := res[0]
			assert.Equal(t, tt.want, ins.String())
			assert.Equal(t, uint16(0x300), ins.Address())
			assert.Equal(t, tt.word, ins.Opcode())
			assert.Equal(t, 2, ins.Size())
			assert.True(t, ins.Description() != "")
		})
	}
}

func TestDisassembleTrailingByte(t *testing.T) {
	res := Disassemble([]byte{0x00, 0xE0, 0x41}, ProgramStart)
	assert.Equal(t, 2, len(res))

	assert.Equal(t, "CLS", res[0].String())
	raw, ok := res[1].(RawData)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x202), raw.Address())
	assert.Equal(t, 1, raw.Size())
	assert.Equal(t, uint16(0x41), raw.Opcode())
	assert.Equal(t, "DB 41", raw.String())
	assert.Equal(t, "A", raw.ASCII())
}

func TestDisassembleASCII(t *testing.T) {
	res := Disassemble([]byte("Hi\x00\x01"), 0)
	assert.Equal(t, 2, len(res))
	assert.Equal(t, "Hi", res[0].ASCII())
	assert.Equal(t, "", res[1].ASCII())
}

// Every word the disassembler can't name must be rejected by the emulator and
// the other way around.
func TestDisassemblerMatchesEmulator(t *testing.T) {
	c := newTestChip8(t)

	for w := 0; w <= 0xFFFF; w++ {
		op := DecodeWord(uint16(w))
		c.Stack = c.Stack[:0]

		_, err := c.execute(ProgramStart, op)
		var bad *BadCodeErr
		rejected := errors.As(err, &bad)

		assert.Equal(t, rejected, lookupForm(op) == nil)
		_, isRaw := decodeInstruction(ProgramStart, op).(RawData)
		assert.Equal(t, rejected, isRaw)
	}
}
