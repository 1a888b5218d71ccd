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

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Francesco149/go-hachi/hachi"
	"github.com/retroenv/retrogolib/assert"
)

func TestWriteDisassembly(t *testing.T) {
	var buf bytes.Buffer
	program := []byte{
		0x00, 0xE0, // CLS
		0xA2, 0x0A, // LD I,20A
		0x48, 0x69, // "Hi"
		0x51, 0x21, // not an instruction
		0x7F,
	}
	writeDisassembly(&buf, hachi.Disassemble(program, hachi.ProgramStart))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// header, separator and one line per instruction
	assert.Equal(t, 7, len(lines))
	assert.Contains(t, lines[0], "ADDR")

	assert.Contains(t, lines[2], "0200")
	assert.Contains(t, lines[2], "CLS")
	assert.Contains(t, lines[3], "LD I, 20A")
	assert.Contains(t, lines[4], "`Hi`")
	assert.Contains(t, lines[5], "DB 51 21")
	assert.Contains(t, lines[6], "0208")
	assert.Contains(t, lines[6], "DB 7F")
}
