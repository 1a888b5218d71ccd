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
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestNew(t *testing.T) {
	c := newTestChip8(t)

	assert.Equal(t, uint16(ProgramStart), c.PC)
	assert.Equal(t, uint16(0), c.I)
	assert.Equal(t, [16]uint8{}, c.V)
	assert.Equal(t, 0, len(c.Stack))
	assert.Equal(t, 16, cap(c.Stack))
	assert.Equal(t, "test", c.Driver())
	assert.Equal(t, "test", c.Audio())

	if diff := cmp.Diff(fontSet[:], c.Memory[FontAddress:FontAddress+len(fontSet)]); diff != "" {
		t.Errorf("font: (-want, +got)\n%s", diff)
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New("missing", "null", nil)
	assert.Error(t, err)
	_, err = New("null", "missing", nil)
	assert.Error(t, err)
	_, err = New("null", "null", &Chip8Settings{CyclesPerFrame: 0, StackSize: 16})
	assert.Error(t, err)
	_, err = New("null", "null", &Chip8Settings{CyclesPerFrame: 1, StackSize: 0})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"fits", MemorySize - ProgramStart, false},
		{"too large", MemorySize - ProgramStart + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChip8(t)
			program := bytes.Repeat([]byte{0xAB}, tt.size)

			size, err := c.LoadReader(bytes.NewReader(program))
			if tt.wantErr {
				var oom *OutOfMemoryErr
				assert.True(t, errors.As(err, &oom))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, int64(tt.size), size)
			assert.Equal(t, uint16(ProgramStart), c.PC)
			if diff := cmp.Diff(program, c.Memory[ProgramStart:ProgramStart+tt.size]); diff != "" {
				t.Errorf("memory: (-want, +got)\n%s", diff)
			}
		})
	}
}

func TestClearThenSelfJump(t *testing.T) {
	c := newTestChip8(t,
		0x00E0, // CLS
		0x1202, // JP 202
	)
	c.Screen[3] = 0xFF

	assert.NoError(t, c.Frame(Keypad{}))
	assert.Equal(t, Screen{}, c.Screen)
	assert.Equal(t, 1, testDrv.updates)
	// the frame ends right after CLS
	assert.Equal(t, uint16(0x202), c.PC)

	for i := 0; i < 10; i++ {
		assert.NoError(t, c.Frame(Keypad{}))
	}
	assert.Equal(t, Screen{}, c.Screen)
	assert.Equal(t, uint64(11), c.Frames())
	assert.Equal(t, 11, testAud.frames)
}

func TestAddImmediate(t *testing.T) {
	c := newTestChip8(t,
		0x6F42, // LD VF,42
		0x6005, // LD V0,05
		0x7005, // ADD V0,05
		0x61FF, // LD V1,FF
		0x7102, // ADD V1,02
	)
	for i := 0; i < 5; i++ {
		step(t, c)
	}

	assert.Equal(t, uint8(10), c.V[0])
	assert.Equal(t, uint8(1), c.V[1])
	assert.Equal(t, uint8(0x42), c.V[0xF])
}

func TestReturnWithEmptyStack(t *testing.T) {
	c := newTestChip8(t, 0x00EE)

	err := c.Frame(Keypad{})
	var underflow *StackUnderflowErr
	assert.True(t, errors.As(err, &underflow))
	assert.Equal(t, uint16(0x200), underflow.PC)
}

func TestCallReturn(t *testing.T) {
	c := newTestChip8(t,
		0x2206, // 200: CALL 206
		0x6101, // 202: LD V1,01
		0x1204, // 204: JP 204
		0x6002, // 206: LD V0,02
		0x00EE, // 208: RET
	)

	step(t, c)
	assert.Equal(t, uint16(0x206), c.PC)
	assert.Equal(t, []uint16{0x202}, c.Stack)

	step(t, c)
	step(t, c)
	assert.Equal(t, uint16(0x202), c.PC)
	assert.Equal(t, 0, len(c.Stack))

	step(t, c)
	assert.Equal(t, uint8(2), c.V[0])
	assert.Equal(t, uint8(1), c.V[1])
}

func TestStackOverflow(t *testing.T) {
	c := newTestChip8(t, 0x2200) // CALL 200

	err := c.Frame(Keypad{})
	var overflow *StackOverflowErr
	assert.True(t, errors.As(err, &overflow))
	assert.Equal(t, 16, len(c.Stack))
}

func TestBadCode(t *testing.T) {
	for _, w := range []uint16{0x0000, 0x0123, 0x00E1, 0x5121, 0x8128, 0x812F,
		0x912F, 0xE000, 0xE19F, 0xF0FF, 0xF019} {
		c := newTestChip8(t, w)

		err := c.Frame(Keypad{})
		var bad *BadCodeErr
		assert.True(t, errors.As(err, &bad))
		assert.Equal(t, w, bad.Opcode)
		assert.Equal(t, uint16(0x200), bad.PC)
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		v0, v1 uint8
		word   uint16
		skip   bool
	}{
		{"SE taken", 0x12, 0, 0x3012, true},
		{"SE not taken", 0x13, 0, 0x3012, false},
		{"SNE taken", 0x13, 0, 0x4012, true},
		{"SNE not taken", 0x12, 0, 0x4012, false},
		{"SE reg taken", 7, 7, 0x5010, true},
		{"SE reg not taken", 7, 8, 0x5010, false},
		{"SNE reg taken", 7, 8, 0x9010, true},
		{"SNE reg not taken", 7, 7, 0x9010, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChip8(t, tt.word)
			c.V[0], c.V[1] = tt.v0, tt.v1
			step(t, c)

			want := uint16(0x202)
			if tt.skip {
				want = 0x204
			}
			assert.Equal(t, want, c.PC)
		})
	}
}

func TestAddWithCarry(t *testing.T) {
	c := newTestChip8(t)
	op := DecodeWord(0x8014) // ADD V0,V1

	for a := 0; a < 0x100; a++ {
		for b := 0; b < 0x100; b++ {
			c.V[0], c.V[1] = uint8(a), uint8(b)
			_, err := c.execute(0x200, op)
			assert.NoError(t, err)

			assert.Equal(t, uint8((a+b)%0x100), c.V[0])
			assert.Equal(t, flag(a+b >= 0x100), c.V[0xF])
		}
	}
}

func TestSubtractWithBorrow(t *testing.T) {
	c := newTestChip8(t)
	sub := DecodeWord(0x8015)  // SUB V0,V1
	subn := DecodeWord(0x8017) // SUBN V0,V1

	for a := 0; a < 0x100; a++ {
		for b := 0; b < 0x100; b++ {
			c.V[0], c.V[1] = uint8(a), uint8(b)
			_, err := c.execute(0x200, sub)
			assert.NoError(t, err)
			assert.Equal(t, uint8(a-b), c.V[0])
			assert.Equal(t, flag(a >= b), c.V[0xF])

			c.V[0], c.V[1] = uint8(a), uint8(b)
			_, err = c.execute(0x200, subn)
			assert.NoError(t, err)
			assert.Equal(t, uint8(b-a), c.V[0])
			assert.Equal(t, flag(b >= a), c.V[0xF])
		}
	}
}

func TestShifts(t *testing.T) {
	c := newTestChip8(t)
	shr := DecodeWord(0x8016) // SHR V0,V1
	shl := DecodeWord(0x801E) // SHL V0,V1

	for a := 0; a < 0x100; a++ {
		// the source is VY, VX only receives the result
		c.V[0], c.V[1] = 0x55, uint8(a)
		_, err := c.execute(0x200, shr)
		assert.NoError(t, err)
		assert.Equal(t, uint8(a>>1), c.V[0])
		assert.Equal(t, uint8(a&1), c.V[0xF])
		assert.Equal(t, uint8(a), c.V[1])

		c.V[0], c.V[1] = 0x55, uint8(a)
		_, err = c.execute(0x200, shl)
		assert.NoError(t, err)
		assert.Equal(t, uint8(a<<1), c.V[0])
		assert.Equal(t, uint8(a>>7), c.V[0xF])
	}
}

func TestLogicalOpsResetFlag(t *testing.T) {
	tests := []struct {
		word uint16
		want uint8
	}{
		{0x8011, 0xF0 | 0x3C}, // OR V0,V1
		{0x8012, 0xF0 & 0x3C}, // AND V0,V1
		{0x8013, 0xF0 ^ 0x3C}, // XOR V0,V1
		{0x8010, 0x3C},        // LD V0,V1
	}

	for _, tt := range tests {
		c := newTestChip8(t, tt.word)
		c.V[0], c.V[1], c.V[0xF] = 0xF0, 0x3C, 0x77
		step(t, c)

		assert.Equal(t, tt.want, c.V[0])
		if tt.word&0xF == 0 {
			assert.Equal(t, uint8(0x77), c.V[0xF])
		} else {
			// quirk of the original interpreter
			assert.Equal(t, uint8(0), c.V[0xF])
		}
	}
}

func TestFlagWrittenAfterResult(t *testing.T) {
	c := newTestChip8(t,
		0x8F14, // ADD VF,V1
		0x8F16, // SHR VF,V1
	)
	c.V[0xF], c.V[1] = 200, 100
	step(t, c)
	assert.Equal(t, uint8(1), c.V[0xF])

	c.V[1] = 0x02
	step(t, c)
	assert.Equal(t, uint8(0), c.V[0xF])
}

func TestIndexInstructions(t *testing.T) {
	c := newTestChip8(t,
		0xA123, // LD I,123
		0xF01E, // ADD I,V0
		0xF129, // LD I,CHAR V1
		0xF01E, // ADD I,V0
	)
	c.V[0], c.V[1] = 0x10, 0x1A

	step(t, c)
	assert.Equal(t, uint16(0x123), c.I)
	step(t, c)
	assert.Equal(t, uint16(0x133), c.I)
	step(t, c)
	assert.Equal(t, uint16(FontAddress+5*0xA), c.I)

	c.I = 0xFFFF
	step(t, c)
	assert.Equal(t, uint16(0x000F), c.I)
}

func TestJumpPlusOffset(t *testing.T) {
	c := newTestChip8(t, 0xB300)
	c.V[0] = 0x10
	step(t, c)
	assert.Equal(t, uint16(0x310), c.PC)

	c = newTestChip8(t, 0xBFFF)
	c.V[0] = 0xFF
	step(t, c)
	assert.Equal(t, uint16(0x10FE), c.PC)

	// fetching from an out of range pc wraps around the memory
	c.Memory[0x0FE], c.Memory[0x0FF] = 0x60, 0x99
	step(t, c)
	assert.Equal(t, uint8(0x99), c.V[0])
}

func TestRandom(t *testing.T) {
	c := newTestChip8(t)
	op := DecodeWord(0xC00F) // RND V0,0F

	for i := 0; i < 1000; i++ {
		_, err := c.execute(0x200, op)
		assert.NoError(t, err)
		assert.True(t, c.V[0] <= 0x0F)
	}
}

func TestBCD(t *testing.T) {
	c := newTestChip8(t, 0xF033) // LD [I],BCD V0
	c.V[0] = 254
	c.I = 0x300
	step(t, c)

	assert.Equal(t, []byte{2, 5, 4}, c.Memory[0x300:0x303])
	assert.Equal(t, uint16(0x300), c.I)
}

func TestRegisterDumpAndLoad(t *testing.T) {
	c := newTestChip8(t,
		0xF355, // LD [I],V3
		0xA300, // LD I,300
		0xF265, // LD V2,[I]
	)
	c.V = [16]uint8{1, 2, 3, 4, 5}
	c.I = 0x300
	step(t, c)
	assert.Equal(t, []byte{1, 2, 3, 4, 0}, c.Memory[0x300:0x305])
	assert.Equal(t, uint16(0x304), c.I)

	c.V = [16]uint8{}
	step(t, c)
	step(t, c)
	assert.Equal(t, [16]uint8{1, 2, 3}, c.V)
	assert.Equal(t, uint16(0x303), c.I)
}

func TestKeySkips(t *testing.T) {
	c := newTestChip8(t,
		0xE09E, // SKP V0
		0x0000,
		0xE0A1, // SKNP V0
		0x0000,
		0xE19E, // SKP V1
	)
	c.Keypad = Keypad{Down: Key5}
	c.V[0] = 0x05
	c.V[1] = 0x25 // only the low nibble selects the key

	step(t, c)
	assert.Equal(t, uint16(0x204), c.PC)
	step(t, c)
	assert.Equal(t, uint16(0x206), c.PC)

	c.PC = 0x208
	step(t, c)
	assert.Equal(t, uint16(0x20C), c.PC)
}

func TestWaitForKey(t *testing.T) {
	c := newTestChip8(t, 0xF30A) // LD V3,K

	step(t, c)
	assert.Equal(t, uint16(0x200), c.PC)

	// key F never satisfies the wait
	c.Keypad = Keypad{Down: Key9, Released: KeyF}
	step(t, c)
	assert.Equal(t, uint16(0x200), c.PC)

	c.Keypad = Keypad{Released: Key9 | Key5}
	step(t, c)
	assert.Equal(t, uint16(0x202), c.PC)
	assert.Equal(t, uint8(5), c.V[3])
}

func TestWaitForKeyAcrossFrames(t *testing.T) {
	c := newTestChip8(t,
		0xF00A, // LD V0,K
		0x1202, // JP 202
	)
	testDrv.keys = []Keypad{{}, {Down: KeyA}, {Released: KeyA}}

	assert.NoError(t, c.Run(context.Background()))
	assert.Equal(t, uint8(0xA), c.V[0])
	assert.Equal(t, uint16(0x202), c.PC)
}

func TestTimers(t *testing.T) {
	c := newTestChip8(t,
		0x6003, // LD V0,03
		0xF015, // LD DT,V0
		0x6002, // LD V0,02
		0xF018, // LD ST,V0
		0xF107, // LD V1,DT
		0x120A, // JP 20A
	)

	assert.NoError(t, c.Frame(Keypad{}))
	assert.Equal(t, uint8(3), c.V[1])
	assert.Equal(t, uint8(2), c.ST)
	assert.Equal(t, 1, testAud.plays)
	assert.True(t, testAud.playing)

	assert.NoError(t, c.Frame(Keypad{}))
	assert.Equal(t, uint8(2), c.DT)
	assert.Equal(t, uint8(1), c.ST)
	assert.True(t, testAud.playing)

	assert.NoError(t, c.Frame(Keypad{}))
	assert.Equal(t, uint8(0), c.ST)
	assert.Equal(t, 1, testAud.pauses)
	assert.False(t, testAud.playing)

	assert.NoError(t, c.Frame(Keypad{}))
	assert.Equal(t, uint8(0), c.DT)
	assert.Equal(t, 1, testAud.pauses)
}

func TestSoundTimerZeroStopsTone(t *testing.T) {
	c := newTestChip8(t, 0xF018) // LD ST,V0
	step(t, c)

	assert.Equal(t, 0, testAud.plays)
	assert.Equal(t, 1, testAud.pauses)
}

func TestRunPropagatesDisplayErrors(t *testing.T) {
	c := newTestChip8(t, 0x00E0)
	testDrv.keys = []Keypad{{}}
	testDrv.err = errors.New("window gone")

	err := c.Run(context.Background())
	assert.Error(t, err)
	assert.ErrorContains(t, err, "window gone")
}

func TestTrace(t *testing.T) {
	c, err := New("test", "test", &Chip8Settings{
		CyclesPerFrame: 10,
		StackSize:      1,
		Trace:          true,
		Logger:         log.NewTestLogger(t),
	})
	assert.NoError(t, err)
	assert.NoError(t, c.LoadRaw([]byte{0x12, 0x00}))
	assert.NoError(t, c.Frame(Keypad{}))
	assert.Equal(t, uint16(0x200), c.PC)
}
