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

import "github.com/pkg/errors"

// execute runs a decoded instruction fetched from pc. The program counter has
// already been advanced past it.
//
// Dispatch is on the high nibble first; some instructions are told apart by
// N and others by the whole second byte, in the same order the historical
// opcode table resolves them.
func (c *Chip8) execute(pc uint16, op Opcode) (flush bool, err error) {
	x, y := op.X, op.Y

	switch op.Op {
	case 0x0:
		switch op.Value {
		case 0xE0:
			// CLS
			c.Screen.Clear()
			return true, c.updateScreen()
		case 0xEE:
			// RET
			if len(c.Stack) == 0 {
				return false, &StackUnderflowErr{pc}
			}
			c.PC = c.Stack[len(c.Stack)-1]
			c.Stack = c.Stack[:len(c.Stack)-1]
		default:
			return false, &BadCodeErr{pc, op.Raw}
		}
	case 0x1:
		// JP NNN
		c.PC = op.Address
	case 0x2:
		// CALL NNN
		if len(c.Stack) == cap(c.Stack) {
			return false, &StackOverflowErr{pc}
		}
		c.Stack = append(c.Stack, c.PC)
		c.PC = op.Address
	case 0x3:
		// SE VX,NN
		if c.V[x] == op.Value {
			c.PC += 2
		}
	case 0x4:
		// SNE VX,NN
		if c.V[x] != op.Value {
			c.PC += 2
		}
	case 0x5:
		// SE VX,VY
		if op.N != 0 {
			return false, &BadCodeErr{pc, op.Raw}
		}
		if c.V[x] == c.V[y] {
			c.PC += 2
		}
	case 0x6:
		// LD VX,NN
		c.V[x] = op.Value
	case 0x7:
		// ADD VX,NN (no carry)
		c.V[x] += op.Value
	case 0x8:
		return false, c.alu(pc, op)
	case 0x9:
		// SNE VX,VY
		if op.N != 0 {
			return false, &BadCodeErr{pc, op.Raw}
		}
		if c.V[x] != c.V[y] {
			c.PC += 2
		}
	case 0xA:
		// LD I,NNN
		c.I = op.Address
	case 0xB:
		// JP V0,NNN
		c.PC = op.Address + uint16(c.V[0])
	case 0xC:
		// RND VX,NN
		c.V[x] = uint8(c.rnd.Intn(0x100)) & op.Value
	case 0xD:
		// DRW VX,VY,N
		c.draw(op)
		return true, c.updateScreen()
	case 0xE:
		switch op.Value {
		case 0x9E:
			// SKP VX
			if c.Keypad.IsDown(c.V[x]) {
				c.PC += 2
			}
		case 0xA1:
			// SKNP VX
			if !c.Keypad.IsDown(c.V[x]) {
				c.PC += 2
			}
		default:
			return false, &BadCodeErr{pc, op.Raw}
		}
	case 0xF:
		return false, c.misc(pc, op)
	}

	return false, nil
}

// alu runs the 8XYN register to register instructions. VF is always written
// after the result so that it wins when X is F.
func (c *Chip8) alu(pc uint16, op Opcode) error {
	x, y := op.X, op.Y

	switch op.N {
	case 0x0:
		// LD VX,VY
		c.V[x] = c.V[y]
	case 0x1:
		// OR VX,VY
		// The flag reset on OR, AND and XOR is a quirk of the original
		// interpreter that programs can observe.
		c.V[x] |= c.V[y]
		c.V[0xF] = 0
	case 0x2:
		// AND VX,VY
		c.V[x] &= c.V[y]
		c.V[0xF] = 0
	case 0x3:
		// XOR VX,VY
		c.V[x] ^= c.V[y]
		c.V[0xF] = 0
	case 0x4:
		// ADD VX,VY
		sum := uint16(c.V[x]) + uint16(c.V[y])
		c.V[x] = uint8(sum)
		c.V[0xF] = uint8(sum >> 8)
	case 0x5:
		// SUB VX,VY, VF is set when there is no borrow
		vx, vy := c.V[x], c.V[y]
		c.V[x] = vx - vy
		c.V[0xF] = flag(vx >= vy)
	case 0x6:
		// SHR VX,VY (VX = VY >> 1)
		vy := c.V[y]
		c.V[x] = vy >> 1
		c.V[0xF] = vy & 0x01
	case 0x7:
		// SUBN VX,VY, VF is set when there is no borrow
		vx, vy := c.V[x], c.V[y]
		c.V[x] = vy - vx
		c.V[0xF] = flag(vy >= vx)
	case 0xE:
		// SHL VX,VY (VX = VY << 1)
		vy := c.V[y]
		c.V[x] = vy << 1
		c.V[0xF] = vy >> 7
	default:
		return &BadCodeErr{pc, op.Raw}
	}
	return nil
}

// misc runs the FXNN instructions.
func (c *Chip8) misc(pc uint16, op Opcode) error {
	x := op.X

	switch op.Value {
	case 0x07:
		// LD VX,DT
		c.V[x] = c.DT
	case 0x0A:
		// LD VX,K
		// Nothing blocks here: without a released key the instruction is
		// simply executed again on the next cycle.
		key, ok := c.Keypad.FirstReleased()
		if !ok {
			c.PC -= 2
			return nil
		}
		c.V[x] = key
	case 0x15:
		// LD DT,VX
		c.DT = c.V[x]
	case 0x18:
		// LD ST,VX
		c.ST = c.V[x]
		if c.ST == 0 {
			return errors.Wrap(c.aud.Pause(), "stopping tone")
		}
		return errors.Wrap(c.aud.Play(), "starting tone")
	case 0x1E:
		// ADD I,VX
		c.I += uint16(c.V[x])
	case 0x29:
		// LD I,CHAR VX
		c.I = FontAddress + glyphSize*uint16(c.V[x]&0x0F)
	case 0x33:
		// LD [I],BCD VX
		value := c.V[x]
		c.Memory[c.I&addressMask] = value / 100
		c.Memory[(c.I+1)&addressMask] = value / 10 % 10
		c.Memory[(c.I+2)&addressMask] = value % 10
	case 0x55:
		// LD [I],VX
		// I is left pointing past the last register stored.
		for i := uint8(0); i <= x; i++ {
			c.Memory[c.I&addressMask] = c.V[i]
			c.I++
		}
	case 0x65:
		// LD VX,[I]
		for i := uint8(0); i <= x; i++ {
			c.V[i] = c.Memory[c.I&addressMask]
			c.I++
		}
	default:
		return &BadCodeErr{pc, op.Raw}
	}
	return nil
}

// draw XORs an N rows high sprite read from I onto the screen. The origin
// wraps around the screen, the sprite itself is clipped at the edges. VF is
// set when any lit pixel gets turned off.
func (c *Chip8) draw(op Opcode) {
	x0 := int(c.V[op.X] % Width)
	y0 := int(c.V[op.Y] % Height)
	c.V[0xF] = 0

	for row := 0; row < int(op.N); row++ {
		y := y0 + row
		if y >= Height {
			break
		}

		sprite := c.Memory[(c.I+uint16(row))&addressMask]
		for col := 0; col < 8; col++ {
			x := x0 + col
			if x >= Width {
				break
			}
			if sprite&(0x80>>col) == 0 {
				continue
			}
			if c.Screen.flip(x, y) {
				c.V[0xF] = 1
			}
		}
	}
}
