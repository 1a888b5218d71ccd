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

import "math/bits"

// Key flags for the keypad bitfields.
const (
	Key0 = 1 << iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// Key flags mapped by number.
var KeyFlags = [16]uint16{Key0, Key1, Key2, Key3, Key4, Key5, Key6, Key7,
	Key8, Key9, KeyA, KeyB, KeyC, KeyD, KeyE, KeyF}

// Keypad is a snapshot of the 16-key hex keypad taken once per frame.
// 8, 4, 6 and 2 are typically used for directional input.
type Keypad struct {
	// Keys held down when the snapshot was taken.
	Down uint16
	// Keys released since the previous snapshot.
	Released uint16
}

// IsDown reports whether the key with number key (low nibble only) is held.
func (k Keypad) IsDown(key uint8) bool { return k.Down&KeyFlags[key&0x0F] != 0 }

// FirstReleased returns the lowest numbered key in 0x0..0xE that was released
// since the previous snapshot. Key F is never reported.
func (k Keypad) FirstReleased() (key uint8, ok bool) {
	released := k.Released &^ KeyF
	if released == 0 {
		return 0, false
	}
	return uint8(bits.TrailingZeros16(released)), true
}
