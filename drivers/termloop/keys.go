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

package termloop

import (
	"time"

	"github.com/Francesco149/go-hachi/hachi"
)

// termbox only reports key presses, so held keys are released automatically
// once they haven't repeated for this long.
const releaseDelay = 100 * time.Millisecond

// keyTracker turns key press events into per frame keypad snapshots.
type keyTracker struct {
	hold     time.Duration
	pressed  map[uint16]time.Time
	down     uint16
	released uint16
}

func newKeyTracker(hold time.Duration) *keyTracker {
	return &keyTracker{
		hold:    hold,
		pressed: make(map[uint16]time.Time),
	}
}

func (k *keyTracker) press(key uint16, now time.Time) {
	k.down |= key
	k.pressed[key] = now
}

// snapshot expires stale keys and returns the keypad state. Keys released
// since the previous snapshot are reported exactly once.
func (k *keyTracker) snapshot(now time.Time) hachi.Keypad {
	for key, t := range k.pressed {
		if now.Sub(t) > k.hold {
			k.down &^= key
			k.released |= key
			delete(k.pressed, key)
		}
	}

	res := hachi.Keypad{Down: k.down, Released: k.released}
	k.released = 0
	return res
}
