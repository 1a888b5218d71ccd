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
	"testing"
	"time"

	"github.com/Francesco149/go-hachi/hachi"
	"github.com/retroenv/retrogolib/assert"
)

func TestKeyTracker(t *testing.T) {
	k := newKeyTracker(releaseDelay)
	start := time.Unix(1000, 0)

	assert.Equal(t, hachi.Keypad{}, k.snapshot(start))

	k.press(hachi.Key5, start)
	k.press(hachi.KeyA, start.Add(50*time.Millisecond))
	assert.Equal(t, hachi.Keypad{Down: hachi.Key5 | hachi.KeyA},
		k.snapshot(start.Add(60*time.Millisecond)))

	// key repeat keeps the key held
	k.press(hachi.Key5, start.Add(90*time.Millisecond))
	assert.Equal(t, hachi.Keypad{Down: hachi.Key5, Released: hachi.KeyA},
		k.snapshot(start.Add(160*time.Millisecond)))
	assert.Equal(t, hachi.Keypad{Down: hachi.Key5},
		k.snapshot(start.Add(170*time.Millisecond)))

	assert.Equal(t, hachi.Keypad{Released: hachi.Key5},
		k.snapshot(start.Add(200*time.Millisecond)))
}

func TestKeyTrackerReleaseReportedOnce(t *testing.T) {
	k := newKeyTracker(releaseDelay)
	start := time.Unix(1000, 0)

	k.press(hachi.Key3, start)
	got := k.snapshot(start.Add(time.Second))
	assert.Equal(t, hachi.Keypad{Released: hachi.Key3}, got)

	got = k.snapshot(start.Add(2 * time.Second))
	assert.Equal(t, hachi.Keypad{}, got)
}

func TestSetData(t *testing.T) {
	d := &TermloopDriver{}

	assert.NoError(t, d.SetData("key_map", map[rune]uint16{'k': hachi.Key1}))
	assert.Equal(t, uint16(hachi.Key1), d.keyMap['k'])
	assert.Error(t, d.SetData("key_map", map[string]uint16{}))
	assert.NoError(t, d.SetData("fps", 30.0))
	assert.Error(t, d.SetData("fps", 30))
	assert.Error(t, d.SetData("missing", nil))
	assert.Nil(t, d.GetData("missing"))
}
