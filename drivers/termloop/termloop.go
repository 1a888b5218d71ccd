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

// Package termloop implements a display driver for termloop.
//
// The emulator is advanced from the Draw callback of a termloop entity, so
// frames run at the termloop frame rate (60 fps unless changed through
// SetDriverData("fps", float64(n))). The termloop game can be retrieved with
// GetDriverData("ctx") to add more entities before Run.
//
// Key mappings can be modified through SetDriverData("key_map", myMap), where
// myMap is a map[rune]uint16 with characters as keys and CHIP-8 keys
// (hachi.Key0...hachi.KeyF) as values. Esc quits.
package termloop

import (
	"context"
	"fmt"
	"reflect"
	"time"
	"unicode"

	"github.com/Francesco149/go-hachi/hachi"
	tl "github.com/JoelOtter/termloop"
	"github.com/retroenv/retrogolib/log"
)

// screen preview offset
const (
	originX = 0
	originY = 3
)

// DefaultKeyMap lays the hex keypad out on the left side of a qwerty keyboard.
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D      q w e r
//	7 8 9 E  ->  a s d f
//	A 0 B F      z x c v
var DefaultKeyMap = map[rune]uint16{
	'x': hachi.Key0,
	'1': hachi.Key1,
	'2': hachi.Key2,
	'3': hachi.Key3,
	'q': hachi.Key4,
	'w': hachi.Key5,
	'e': hachi.Key6,
	'a': hachi.Key7,
	's': hachi.Key8,
	'd': hachi.Key9,
	'z': hachi.KeyA,
	'c': hachi.KeyB,
	'4': hachi.KeyC,
	'r': hachi.KeyD,
	'f': hachi.KeyE,
	'v': hachi.KeyF,
}

// 8, 4, 6 and 2 are typically used for directional input.
var arrowKeys = map[tl.Key]uint16{
	tl.KeyArrowDown:  hachi.Key2,
	tl.KeyArrowLeft:  hachi.Key4,
	tl.KeyArrowRight: hachi.Key6,
	tl.KeyArrowUp:    hachi.Key8,
	tl.KeyEnter:      hachi.Key5,
}

// A TermloopDriver is a terminal-based driver that uses the termloop library.
// It shows the screen and the current emulator state in real time.
type TermloopDriver struct {
	g          *tl.Game
	c          *hachi.Chip8
	registers  *tl.Text
	pointers   *tl.Text
	status     *tl.Text
	screen     [hachi.Width][hachi.Height]*tl.Rectangle
	lastScreen hachi.Screen
	keyMap     map[rune]uint16
	keys       *keyTracker
	fps        float64

	ctx     context.Context
	frame   func(hachi.Keypad) error
	err     error
	stopped bool
}

// just a wrapper entity to run one emulator frame per termloop frame and to
// handle input. Draw is used because Tick is only called on input.
type emulatorWrapper struct{ d *TermloopDriver }

func (e *emulatorWrapper) Draw(s *tl.Screen) { e.d.runFrame(time.Now()) }

func (e *emulatorWrapper) Tick(ev tl.Event) {
	if ev.Type != tl.EventKey {
		return
	}
	d := e.d
	key, ok := arrowKeys[ev.Key]
	if !ok {
		key, ok = d.keyMap[unicode.ToLower(ev.Ch)]
	}
	if ok {
		d.keys.press(key, time.Now())
	}
}

func (d *TermloopDriver) OnInit(c *hachi.Chip8) error {
	d.c = c
	if d.keyMap == nil {
		d.keyMap = DefaultKeyMap
	}
	d.keys = newKeyTracker(releaseDelay)
	d.lastScreen = hachi.Screen{}
	d.stopped = false
	d.err = nil
	if d.fps == 0 {
		d.fps = 60
	}

	d.g = tl.NewGame()
	d.g.SetEndKey(tl.KeyEsc)
	scr := d.g.Screen()
	scr.SetFps(d.fps)

	scr.AddEntity(&emulatorWrapper{d})

	d.registers = tl.NewText(0, 0, "", tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.registers)
	d.pointers = tl.NewText(0, 1, "", tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.pointers)
	d.status = tl.NewText(0, originY+hachi.Height+1, "Esc: quit",
		tl.ColorDefault, tl.ColorDefault)
	scr.AddEntity(d.status)

	color := tl.ColorWhite // foreground
	for x := 0; x < hachi.Width; x++ {
		for y := 0; y < hachi.Height; y++ {
			d.screen[x][y] = tl.NewRectangle(originX+x, originY+y, 1, 1, color)
		}
	}

	c.Logger().Debug("Termloop driver initialized", log.Int("fps", int(d.fps)))
	return nil
}

// Run starts termloop and blocks until Esc is pressed. Termloop can't be
// stopped from the outside, so after an error or a cancelled ctx the driver
// stops emulating and shows a message until the user quits.
func (d *TermloopDriver) Run(ctx context.Context,
	frame func(hachi.Keypad) error) error {

	d.ctx = ctx
	d.frame = frame
	d.g.Start()
	return d.err
}

func (d *TermloopDriver) runFrame(now time.Time) {
	if d.stopped {
		return
	}
	if d.ctx.Err() != nil {
		d.stop(nil)
		return
	}

	if err := d.frame(d.keys.snapshot(now)); err != nil {
		d.stop(err)
	}
}

func (d *TermloopDriver) stop(err error) {
	d.stopped = true
	d.err = err
	if err != nil {
		d.status.SetText(fmt.Sprintf("%v (Esc: quit)", err))
		d.status.SetColor(tl.ColorRed, tl.ColorDefault)
		return
	}
	d.status.SetText("stopped (Esc: quit)")
}

func (d *TermloopDriver) UpdateScreen(c *hachi.Chip8) error {
	d.registers.SetText(fmt.Sprintf("V: % 02X", c.V))
	d.pointers.SetText(fmt.Sprintf("I: %04X PC: %04X DT: %02X ST: %02X Stack: % 04X",
		c.I, c.PC, c.DT, c.ST, c.Stack))

	scr := d.g.Screen()
	for y := 0; y < hachi.Height; y++ {
		changed := d.lastScreen[y] ^ c.Screen[y]
		if changed == 0 {
			continue
		}
		for x := 0; x < hachi.Width; x++ {
			was, is := d.lastScreen.Pixel(x, y), c.Screen.Pixel(x, y)
			switch {
			case is && !was:
				scr.AddEntity(d.screen[x][y])
			case was && !is:
				scr.RemoveEntity(d.screen[x][y])
			}
		}
	}

	d.lastScreen = c.Screen
	return nil
}

// Close is a no-op, termloop restores the terminal when Start returns.
func (d *TermloopDriver) Close() error { return nil }

func (d *TermloopDriver) GetData(key string) interface{} {
	if key == "ctx" {
		return d.g
	}
	return nil
}

func (d *TermloopDriver) SetData(key string, value interface{}) error {
	switch key {
	case "key_map":
		newMap, ok := value.(map[rune]uint16)
		if !ok {
			return fmt.Errorf("invalid type %s for key_map", reflect.TypeOf(value))
		}
		d.keyMap = newMap
	case "fps":
		fps, ok := value.(float64)
		if !ok || fps <= 0 {
			return fmt.Errorf("invalid fps %v", value)
		}
		d.fps = fps
		if d.g != nil {
			d.g.Screen().SetFps(fps)
		}
	default:
		return fmt.Errorf("unknown data key '%s'", key)
	}
	return nil
}

// -----------------------------------------------------------------------------

func init() {
	err := hachi.RegisterDriver("termloop", &TermloopDriver{})
	if err != nil {
		panic(err)
	}
}
