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

// Package headless implements a display driver without any output device.
//
// It is meant for batch runs and tests. Options:
//
//	SetDriverData("headless", "frames", n)  stop after n frames, 0 runs until cancelled
//	SetDriverData("headless", "fps", f)     frames per second, 0 runs unthrottled
//	SetDriverData("headless", "dump", w)    write the final screen to the io.Writer w
//
// GetDriverData("updates") returns how many times the screen was updated.
package headless

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Francesco149/go-hachi/hachi"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// A HeadlessDriver runs frames on a timer and keeps the last screen.
type HeadlessDriver struct {
	frames  int
	fps     float64
	dump    io.Writer
	updates int
	screen  hachi.Screen
	logger  *log.Logger
}

func (d *HeadlessDriver) OnInit(c *hachi.Chip8) error {
	d.updates = 0
	d.screen = hachi.Screen{}
	d.logger = c.Logger()
	return nil
}

// Run calls frame with an idle keypad until the frame limit is reached or ctx
// is done.
func (d *HeadlessDriver) Run(ctx context.Context,
	frame func(hachi.Keypad) error) (err error) {

	var tick <-chan time.Time
	if d.fps > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / d.fps))
		defer ticker.Stop()
		tick = ticker.C
	}

	defer func() {
		if err == nil {
			err = d.writeDump()
		}
	}()

	for n := 0; d.frames == 0 || n < d.frames; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		if err = frame(hachi.Keypad{}); err != nil {
			return err
		}
	}

	d.logger.Debug("Frame limit reached",
		log.Int("frames", d.frames),
		log.Int("updates", d.updates))
	return nil
}

func (d *HeadlessDriver) writeDump() error {
	if d.dump == nil {
		return nil
	}
	_, err := io.WriteString(d.dump, d.screen.String())
	return errors.Wrap(err, "dumping screen")
}

func (d *HeadlessDriver) UpdateScreen(c *hachi.Chip8) error {
	d.updates++
	d.screen = c.Screen
	return nil
}

func (d *HeadlessDriver) Close() error { return nil }

func (d *HeadlessDriver) GetData(key string) interface{} {
	switch key {
	case "updates":
		return d.updates
	case "screen":
		return d.screen
	}
	return nil
}

func (d *HeadlessDriver) SetData(key string, value interface{}) error {
	switch key {
	case "frames":
		n, ok := value.(int)
		if !ok || n < 0 {
			return fmt.Errorf("invalid frame count %v", value)
		}
		d.frames = n
	case "fps":
		f, ok := value.(float64)
		if !ok || f < 0 {
			return fmt.Errorf("invalid fps %v", value)
		}
		d.fps = f
	case "dump":
		w, ok := value.(io.Writer)
		if !ok && value != nil {
			return fmt.Errorf("invalid dump writer %T", value)
		}
		d.dump = w
	default:
		return fmt.Errorf("unknown data key '%s'", key)
	}
	return nil
}

func init() {
	if err := hachi.RegisterDriver("headless", &HeadlessDriver{}); err != nil {
		panic(err)
	}
}
