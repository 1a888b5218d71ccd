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
	"context"
	"fmt"
)

// A Driver is the display and keypad collaborator of the emulator. It owns
// the host refresh cadence and calls back into the emulator once per frame.
// Drivers should be registered by the RegisterDriver function in init().
type Driver interface {
	// Called when the emulator is created, before any program is loaded.
	OnInit(c *Chip8) error
	// Run calls frame once per display refresh with the current keypad
	// snapshot. It returns nil when the user asks to quit or ctx is done, and
	// the error returned by frame otherwise.
	Run(ctx context.Context, frame func(Keypad) error) error
	// Called on every CLS and DRW with the updated screen buffer.
	UpdateScreen(c *Chip8) error
	// Releases whatever OnInit acquired.
	Close() error
	// Returns custom data that can be retrieved through the emulator by
	// calling GetDriverData()
	GetData(key string) interface{}
	// Sets a driver option. Options are read by OnInit, so they must be set
	// through SetDriverData() before the emulator is created.
	SetData(key string, value interface{}) error
}

// An Audio is the tone collaborator. The emulator only ever switches the tone
// on and off; what it sounds like is up to the implementation.
// Audio implementations should be registered by RegisterAudio in init().
type Audio interface {
	// Called when the emulator is created.
	OnInit(c *Chip8) error
	// Starts the tone. Called when the sound timer is set to a non-zero value.
	Play() error
	// Stops the tone. Called when the sound timer is set to or reaches zero.
	Pause() error
	// Called once at the end of every frame.
	Frame() error
	// Releases whatever OnInit acquired.
	Close() error
	// Sets an option, see Driver.SetData.
	SetData(key string, value interface{}) error
}

// -----------------------------------------------------------------------------

var (
	drivers = make(map[string]Driver)
	audios  = make(map[string]Audio)
)

// RegisterDriver registers a driver to a name. The driver can then be used
// by passing its name to New.
// This is not thread-safe, so don't call it concurrently to the emulator's
// execution.
func RegisterDriver(name string, drv Driver) error {
	if drivers[name] != nil {
		return fmt.Errorf("driver %s already exists", name)
	}
	drivers[name] = drv
	return nil
}

// UnregisterDriver unloads a previously registered driver.
// This is not thread-safe, so don't call it concurrently to the emulator's
// execution.
func UnregisterDriver(name string) error {
	if drivers[name] == nil {
		return fmt.Errorf("driver %s does not exist", name)
	}
	delete(drivers, name)
	return nil
}

// SetDriverData sets an option on a registered driver.
func SetDriverData(name, key string, value interface{}) error {
	drv := drivers[name]
	if drv == nil {
		return fmt.Errorf("driver %s not found", name)
	}
	return drv.SetData(key, value)
}

// RegisterAudio registers an audio implementation to a name.
func RegisterAudio(name string, a Audio) error {
	if audios[name] != nil {
		return fmt.Errorf("audio %s already exists", name)
	}
	audios[name] = a
	return nil
}

// UnregisterAudio unloads a previously registered audio implementation.
func UnregisterAudio(name string) error {
	if audios[name] == nil {
		return fmt.Errorf("audio %s does not exist", name)
	}
	delete(audios, name)
	return nil
}

// SetAudioData sets an option on a registered audio implementation.
func SetAudioData(name, key string, value interface{}) error {
	a := audios[name]
	if a == nil {
		return fmt.Errorf("audio %s not found", name)
	}
	return a.SetData(key, value)
}

// -----------------------------------------------------------------------------

// A NullDriver ignores all calls and runs frames as fast as it can until the
// context is cancelled. No keys are ever pressed.
type NullDriver struct{}

func (d *NullDriver) OnInit(c *Chip8) error          { return nil }
func (d *NullDriver) UpdateScreen(c *Chip8) error    { return nil }
func (d *NullDriver) Close() error                   { return nil }
func (d *NullDriver) GetData(key string) interface{} { return nil }
func (d *NullDriver) SetData(key string, v interface{}) error {
	return fmt.Errorf("this driver has no settable data")
}

func (d *NullDriver) Run(ctx context.Context, frame func(Keypad) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := frame(Keypad{}); err != nil {
			return err
		}
	}
}

// A NullAudio is the default audio implementation, which stays silent.
type NullAudio struct{}

func (a *NullAudio) OnInit(c *Chip8) error { return nil }
func (a *NullAudio) Play() error           { return nil }
func (a *NullAudio) Pause() error          { return nil }
func (a *NullAudio) Frame() error          { return nil }
func (a *NullAudio) Close() error          { return nil }
func (a *NullAudio) SetData(key string, v interface{}) error {
	return fmt.Errorf("this audio has no settable data")
}

// -----------------------------------------------------------------------------

func init() {
	if err := RegisterDriver("null", &NullDriver{}); err != nil {
		panic(err)
	}
	if err := RegisterAudio("null", &NullAudio{}); err != nil {
		panic(err)
	}
}
