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

// Package config handles application configuration and setup.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/Francesco149/go-hachi/hachi"
	"github.com/naoina/toml"
	"github.com/retroenv/retrogolib/log"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Config is the complete configuration of a run.
type Config struct {
	Emulator EmulatorConfig
	Display  DisplayConfig
	Audio    AudioConfig
}

// EmulatorConfig maps to hachi.Chip8Settings.
type EmulatorConfig struct {
	CyclesPerFrame int
	StackSize      int
	Seed           int64 `toml:",omitempty"`
	Trace          bool
}

// DisplayConfig selects and configures the display driver.
type DisplayConfig struct {
	Driver string
	// Scale is the glfw window pixels per CHIP-8 pixel.
	Scale int
	// FPS paces the termloop and headless drivers. 0 runs headless
	// unthrottled.
	FPS float64
	// Frames stops a headless run after this many frames.
	Frames int `toml:",omitempty"`
}

// AudioConfig selects and configures the tone output.
type AudioConfig struct {
	Driver string
	// Sample is a wav or mp3 file played instead of the sine tone.
	Sample string `toml:",omitempty"`
	// WavPath is the output file of the wav recorder.
	WavPath string `toml:",omitempty"`
}

// Default returns the default configuration: the glfw window with SDL audio.
func Default() Config {
	return Config{
		Emulator: EmulatorConfig{
			CyclesPerFrame: hachi.DefaultSettings.CyclesPerFrame,
			StackSize:      hachi.DefaultSettings.StackSize,
		},
		Display: DisplayConfig{
			Driver: "glfw",
			Scale:  16,
			FPS:    60,
		},
		Audio: AudioConfig{
			Driver: "sdl",
		},
	}
}

// Load decodes a TOML file on top of cfg.
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// Marshal encodes cfg as TOML in the format Load reads.
func Marshal(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

// Validate checks the values that can't be checked by the collaborators.
func (c *Config) Validate() error {
	if c.Display.Driver == "" {
		return errors.New("no display driver set")
	}
	if c.Audio.Driver == "" {
		return errors.New("no audio driver set")
	}
	if c.Display.Driver == "termloop" && c.Display.FPS <= 0 {
		return errors.New("the termloop driver needs a positive FPS")
	}
	if c.Audio.Driver == "wav" && c.Audio.WavPath == "" {
		return errors.New("the wav audio driver needs WavPath")
	}
	return c.Settings(nil).Validate()
}

// Settings returns the emulator settings, reporting to logger.
func (c *Config) Settings(logger *log.Logger) *hachi.Chip8Settings {
	return &hachi.Chip8Settings{
		CyclesPerFrame: c.Emulator.CyclesPerFrame,
		StackSize:      c.Emulator.StackSize,
		Seed:           c.Emulator.Seed,
		Trace:          c.Emulator.Trace,
		Logger:         logger,
	}
}

// Apply hands the driver options to the selected collaborators. It has to be
// called before hachi.New.
func (c *Config) Apply() error {
	var err error
	set := func(f func(name, key string, value interface{}) error,
		name, key string, value interface{}) {

		if err == nil {
			err = f(name, key, value)
		}
	}

	switch c.Display.Driver {
	case "glfw":
		set(hachi.SetDriverData, "glfw", "scale", c.Display.Scale)
	case "termloop":
		set(hachi.SetDriverData, "termloop", "fps", c.Display.FPS)
	case "headless":
		set(hachi.SetDriverData, "headless", "fps", c.Display.FPS)
		set(hachi.SetDriverData, "headless", "frames", c.Display.Frames)
	}

	switch c.Audio.Driver {
	case "sdl":
		set(hachi.SetAudioData, "sdl", "sample", c.Audio.Sample)
	case "wav":
		set(hachi.SetAudioData, "wav", "sample", c.Audio.Sample)
		set(hachi.SetAudioData, "wav", "path", c.Audio.WavPath)
	}
	return err
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
