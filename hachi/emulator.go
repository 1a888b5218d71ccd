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

// Package hachi implements a CHIP-8 virtual machine and a disassembler.
package hachi

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// Memory map and screen geometry. Addresses below ProgramStart belong to the
// interpreter; the only thing stored there is the hex font.
const (
	MemorySize   = 0x1000
	FontAddress  = 0x050
	ProgramStart = 0x200

	// Width and Height of the screen in pixels.
	Width  = 64
	Height = 32

	addressMask = MemorySize - 1
	glyphSize   = 5
)

var fontSet = [16 * glyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// -----------------------------------------------------------------------------

// An OutOfMemoryErr is returned upon attempting to load a program that
// exceeds the memory's capacity.
type OutOfMemoryErr struct {
	ProgramSize int64
}

func (e *OutOfMemoryErr) Error() string {
	return fmt.Sprintf("not enough memory (program size: %v, free memory: %v)",
		e.ProgramSize, MemorySize-ProgramStart)
}

// A StackOverflowErr is returned when CALL is executed with a full stack.
type StackOverflowErr struct{ PC uint16 }

func (e *StackOverflowErr) Error() string {
	return fmt.Sprintf("%04X: stack overflow", e.PC)
}

// A StackUnderflowErr is returned when RET is executed with an empty stack.
// The program is lost at that point, there is nothing to return to.
type StackUnderflowErr struct{ PC uint16 }

func (e *StackUnderflowErr) Error() string {
	return fmt.Sprintf("%04X: return with empty stack", e.PC)
}

// A BadCodeErr is returned when the emulator tries to execute invalid code.
type BadCodeErr struct {
	PC     uint16
	Opcode uint16
}

func (e *BadCodeErr) Error() string {
	return fmt.Sprintf("%04X: invalid instruction %04X", e.PC, e.Opcode)
}

// -----------------------------------------------------------------------------

// Chip8Settings holds the configuration parameters for a Chip8 instance.
type Chip8Settings struct {
	// Instructions executed per frame. A frame ends early after the first
	// CLS or DRW.
	CyclesPerFrame int
	// Stack size. Defines the maximum amount of nested calls.
	StackSize int
	// Seed for RND. Zero picks a time based seed.
	Seed int64
	// Trace logs every executed instruction at debug level.
	Trace bool
	// Logger receives emulator diagnostics. nil uses the default logger.
	Logger *log.Logger
}

// Validate validates the settings.
// Returns an error when the settings aren't valid.
func (s *Chip8Settings) Validate() error {
	if s.CyclesPerFrame < 1 {
		return fmt.Errorf("CyclesPerFrame must be >= 1, got %v", s.CyclesPerFrame)
	}
	if s.StackSize < 1 || s.StackSize > 0xFF {
		return fmt.Errorf("StackSize must be in 1..255, got %v", s.StackSize)
	}
	return nil
}

// DefaultSettings runs 100 instructions per 60 Hz frame with 16 stack levels.
var DefaultSettings = &Chip8Settings{
	CyclesPerFrame: 100,
	StackSize:      16,
}

// -----------------------------------------------------------------------------

// Chip8 is an implementation of a CHIP-8 virtual machine. It owns all
// emulated state; the collaborators only ever see copies of the screen and
// the tone on/off signal.
type Chip8 struct {
	// The memory where programs are loaded and executed.
	// Programs start at 0x200 because the original interpreter
	// occupied those first 512 bytes.
	Memory [MemorySize]byte
	// V[0x0]~V[0xF] are 8-bit registers. V[0xF] doubles as a flag register.
	V [16]uint8
	// 16-bit address register. Memory accesses only use its low 12 bits.
	I uint16
	// The call stack, which holds return addresses. Its capacity is the
	// configured stack size.
	Stack []uint16
	// Program counter. Holds the address of the next instruction.
	PC uint16
	// Timers. These count down once per frame while they are non-zero.
	// DT/DelayTimer is intended to be used for timing events in games, while
	// ST/SoundTimer keeps the tone on as long as its value is non-zero.
	DT uint8
	ST uint8
	// The keypad snapshot of the current frame.
	Keypad Keypad
	// Screen buffer, 64x32 monochrome.
	Screen Screen
	// Instructions per frame.
	CyclesPerFrame int

	driver, audio string
	drv           Driver
	aud           Audio
	rnd           *rand.Rand
	logger        *log.Logger
	trace         bool
	frames        uint64
}

// New initializes a new instance of Chip8 with the given settings. If settings
// is nil, DefaultSettings will be used.
// driver and audio are the names of the registered collaborators to use.
func New(driver, audio string, s *Chip8Settings) (c *Chip8, err error) {
	drv := drivers[driver]
	if drv == nil {
		return nil, fmt.Errorf("driver %s not found", driver)
	}
	aud := audios[audio]
	if aud == nil {
		return nil, fmt.Errorf("audio %s not found", audio)
	}

	if s == nil {
		s = DefaultSettings
	}
	if err = s.Validate(); err != nil {
		return nil, err
	}

	logger := s.Logger
	if logger == nil {
		logger = log.NewWithConfig(log.DefaultConfig())
	}
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	c = &Chip8{
		Stack:          make([]uint16, 0, s.StackSize),
		PC:             ProgramStart,
		CyclesPerFrame: s.CyclesPerFrame,
		driver:         driver,
		audio:          audio,
		drv:            drv,
		aud:            aud,
		rnd:            rand.New(rand.NewSource(seed)),
		logger:         logger,
		trace:          s.Trace,
	}
	copy(c.Memory[FontAddress:], fontSet[:])

	if err = drv.OnInit(c); err != nil {
		return nil, errors.Wrapf(err, "initializing driver %s", driver)
	}
	if err = aud.OnInit(c); err != nil {
		_ = drv.Close()
		return nil, errors.Wrapf(err, "initializing audio %s", audio)
	}

	logger.Debug("Emulator initialized",
		log.String("driver", driver),
		log.String("audio", audio),
		log.Int("cycles_per_frame", s.CyclesPerFrame),
		log.Int("stack_size", s.StackSize))
	return c, nil
}

// String returns formatted information about the instance of the emulator.
func (c *Chip8) String() string {
	return fmt.Sprintf("Chip8{Registers: [% 02X] I: %04X, Stack: % 04X, "+
		"PC: %04X, DT: %02X, ST: %02X, Keypad: %016b, Frames: %v}",
		c.V, c.I, c.Stack, c.PC, c.DT, c.ST, c.Keypad.Down, c.frames)
}

// Driver returns the name of the display driver in use by the emulator.
func (c *Chip8) Driver() string { return c.driver }

// Audio returns the name of the audio implementation in use by the emulator.
func (c *Chip8) Audio() string { return c.audio }

// Frames returns the number of frames executed so far.
func (c *Chip8) Frames() uint64 { return c.frames }

// Logger returns the logger the emulator reports to.
func (c *Chip8) Logger() *log.Logger { return c.logger }

// GetDriverData gets custom data from the display driver.
// Returns nil if the data key is not found.
func (c *Chip8) GetDriverData(key string) interface{} {
	return c.drv.GetData(key)
}

// Load opens a CHIP-8 binary file and loads it into memory.
// Returns the size, in bytes, of the program and an error if any.
func (c *Chip8) Load(path string) (size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	size, err = c.LoadReader(f)
	if err != nil {
		return size, errors.Wrapf(err, "loading %s", path)
	}
	return size, nil
}

// LoadReader reads a CHIP-8 binary from r and loads it into memory.
func (c *Chip8) LoadReader(r io.Reader) (size int64, err error) {
	// one byte past the limit is enough to tell an oversized program
	program, err := io.ReadAll(io.LimitReader(r, MemorySize-ProgramStart+1))
	if err != nil {
		return 0, err
	}
	return int64(len(program)), c.LoadRaw(program)
}

// LoadRaw loads a byte array as a CHIP-8 binary into memory and points the
// program counter at its first instruction.
func (c *Chip8) LoadRaw(program []byte) error {
	if len(program) > MemorySize-ProgramStart {
		return &OutOfMemoryErr{int64(len(program))}
	}
	copy(c.Memory[ProgramStart:], program)
	c.PC = ProgramStart
	c.logger.Info("Loaded program", log.Int("size", len(program)))
	return nil
}

// Step fetches, decodes and executes a single instruction. flush reports
// whether the instruction updated the display, which ends the current frame.
func (c *Chip8) Step() (flush bool, err error) {
	pc := c.PC
	op := Decode(c.Memory[pc&addressMask], c.Memory[(pc+1)&addressMask])
	c.PC += 2

	if c.trace {
		c.logger.Debug("Execute",
			log.Hex("pc", pc),
			log.String("code", decodeInstruction(pc, op).String()))
	}
	return c.execute(pc, op)
}

// Frame runs one 60 Hz tick: it stores the keypad snapshot, counts the timers
// down and executes up to CyclesPerFrame instructions.
func (c *Chip8) Frame(k Keypad) error {
	c.Keypad = k

	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.ST--
		if c.ST == 0 {
			if err := c.aud.Pause(); err != nil {
				return errors.Wrap(err, "stopping tone")
			}
		}
	}

	for i := 0; i < c.CyclesPerFrame; i++ {
		flush, err := c.Step()
		if err != nil {
			return err
		}
		if flush {
			break
		}
	}

	c.frames++
	if err := c.aud.Frame(); err != nil {
		return errors.Wrap(err, "audio frame")
	}
	return nil
}

// Run runs the emulator, blocking the thread until the display driver reports
// a quit request, ctx is cancelled or the program fails.
func (c *Chip8) Run(ctx context.Context) error {
	c.logger.Debug("Starting emulation", log.Hex("pc", c.PC))
	err := c.drv.Run(ctx, c.Frame)
	if err != nil {
		c.logger.Debug("Emulation stopped",
			log.Err(err),
			log.String("state", c.String()))
		return err
	}
	c.logger.Debug("Emulation finished", log.Int("frames", int(c.frames)))
	return nil
}

// Close releases the collaborators. The emulator must not be used afterwards.
func (c *Chip8) Close() error {
	errAudio := c.aud.Close()
	errDriver := c.drv.Close()
	if errAudio != nil {
		return errors.Wrapf(errAudio, "closing audio %s", c.audio)
	}
	if errDriver != nil {
		return errors.Wrapf(errDriver, "closing driver %s", c.driver)
	}
	return nil
}

func (c *Chip8) updateScreen() error {
	if err := c.drv.UpdateScreen(c); err != nil {
		return errors.Wrap(err, "updating screen")
	}
	return nil
}
