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

package main

import (
	"context"
	"errors"
	"os"

	"github.com/Francesco149/go-hachi/hachi"
	"github.com/Francesco149/go-hachi/internal/config"
	pkgerrors "github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
	"gopkg.in/urfave/cli.v1"
)

var (
	driverFlag = cli.StringFlag{
		Name:  "driver",
		Usage: "display driver: glfw, termloop, headless or null",
	}
	audioFlag = cli.StringFlag{
		Name:  "audio",
		Usage: "audio driver: sdl, wav or null",
	}
	cyclesFlag = cli.IntFlag{
		Name:  "cycles",
		Usage: "instructions executed per frame",
	}
	seedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "random number generator seed, 0 for a time based seed",
	}
	traceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "log every executed instruction (needs --debug)",
	}
	scaleFlag = cli.IntFlag{
		Name:  "scale",
		Usage: "window pixels per CHIP-8 pixel",
	}
	fpsFlag = cli.Float64Flag{
		Name:  "fps",
		Usage: "frames per second of the termloop and headless drivers",
	}
	framesFlag = cli.IntFlag{
		Name:  "frames",
		Usage: "stop a headless run after this many frames",
	}
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "print the final screen of a headless run",
	}
	sampleFlag = cli.StringFlag{
		Name:  "sample",
		Usage: "wav or mp3 file to use as the tone",
	}
	wavFlag = cli.StringFlag{
		Name:  "wav",
		Usage: "output file of the wav audio driver",
	}

	runFlags = []cli.Flag{
		driverFlag, audioFlag, cyclesFlag, seedFlag, traceFlag, scaleFlag,
		fpsFlag, framesFlag, sampleFlag, wavFlag,
	}
)

func runCommand(ctx context.Context) cli.Command {
	return cli.Command{
		Action:    func(c *cli.Context) error { return runProgram(ctx, c) },
		Name:      "run",
		Usage:     "Run a CHIP-8 program",
		ArgsUsage: "<program>",
		Flags:     append([]cli.Flag{dumpFlag}, runFlags...),
	}
}

// makeConfig loads the defaults, the config file and the command line flags,
// in that order.
func makeConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if file := c.GlobalString(configFileFlag.Name); file != "" {
		if err := config.Load(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if c.IsSet(driverFlag.Name) {
		cfg.Display.Driver = c.String(driverFlag.Name)
	}
	if c.IsSet(audioFlag.Name) {
		cfg.Audio.Driver = c.String(audioFlag.Name)
	}
	if c.IsSet(cyclesFlag.Name) {
		cfg.Emulator.CyclesPerFrame = c.Int(cyclesFlag.Name)
	}
	if c.IsSet(seedFlag.Name) {
		cfg.Emulator.Seed = c.Int64(seedFlag.Name)
	}
	if c.IsSet(traceFlag.Name) {
		cfg.Emulator.Trace = c.Bool(traceFlag.Name)
	}
	if c.IsSet(scaleFlag.Name) {
		cfg.Display.Scale = c.Int(scaleFlag.Name)
	}
	if c.IsSet(fpsFlag.Name) {
		cfg.Display.FPS = c.Float64(fpsFlag.Name)
	}
	if c.IsSet(framesFlag.Name) {
		cfg.Display.Frames = c.Int(framesFlag.Name)
	}
	if c.IsSet(sampleFlag.Name) {
		cfg.Audio.Sample = c.String(sampleFlag.Name)
	}
	if c.IsSet(wavFlag.Name) {
		cfg.Audio.WavPath = c.String(wavFlag.Name)
	}

	return cfg, cfg.Validate()
}

func runProgram(ctx context.Context, c *cli.Context) (err error) {
	if c.NArg() != 1 {
		return errors.New("expected exactly one program file")
	}
	path := c.Args().First()

	cfg, err := makeConfig(c)
	if err != nil {
		return err
	}
	if err = cfg.Apply(); err != nil {
		return err
	}
	if c.Bool(dumpFlag.Name) {
		if cfg.Display.Driver != "headless" {
			return errors.New("--dump needs the headless driver")
		}
		if err = hachi.SetDriverData("headless", "dump", os.Stdout); err != nil {
			return err
		}
	}

	emu, err := hachi.New(cfg.Display.Driver, cfg.Audio.Driver, cfg.Settings(logger))
	if err != nil {
		return err
	}
	defer func() {
		if errClose := emu.Close(); errClose != nil && err == nil {
			err = errClose
		}
	}()

	size, err := emu.Load(path)
	if err != nil {
		return err
	}
	logger.Info("Running program",
		log.String("path", path),
		log.Int("size", int(size)),
		log.String("driver", cfg.Display.Driver),
		log.String("audio", cfg.Audio.Driver))

	err = emu.Run(ctx)
	switch pkgerrors.Cause(err).(type) {
	case *hachi.BadCodeErr:
		err = pkgerrors.Wrap(err, "the program might be written for a "+
			"different CHIP-8 variant")
	case *hachi.StackOverflowErr, *hachi.StackUnderflowErr:
		err = pkgerrors.Wrap(err, "call stack corrupted")
	}
	return err
}
