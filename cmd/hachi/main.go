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

// Command hachi runs and disassembles CHIP-8 programs.
package main

import (
	"context"
	"os"
	"runtime"

	"github.com/Francesco149/go-hachi/internal/config"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"gopkg.in/urfave/cli.v1"

	_ "github.com/Francesco149/go-hachi/drivers"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	debugFlag = cli.BoolFlag{
		Name:  "debug",
		Usage: "enable debug logging",
	}
	quietFlag = cli.BoolFlag{
		Name:  "quiet, q",
		Usage: "only log errors",
	}
)

// set up by app.Before once the global flags are parsed
var logger *log.Logger

func init() {
	// glfw and sdl calls must be made from the main thread
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(app.Context(), os.Args))
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string) int {
	a := cli.NewApp()
	a.Name = "hachi"
	a.Usage = "CHIP-8 emulator and disassembler"
	a.Version = buildinfo.Version(version, commit, date)
	a.Flags = []cli.Flag{configFileFlag, debugFlag, quietFlag}
	a.Before = func(c *cli.Context) error {
		logger = config.CreateLogger(c.GlobalBool(debugFlag.Name),
			c.GlobalBool("quiet"))
		return nil
	}
	a.Commands = []cli.Command{
		runCommand(ctx),
		disasmCommand,
		dumpConfigCommand,
	}

	if err := a.Run(args); err != nil {
		if logger == nil {
			logger = config.CreateLogger(false, false)
		}
		logger.Error("Command failed", log.Err(err))
		return 1
	}
	return 0
}
