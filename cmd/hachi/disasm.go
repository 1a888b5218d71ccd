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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Francesco149/go-hachi/hachi"
	"github.com/Francesco149/go-hachi/internal/config"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"
)

var (
	originFlag = cli.UintFlag{
		Name:  "origin",
		Usage: "address the program is loaded at",
		Value: hachi.ProgramStart,
	}

	disasmCommand = cli.Command{
		Action:    disassemble,
		Name:      "disasm",
		Usage:     "Disassemble a CHIP-8 program",
		ArgsUsage: "<program>",
		Flags:     []cli.Flag{originFlag},
	}

	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[file]",
		Flags:       runFlags,
		Description: `The dumpconfig command shows configuration values.`,
	}
)

func disassemble(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one program file")
	}
	program, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}

	origin := c.Uint(originFlag.Name)
	if origin >= hachi.MemorySize {
		return fmt.Errorf("origin %X is out of memory", origin)
	}
	writeDisassembly(os.Stdout, hachi.Disassemble(program, uint16(origin)))
	return nil
}

// writeDisassembly prints one table row per instruction.
func writeDisassembly(w io.Writer, instructions []hachi.Instruction) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"addr", "opcode", "code", "ascii", "description"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, i := range instructions {
		ascii := i.ASCII()
		if len(ascii) != 0 {
			ascii = fmt.Sprintf("`%s`", ascii)
		}

		opcodeFormatter := "%04X"
		if i.Size() == 1 {
			opcodeFormatter = "%02X"
		}

		table.Append([]string{
			fmt.Sprintf("%04X", i.Address()),
			fmt.Sprintf(opcodeFormatter, i.Opcode()),
			i.String(),
			ascii,
			i.Description(),
		})
	}
	table.Render()
}

func dumpConfig(c *cli.Context) error {
	cfg, err := makeConfig(c)
	if err != nil {
		return err
	}

	out, err := config.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if c.NArg() > 0 {
		dump, err = os.OpenFile(c.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
