package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
	"github.com/valerio/go-chipvm/chipvm/config"
	"github.com/valerio/go-chipvm/chipvm/disasm"
)

var disasmCommand = cli.Command{
	Name:      "disasm",
	Usage:     "Disassemble a ROM for the given variant",
	ArgsUsage: "<ROM file>",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "variant",
			Usage: "Machine variant",
			Value: config.Chip8.String(),
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return errors.New("no ROM path provided")
		}
		rom, err := os.ReadFile(c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("reading rom: %w", err)
		}
		v, err := config.ParseVariant(c.String("variant"))
		if err != nil {
			return err
		}
		return writeListing(os.Stdout, rom, v)
	},
}

// writeListing disassembles rom as loaded for v, one instruction per line.
func writeListing(w io.Writer, rom []byte, v config.Variant) error {
	start := v.ProgramStart()
	end := start + uint32(len(rom))
	read := func(address uint32) uint8 {
		if address < start || address >= end {
			return 0
		}
		return rom[address-start]
	}

	for pc := start; pc < end; {
		var line disasm.Line
		if v == config.CosmacVIP {
			line = disasm.DisassembleCDP1802At(pc, read)
		} else {
			line = disasm.DisassembleAt(pc, read, v)
		}
		if _, err := fmt.Fprintln(w, disasm.FormatLine(line, false)); err != nil {
			return err
		}
		pc += uint32(line.Length)
	}
	return nil
}
