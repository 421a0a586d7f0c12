package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli"
	"github.com/valerio/go-chipvm/chipvm/config"
)

// quirkFlags override the variant defaults and the database. Boolean quirks
// are strings so that "unset" stays distinct from "false".
var quirkFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "variant",
		Usage: "Machine variant (chip-8, strict-chip-8, chip-8x, schip-1.0, schip-1.1, schip-modern, xo-chip, mega-chip, hyperwave-chip-64, cosmac-vip)",
	},
	cli.IntFlag{
		Name:  "ipf",
		Usage: "Instructions per frame (0 = variant default)",
	},
	cli.StringFlag{
		Name:  "vf-reset",
		Usage: "8XY1/8XY2/8XY3 clear VF (true/false)",
	},
	cli.StringFlag{
		Name:  "memory-increment",
		Usage: "FX55/FX65 index increment: none, x or x+1",
	},
	cli.StringFlag{
		Name:  "display-wait",
		Usage: "Drawing waits for the vertical blank (true/false)",
	},
	cli.StringFlag{
		Name:  "clipping",
		Usage: "Sprites clip at the screen edge (true/false)",
	},
	cli.StringFlag{
		Name:  "shift-vx",
		Usage: "8XY6/8XYE shift VX in place (true/false)",
	},
	cli.StringFlag{
		Name:  "jump-vx",
		Usage: "BNNN jumps to XNN + VX (true/false)",
	},
}

// flagSource is the subset of cli.Context read by hintFromFlags.
type flagSource interface {
	String(name string) string
	Int(name string) int
	IsSet(name string) bool
}

func hintFromFlags(c flagSource) (config.Hint, error) {
	var hint config.Hint

	if name := c.String("variant"); name != "" {
		v, err := config.ParseVariant(name)
		if err != nil {
			return hint, err
		}
		hint.Variant = &v
	}
	if c.IsSet("ipf") {
		ipf := c.Int("ipf")
		hint.IPF = &ipf
	}
	if s := c.String("memory-increment"); s != "" {
		m, err := config.ParseMemoryIncrement(s)
		if err != nil {
			return hint, err
		}
		hint.MemoryIncrement = &m
	}

	bools := []struct {
		name   string
		target **bool
	}{
		{"vf-reset", &hint.VFReset},
		{"display-wait", &hint.DisplayWait},
		{"clipping", &hint.Clipping},
		{"shift-vx", &hint.ShiftVXInPlace},
		{"jump-vx", &hint.JumpWithVX},
	}
	for _, b := range bools {
		s := c.String(b.name)
		if s == "" {
			continue
		}
		value, err := strconv.ParseBool(s)
		if err != nil {
			return hint, fmt.Errorf("invalid --%s value %q: %w", b.name, s, err)
		}
		*b.target = &value
	}
	return hint, nil
}
