package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-chipvm/chipvm/audio"
	"github.com/valerio/go-chipvm/chipvm/backend"
	"github.com/valerio/go-chipvm/chipvm/backend/headless"
	"github.com/valerio/go-chipvm/chipvm/backend/sdl2"
	"github.com/valerio/go-chipvm/chipvm/backend/terminal"
	"github.com/valerio/go-chipvm/chipvm/config"
	"github.com/valerio/go-chipvm/chipvm/emulator"
	"github.com/valerio/go-chipvm/chipvm/input"
	"github.com/valerio/go-chipvm/chipvm/statsview"
	"github.com/valerio/go-chipvm/chipvm/timing"
	"github.com/valerio/go-chipvm/chipvm/video"
)

func main() {
	app := cli.NewApp()
	app.Name = "chipvm"
	app.Description = "A CHIP-8 family and COSMAC VIP emulator"
	app.Usage = "chipvm [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = append(quirkFlags,
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "database",
			Usage: "JSON database of per-ROM settings, keyed by SHA-1",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal or sdl2",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the register and disassembly panels",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale for the sdl2 backend",
			Value: 1,
		},
		cli.StringFlag{
			Name:  "palette",
			Usage: "Color palette: " + strings.Join(video.PaletteNames(), ", "),
		},
		cli.StringFlag{
			Name:  "beep",
			Usage: "WAV or MP3 sample played instead of the synthesized buzzer",
		},
		cli.StringFlag{
			Name:  "wav",
			Usage: "Record the audio output to a WAV file",
		},
		cli.StringFlag{
			Name:  "vip-monitor",
			Usage: "COSMAC VIP monitor ROM mapped at 0x8000",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing: adaptive, ticker or none",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for the random number generator (0 = random)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "stats",
			Usage: "Serve runtime statistics over HTTP (needs the statsview build tag)",
		},
		cli.StringFlag{
			Name:  "stats-addr",
			Usage: "Address of the statistics server",
			Value: statsview.DefaultAddress,
		},
	)
	app.Action = runEmulator
	app.Commands = []cli.Command{disasmCommand}

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func romPath(c *cli.Context) (string, error) {
	if path := c.String("rom"); path != "" {
		return path, nil
	}
	if c.NArg() > 0 {
		return c.Args().Get(0), nil
	}
	cli.ShowAppHelp(c)
	return "", errors.New("no ROM path provided")
}

// resolveSettings merges the command line over the database entry for rom.
func resolveSettings(c *cli.Context, rom []byte, name string) (config.Settings, error) {
	override, err := hintFromFlags(c)
	if err != nil {
		return config.Settings{}, err
	}

	var stored config.Hint
	if path := c.String("database"); path != "" {
		db, err := config.LoadDatabaseFile(path)
		if err != nil {
			return config.Settings{}, err
		}
		if hint, ok := db.Lookup(rom); ok {
			slog.Info("Found ROM in database", "title", hint.Title, "digest", config.Digest(rom))
			stored = hint
		}
	}

	settings := config.Resolve(override, stored)
	if settings.Title == "" {
		settings.Title = name
	}
	return settings, nil
}

func buildOptions(c *cli.Context, keypad *input.Keypad, mixer *audio.Mixer) (emulator.Options, error) {
	opts := emulator.Options{
		Keypad: keypad,
		Mixer:  mixer,
		Seed:   c.Uint64("seed"),
	}
	if name := c.String("palette"); name != "" {
		palette, err := video.LookupPalette(name)
		if err != nil {
			return opts, err
		}
		opts.Palette = palette
	}
	if path := c.String("beep"); path != "" {
		voice, err := audio.LoadSampleFile(path)
		if err != nil {
			return opts, err
		}
		opts.Beep = voice
	}
	if path := c.String("vip-monitor"); path != "" {
		rom, err := os.ReadFile(path)
		if err != nil {
			return opts, fmt.Errorf("reading monitor rom: %w", err)
		}
		opts.MonitorROM = rom
	}
	return opts, nil
}

func newBackend(c *cli.Context, romFile string) (backend.Backend, timing.Limiter, error) {
	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, nil, errors.New("headless mode requires --frames option with a positive value")
		}
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romFile)
		if err != nil {
			return nil, nil, err
		}
		limiter := timing.NewNoOpLimiter()
		if c.IsSet("limiter") {
			limiter, err = parseLimiter(c.String("limiter"))
		}
		return headless.New(frames, snapshots), limiter, err
	}

	limiter, err := parseLimiter(c.String("limiter"))
	if err != nil {
		return nil, nil, err
	}
	switch c.String("backend") {
	case "terminal":
		return terminal.New(), limiter, nil
	case "sdl2":
		return sdl2.New(), limiter, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", c.String("backend"))
}

func parseLimiter(name string) (timing.Limiter, error) {
	limiter, ok := timing.ParseLimiter(name)
	if !ok {
		return nil, fmt.Errorf("unknown limiter %q", name)
	}
	return limiter, nil
}

func runEmulator(c *cli.Context) error {
	path, err := romPath(c)
	if err != nil {
		return err
	}
	rom, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	settings, err := resolveSettings(c, rom, name)
	if err != nil {
		return err
	}

	mixer := audio.NewMixer()
	if wavPath := c.String("wav"); wavPath != "" {
		recorder, err := audio.CreateRecorder(wavPath)
		if err != nil {
			return err
		}
		mixer.SetRecorder(recorder)
		defer func() {
			mixer.SetRecorder(nil)
			if err := recorder.Close(); err != nil {
				slog.Error("Failed to finish recording", "path", wavPath, "error", err)
			}
		}()
	}

	keypad := input.NewKeypad()
	opts, err := buildOptions(c, keypad, mixer)
	if err != nil {
		return err
	}
	emu, err := emulator.New(settings, rom, opts)
	if err != nil {
		return err
	}

	b, limiter, err := newBackend(c, path)
	if err != nil {
		return err
	}
	if ticker, ok := limiter.(*timing.TickerLimiter); ok {
		defer ticker.Stop()
	}

	if c.Bool("stats") {
		if statsview.Available() {
			statsview.Launch(os.Stderr, c.String("stats-addr"))
		} else {
			slog.Warn("Statistics server not built in, rebuild with -tags statsview")
		}
	}

	if err := b.Init(backend.BackendConfig{
		Title:     fmt.Sprintf("%s (%s)", settings.Title, settings.Variant),
		Scale:     c.Int("scale"),
		ShowDebug: c.Bool("debug"),
		Audio:     emu.GetAudioProvider(),
	}); err != nil {
		return err
	}
	defer b.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := emulator.NewLoop(emu, b, limiter, keypad, name)
	err = loop.Run(ctx)
	slog.Info("Emulation finished", "frames", loop.Frames())
	return err
}
