package emulator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/valerio/go-chipvm/chipvm/backend"
	"github.com/valerio/go-chipvm/chipvm/debug"
	"github.com/valerio/go-chipvm/chipvm/input"
	"github.com/valerio/go-chipvm/chipvm/input/action"
	"github.com/valerio/go-chipvm/chipvm/input/event"
	"github.com/valerio/go-chipvm/chipvm/timing"
)

// Loop runs an emulator against a backend: one emulated frame, one backend
// update and one limiter wait per iteration.
type Loop struct {
	emu     Emulator
	backend backend.Backend
	limiter timing.Limiter
	input   *input.Manager

	state    debug.DebuggerState
	quit     bool
	frames   uint64
	snapName string

	// OnFrame, when set, runs after every emulated frame.
	OnFrame func()
}

// NewLoop wires the input actions of keypad and the emulator controls. A nil
// limiter runs unthrottled.
func NewLoop(emu Emulator, b backend.Backend, limiter timing.Limiter, keypad *input.Keypad, snapName string) *Loop {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	l := &Loop{
		emu:      emu,
		backend:  b,
		limiter:  limiter,
		input:    input.NewManager(keypad),
		snapName: snapName,
	}

	l.input.On(action.EmulatorPauseToggle, event.Press, l.togglePause)
	l.input.On(action.EmulatorStepFrame, event.Press, func() {
		l.state = debug.DebuggerStepFrame
	})
	l.input.On(action.EmulatorReset, event.Press, func() {
		emu.HandleAction(action.EmulatorReset, true)
	})
	l.input.On(action.EmulatorSnapshot, event.Press, func() {
		debug.TakeSnapshot(emu.GetCurrentFrame(), l.snapName)
	})
	l.input.On(action.EmulatorMuteToggle, event.Press, func() {
		provider := emu.GetAudioProvider()
		if provider == nil {
			return
		}
		provider.ToggleMute()
		slog.Info("Audio mute toggled", "muted", provider.Muted())
	})
	l.input.On(action.EmulatorQuit, event.Press, func() {
		l.quit = true
	})
	return l
}

func (l *Loop) togglePause() {
	if l.state == debug.DebuggerRunning {
		l.state = debug.DebuggerPaused
		slog.Info("Emulation paused")
		return
	}
	l.state = debug.DebuggerRunning
	l.limiter.Reset()
	slog.Info("Emulation resumed")
}

// State is the current debugger state.
func (l *Loop) State() debug.DebuggerState {
	return l.state
}

// Frames is the number of frames emulated by the loop.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// Run loops until the backend asks to quit, the program exits or ctx is
// done. A cancelled context is not an error.
func (l *Loop) Run(ctx context.Context) error {
	viewer, _ := l.backend.(backend.DebugViewer)

	for !l.quit {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if l.state != debug.DebuggerPaused {
			if err := l.emu.RunUntilFrame(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			l.frames++
			if l.OnFrame != nil {
				l.OnFrame()
			}
			if l.state == debug.DebuggerStepFrame {
				l.state = debug.DebuggerPaused
			}
		}

		if viewer != nil {
			data := l.emu.ExtractDebugData()
			data.DebuggerState = l.state
			viewer.UpdateDebugData(data)
		}

		events, err := l.backend.Update(l.emu.GetCurrentFrame())
		if err != nil {
			return err
		}
		for _, evt := range events {
			l.input.Trigger(evt.Action, evt.Type)
		}

		if l.emu.Terminated() {
			slog.Info("Program terminated", "frames", l.frames)
			return nil
		}
		l.limiter.WaitForNextFrame()
	}
	return nil
}
