package headless_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chipvm/chipvm/audio"
	"github.com/valerio/go-chipvm/chipvm/backend"
	"github.com/valerio/go-chipvm/chipvm/backend/headless"
	"github.com/valerio/go-chipvm/chipvm/debug"
	"github.com/valerio/go-chipvm/chipvm/input/action"
	"github.com/valerio/go-chipvm/chipvm/input/event"
	"github.com/valerio/go-chipvm/chipvm/video"
)

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{Title: "Test"}))

		frame := video.NewFrameBuffer(64, 32)
		for i := 0; i < 3; i++ {
			events, err := h.Update(frame)
			require.NoError(t, err)

			if i < 2 {
				assert.Empty(t, events)
			} else {
				require.Len(t, events, 1)
				assert.Equal(t, action.EmulatorQuit, events[0].Action)
				assert.Equal(t, event.Press, events[0].Type)
			}
		}

		assert.NoError(t, h.Cleanup())
	})

	t.Run("needs a frame count", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		assert.Error(t, h.Init(backend.BackendConfig{}))
	})

	t.Run("drains audio", func(t *testing.T) {
		mixer := audio.NewMixer()
		h := headless.New(5, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{Audio: mixer}))

		mixer.PushFrame(audio.NewBuzzer(), 1)
		require.NotZero(t, mixer.Buffered())
		_, err := h.Update(video.NewFrameBuffer(8, 8))
		require.NoError(t, err)
		assert.Zero(t, mixer.Buffered())
	})

	t.Run("final state report", func(t *testing.T) {
		h := headless.New(1, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{}))
		h.UpdateDebugData(&debug.CompleteDebugData{Interpreter: &debug.InterpreterState{PC: 0x200}})

		events, err := h.Update(video.NewFrameBuffer(8, 8))
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestHeadlessSnapshots(t *testing.T) {
	dir := t.TempDir()
	config, err := headless.CreateSnapshotConfig(2, dir, "/roms/Space Invaders.ch8")
	require.NoError(t, err)
	assert.True(t, config.Enabled)
	assert.Equal(t, "Space Invaders", config.ROMName)

	h := headless.New(5, config)
	require.NoError(t, h.Init(backend.BackendConfig{}))

	frame := video.NewFrameBuffer(64, 32)
	for i := 0; i < 5; i++ {
		_, err := h.Update(frame)
		require.NoError(t, err)
	}

	// frames 2 and 4, then the final frame
	saved := h.Snapshots()
	require.Len(t, saved, 3)
	for _, path := range saved {
		assert.Equal(t, dir, filepath.Dir(path))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}
	assert.Contains(t, filepath.Base(saved[2]), "Space Invaders_frame_5")
}

func TestCreateSnapshotConfigDisabled(t *testing.T) {
	config, err := headless.CreateSnapshotConfig(0, "", "rom.ch8")
	require.NoError(t, err)
	assert.False(t, config.Enabled)
	assert.Empty(t, config.Directory)
}

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
	var _ backend.DebugViewer = (*headless.Backend)(nil)
}
