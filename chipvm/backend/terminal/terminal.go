package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chipvm/chipvm/backend"
	"github.com/valerio/go-chipvm/chipvm/backend/terminal/render"
	"github.com/valerio/go-chipvm/chipvm/debug"
	"github.com/valerio/go-chipvm/chipvm/input"
	"github.com/valerio/go-chipvm/chipvm/input/action"
	"github.com/valerio/go-chipvm/chipvm/input/event"
	"github.com/valerio/go-chipvm/chipvm/video"
)

const (
	registerHeight = 12
	disasmHeight   = 9
	minTermWidth   = 80
	minTermHeight  = 24
	minPanelWidth  = 36
)

// Key expiry timeout - slightly longer than typical key repeat interval
const keyTimeout = 100 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen     tcell.Screen
	running    bool
	logBuffer  *render.LogBuffer
	logLevel   slog.Level
	config     backend.BackendConfig
	eventQueue []backend.InputEvent
	signals    chan os.Signal

	keyStates  map[action.Action]time.Time // Last time each key was pressed
	activeKeys map[action.Action]bool      // Keys active in previous frame

	debugData *debug.CompleteDebugData
}

// New creates a new terminal backend
func New() *Backend {
	return &Backend{
		logLevel: slog.LevelInfo,
	}
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return t.initScreen(screen, config)
}

func (t *Backend) initScreen(screen tcell.Screen, config backend.BackendConfig) error {
	t.config = config
	t.eventQueue = nil
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.screen = screen
	t.running = true

	// Anything written to stderr would tear the screen, so logs go to the
	// panel instead.
	t.logBuffer = render.NewLogBuffer(100)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	slog.Info("Terminal backend initialized", "title", config.Title)
	if config.ShowDebug {
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	return nil
}

// UpdateDebugData stores the state shown by the register and disassembly
// panels.
func (t *Backend) UpdateDebugData(data *debug.CompleteDebugData) {
	t.debugData = data
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := time.Now()

	select {
	case sig := <-t.signals:
		slog.Info("Received signal", "signal", sig)
		t.running = false
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	// Terminals report no key releases: a keypad key stays down while
	// repeats keep arriving and is released once they stop.
	currentlyActive := make(map[action.Action]bool)
	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		currentlyActive[act] = true
		if !t.activeKeys[act] {
			key, _ := act.Keypad()
			slog.Debug("Key press", "key", fmt.Sprintf("%X", key))
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		}
	}
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			key, _ := act.Keypad()
			slog.Debug("Key release", "key", fmt.Sprintf("%X", key))
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	if !t.running {
		return events, nil
	}

	t.render(frame)
	t.screen.Show()
	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape: "Escape",
	tcell.KeyF5:     "F5",
	tcell.KeyF9:     "F9",
}

// tcellRuneNameMap converts runes to key names used in default mappings
var tcellRuneNameMap = map[rune]string{
	'1': "1", '2': "2", '3': "3", '4': "4",
	'q': "q", 'w': "w", 'e': "e", 'r': "r",
	'a': "a", 's': "s", 'd': "d", 'f': "f",
	'z': "z", 'x': "x", 'c': "c", 'v': "v",
	' ': "Space",
	'p': "p",
	'o': "o",
	'm': "m",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EmulatorQuit
	return mapping
}

// buildRuneMapping creates the rune mapping from default mappings
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for r, keyName := range tcellRuneNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[r] = act
		}
	}
	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if ev.Key() == tcell.KeyF10 {
		t.config.ShowDebug = !t.config.ShowDebug
		slog.Info("Debug display toggled", "enabled", t.config.ShowDebug)
		return
	}
	if act, ok := keyMapping[ev.Key()]; ok {
		t.queueAction(act, now)
		return
	}
	if ev.Key() != tcell.KeyRune {
		return
	}

	switch r := ev.Rune(); r {
	case '+', '=':
		t.changeLogLevel(1)
	case '-', '_':
		t.changeLogLevel(-1)
	default:
		if act, ok := runeMapping[unicode.ToLower(r)]; ok {
			t.queueAction(act, now)
		}
	}
}

func (t *Backend) queueAction(act action.Action, now time.Time) {
	if act == action.EmulatorQuit {
		t.running = false
	}
	if _, ok := act.Keypad(); ok {
		t.keyStates[act] = now
		return
	}
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel
	switch direction {
	case -1:
		switch t.logLevel {
		case slog.LevelDebug:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelError
		}
	case 1:
		switch t.logLevel {
		case slog.LevelError:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelDebug
		}
	}
	if oldLevel != t.logLevel {
		slog.Info("Log filter changed", "from", oldLevel, "to", t.logLevel)
	}
}

// layout picks the pixel stride so the frame fits left of the panels,
// two pixel rows per cell.
func layout(frame *video.FrameBuffer, termWidth, termHeight int) (step, cols, rows int) {
	w, h := int(frame.Width()), int(frame.Height())
	step = max(render.Step(w, termWidth-minPanelWidth-1), render.Step(h, 2*(termHeight-2)))
	cols = (w + step - 1) / step
	rows = (h/step + 1) / 2
	return step, cols, rows
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, style)
		return
	}

	step, cols, _ := layout(frame, termWidth, termHeight)
	dividerX := cols + 1
	rightPanelX := dividerX + 2
	rightPanelWidth := max(termWidth-rightPanelX, 0)

	t.drawBorders(termWidth, termHeight, dividerX, step)
	t.drawScreen(frame, step)

	logsY := 1
	if t.config.ShowDebug && t.debugData != nil {
		t.drawRegisters(rightPanelX, 1, rightPanelWidth, termHeight)
		t.drawDisassembly(rightPanelX, registerHeight+3, rightPanelWidth, termHeight)
		logsY = registerHeight + disasmHeight + 4
	}
	t.drawLogs(rightPanelX, logsY, rightPanelWidth, termHeight)
}

func (t *Backend) drawText(x, y, width int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= width {
			return
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX, step int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " " + t.config.Title + " "
	if step > 1 {
		title = fmt.Sprintf(" %s 1:%d ", t.config.Title, step)
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	startX := dividerX + 2
	logTitleY := 0
	if t.config.ShowDebug && t.debugData != nil {
		t.drawText(startX, 0, termWidth-startX, fmt.Sprintf(" %s ", t.debugData.Machine), titleStyle)
		for _, y := range []int{registerHeight + 1, registerHeight + disasmHeight + 3} {
			for x := dividerX + 1; x < termWidth; x++ {
				t.screen.SetContent(x, y, '─', nil, borderStyle)
			}
			t.screen.SetContent(dividerX, y, '├', nil, borderStyle)
		}
		t.drawText(startX, registerHeight+1, termWidth-startX, " Disassembly ", titleStyle)
		logTitleY = registerHeight + disasmHeight + 3
	}

	levelStr := "INFO"
	switch t.logLevel {
	case slog.LevelDebug:
		levelStr = "DEBUG"
	case slog.LevelWarn:
		levelStr = "WARN"
	case slog.LevelError:
		levelStr = "ERROR"
	}
	t.drawText(startX, logTitleY, termWidth-startX, fmt.Sprintf(" Logs [%s] (-/+ filter) ", levelStr), titleStyle)

	helpText := " SPACE=pause O=frame F5=reset F9=snapshot M=mute F10=debug ESC=exit "
	t.drawText(0, termHeight-1, termWidth, helpText, borderStyle)
}

func (t *Backend) drawScreen(frame *video.FrameBuffer, step int) {
	w, h := int(frame.Width()), int(frame.Height())
	for y, row := 0, 1; y < h; y, row = y+2*step, row+1 {
		for x, col := 0, 0; x < w; x, col = x+step, col+1 {
			top := frame.GetPixel(uint(x), uint(y))
			bottom := top
			if y+step < h {
				bottom = frame.GetPixel(uint(x), uint(y+step))
			}
			ch, style := render.HalfBlock(top, bottom)
			t.screen.SetContent(col, row, ch, nil, style)
		}
	}
}

func (t *Backend) drawRegisters(startX, startY, width, termHeight int) {
	data := t.debugData
	lines := []string{fmt.Sprintf("Status: %s  Frame: %d", data.DebuggerState, data.Frame)}

	switch {
	case data.Interpreter != nil:
		s := data.Interpreter
		for row := 0; row < 4; row++ {
			lines = append(lines, fmt.Sprintf("V%X: %02X  V%X: %02X  V%X: %02X  V%X: %02X",
				row*4, s.V[row*4], row*4+1, s.V[row*4+1], row*4+2, s.V[row*4+2], row*4+3, s.V[row*4+3]))
		}
		lines = append(lines,
			fmt.Sprintf("I: 0x%04X  PC: 0x%04X", s.I, s.PC),
			fmt.Sprintf("SP: %d  DT: %d  ST: %d", s.SP, s.DelayTimer, s.SoundTimer),
		)
		if s.SP > 0 && int(s.SP) <= len(s.Stack) {
			lines = append(lines, fmt.Sprintf("Return: 0x%04X", s.Stack[s.SP-1]))
		}
		if s.Cycles > 0 {
			lines = append(lines, fmt.Sprintf("Cycles: %d", s.Cycles))
		}
	case data.Processor != nil:
		s := data.Processor
		for row := 0; row < 4; row++ {
			lines = append(lines, fmt.Sprintf("R%X:%04X R%X:%04X R%X:%04X R%X:%04X",
				row*4, s.R[row*4], row*4+1, s.R[row*4+1], row*4+2, s.R[row*4+2], row*4+3, s.R[row*4+3]))
		}
		lines = append(lines,
			fmt.Sprintf("D: %02X  DF: %t  T: %02X", s.D, s.DF, s.T),
			fmt.Sprintf("P: %X  X: %X  IE: %t  Q: %t", s.P, s.X, s.IE, s.Q),
			fmt.Sprintf("State: %s", s.State),
			fmt.Sprintf("Cycles: %d", s.Cycles),
		)
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		y := startY + i
		if y >= termHeight || i >= registerHeight {
			break
		}
		t.drawText(startX, y, width, line, style)
	}
}

func (t *Backend) drawDisassembly(startX, startY, width, termHeight int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	pc := t.debugData.CurrentAddress()
	for i, text := range t.debugData.DisassemblyText() {
		y := startY + i
		if i >= disasmHeight || y >= termHeight {
			break
		}
		useStyle := style
		if t.debugData.Disassembly[i].Address == pc {
			useStyle = currentStyle
		}
		t.drawText(startX, y, width, text, useStyle)
	}
}

func (t *Backend) drawLogs(startX, startY, width, termHeight int) {
	availableHeight := termHeight - startY - 1
	if width <= 0 || availableHeight <= 0 {
		return
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, entry := range t.logBuffer.GetRecent(availableHeight, t.logLevel) {
		style := infoStyle
		switch entry.Level {
		case slog.LevelDebug:
			style = debugStyle
		case slog.LevelWarn:
			style = warnStyle
		case slog.LevelError:
			style = errStyle
		}

		text := render.FormatLogEntry(entry)
		if len(text) > width && width > 3 {
			text = text[:width-3] + "..."
		}
		t.drawText(startX, startY+i, width, text, style)
	}
}
