package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Hexadecimal keypad, in key order so Key0+n is key n.
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorReset
	EmulatorSnapshot
	EmulatorMuteToggle
	EmulatorQuit
)

// Keypad returns the hexadecimal key for keypad actions.
func (a Action) Keypad() (uint8, bool) {
	if a >= Key0 && a <= KeyF {
		return uint8(a - Key0), true
	}
	return 0, false
}
