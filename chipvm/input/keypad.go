package input

import "sync"

// Keypad is the 16-key hexadecimal keypad. It is written by the backend
// goroutine and read by the interpreter, so all access is locked.
type Keypad struct {
	mu   sync.Mutex
	keys uint16
}

func NewKeypad() *Keypad {
	return &Keypad{}
}

func (k *Keypad) Press(key uint8) {
	k.mu.Lock()
	k.keys |= 1 << (key & 0xF)
	k.mu.Unlock()
}

func (k *Keypad) Release(key uint8) {
	k.mu.Lock()
	k.keys &^= 1 << (key & 0xF)
	k.mu.Unlock()
}

func (k *Keypad) IsPressed(key uint8) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys&(1<<(key&0xF)) != 0
}

// FirstPressed returns the lowest pressed key.
func (k *Keypad) FirstPressed() (uint8, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i := uint8(0); i < 16; i++ {
		if k.keys&(1<<i) != 0 {
			return i, true
		}
	}
	return 0, false
}

// Snapshot returns the pressed keys as a bitmask, bit n for key n.
func (k *Keypad) Snapshot() uint16 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.mu.Lock()
	k.keys = 0
	k.mu.Unlock()
}
