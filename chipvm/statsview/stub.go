//go:build !statsview

package statsview

import "io"

// DefaultAddress is used when Launch is given an empty address.
const DefaultAddress = "localhost:12600"

// Launch does nothing without the statsview build tag.
func Launch(io.Writer, string) {}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
