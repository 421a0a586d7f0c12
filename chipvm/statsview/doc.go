// Package statsview serves runtime statistics of the emulator process over
// HTTP. It is only built with the statsview build tag:
//
//	go build -tags statsview ./cmd/chipvm
//
// Charts are then served at http://localhost:12600/debug/statsview and the
// pprof endpoints at http://localhost:12600/debug/pprof/.
package statsview
