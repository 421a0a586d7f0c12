package config

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Database maps ROM digests to configuration hints.
//
// The on-disk format is a JSON object:
//
//	{"programs": {"<sha1 hex>": {"title": "...", "variant": "xo-chip", "ipf": 1000}}}
type Database struct {
	Programs map[string]Hint `json:"programs"`
}

// LoadDatabase decodes a hint database from r.
func LoadDatabase(r io.Reader) (*Database, error) {
	db := &Database{}
	if err := json.NewDecoder(r).Decode(db); err != nil {
		return nil, fmt.Errorf("decoding rom database: %w", err)
	}

	normalized := make(map[string]Hint, len(db.Programs))
	for digest, hint := range db.Programs {
		normalized[strings.ToLower(digest)] = hint
	}
	db.Programs = normalized

	return db, nil
}

// LoadDatabaseFile reads a hint database from path.
func LoadDatabaseFile(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rom database: %w", err)
	}
	defer f.Close()

	db, err := LoadDatabase(f)
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded rom database", "path", path, "entries", len(db.Programs))
	return db, nil
}

// Digest returns the key used to look a ROM up.
func Digest(rom []byte) string {
	sum := sha1.Sum(rom)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the hint for rom, if any. A nil database has no entries.
func (db *Database) Lookup(rom []byte) (Hint, bool) {
	if db == nil {
		return Hint{}, false
	}
	hint, ok := db.Programs[Digest(rom)]
	return hint, ok
}
