package config

// Hint is a partial configuration. Nil fields are unspecified and fall
// through to the next source during resolution.
type Hint struct {
	Title           string           `json:"title,omitempty"`
	Variant         *Variant         `json:"variant,omitempty"`
	VFReset         *bool            `json:"vfReset,omitempty"`
	MemoryIncrement *MemoryIncrement `json:"memoryIncrement,omitempty"`
	DisplayWait     *bool            `json:"displayWait,omitempty"`
	Clipping        *bool            `json:"clipping,omitempty"`
	ShiftVXInPlace  *bool            `json:"shiftVXInPlace,omitempty"`
	JumpWithVX      *bool            `json:"jumpWithVX,omitempty"`
	IPF             *int             `json:"ipf,omitempty"`
}

// Settings is the fully resolved, immutable session configuration.
type Settings struct {
	Title   string
	Variant Variant
	Quirks  Quirks
	IPF     int
}

// Resolve merges sources with precedence override > database > variant
// default. Unknown or meaningless values never fail resolution.
func Resolve(override, database Hint) Settings {
	variant := Chip8
	if database.Variant != nil {
		variant = *database.Variant
	}
	if override.Variant != nil {
		variant = *override.Variant
	}

	defaults := DefaultQuirks(variant)
	q := Quirks{
		VFReset:         pickBool(override.VFReset, database.VFReset, defaults.VFReset),
		MemoryIncrement: pickIncrement(override.MemoryIncrement, database.MemoryIncrement, defaults.MemoryIncrement),
		DisplayWait:     pickBool(override.DisplayWait, database.DisplayWait, defaults.DisplayWait),
		Clipping:        pickBool(override.Clipping, database.Clipping, defaults.Clipping),
		ShiftVXInPlace:  pickBool(override.ShiftVXInPlace, database.ShiftVXInPlace, defaults.ShiftVXInPlace),
		JumpWithVX:      pickBool(override.JumpWithVX, database.JumpWithVX, defaults.JumpWithVX),
	}

	ipf := DefaultIPF(variant, q.DisplayWait)
	if database.IPF != nil && *database.IPF > 0 {
		ipf = *database.IPF
	}
	if override.IPF != nil && *override.IPF > 0 {
		ipf = *override.IPF
	}

	title := database.Title
	if override.Title != "" {
		title = override.Title
	}

	return Settings{
		Title:   title,
		Variant: variant,
		Quirks:  q,
		IPF:     ipf,
	}
}

func pickBool(override, database *bool, fallback bool) bool {
	if override != nil {
		return *override
	}
	if database != nil {
		return *database
	}
	return fallback
}

func pickIncrement(override, database *MemoryIncrement, fallback MemoryIncrement) MemoryIncrement {
	valid := func(m *MemoryIncrement) bool {
		return m != nil && *m >= IncrementNone && *m <= IncrementByXPlusOne
	}
	if valid(override) {
		return *override
	}
	if valid(database) {
		return *database
	}
	return fallback
}
