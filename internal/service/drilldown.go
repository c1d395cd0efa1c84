package service

import (
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

// Drill-down levels, outermost first.
const (
	LevelRoot        = "root"
	LevelCategory    = "category"
	LevelSubcategory = "subcategory"
)

const maxDrilldownDepth = 3

var nextLevel = map[string]string{
	LevelRoot:     LevelCategory,
	LevelCategory: LevelSubcategory,
}

// DrilldownEntry is one frame on the navigation stack.
type DrilldownEntry struct {
	Level      string
	CategoryID string
	Name       string
}

// DrilldownStack is the report navigation state. The root frame is implicit, so an
// empty stack shows top level categories.
type DrilldownStack struct {
	entries []DrilldownEntry
}

// Depth counts frames including the implicit root.
func (s DrilldownStack) Depth() int {
	return len(s.entries) + 1
}

// Current returns the top frame.
func (s DrilldownStack) Current() DrilldownEntry {
	if len(s.entries) == 0 {
		return DrilldownEntry{Level: LevelRoot, Name: "All categories"}
	}
	return s.entries[len(s.entries)-1]
}

// Entries returns the frames below the root, outermost first.
func (s DrilldownStack) Entries() []DrilldownEntry {
	out := make([]DrilldownEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Push returns a stack one level deeper. The entry must be the level directly below
// the current one.
func (s DrilldownStack) Push(entry DrilldownEntry) (DrilldownStack, error) {
	if s.Depth() >= maxDrilldownDepth {
		return s, appErrors.Clone(appErrors.ErrDrilldownInvalid, "drill-down is limited to three levels")
	}
	if entry.CategoryID == "" {
		return s, appErrors.Clone(appErrors.ErrDrilldownInvalid, "category id is required")
	}
	if entry.Level != nextLevel[s.Current().Level] {
		return s, appErrors.Clone(appErrors.ErrDrilldownInvalid, "unexpected drill-down level")
	}
	entries := append(s.Entries(), entry)
	return DrilldownStack{entries: entries}, nil
}

// Pop drops the top frame. Popping the root is a no-op.
func (s DrilldownStack) Pop() DrilldownStack {
	if len(s.entries) == 0 {
		return s
	}
	return DrilldownStack{entries: s.Entries()[:len(s.entries)-1]}
}

// Reset returns to the root.
func (s DrilldownStack) Reset() DrilldownStack {
	return DrilldownStack{}
}
