// Package notecodec stores a staff member's selected time slots inside the
// free-text note of a shift request.
//
// A partial selection is written as a bracketed tag in front of the user's
// text: "[時間帯:A,C] text". Selecting every slot writes no tag at all. Notes
// saved before the tag existed are read with a keyword fallback.
package notecodec

import (
	"regexp"
	"sort"
	"strings"
)

// TimeSlot is one named sub-day availability window
type TimeSlot struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Window string `json:"window"`
}

// Slots lists the seven time slots in order
var Slots = []TimeSlot{
	{ID: "A", Label: "早朝", Window: "4:00〜13:00頃"},
	{ID: "B", Label: "朝", Window: "6:00〜15:30頃"},
	{ID: "C", Label: "日中", Window: "6:45〜22:00頃"},
	{ID: "D", Label: "午後", Window: "12:00〜23:00頃"},
	{ID: "E", Label: "夕方", Window: "14:15〜23:00頃"},
	{ID: "F", Label: "夜", Window: "16:30〜23:00頃"},
	{ID: "G", Label: "深夜", Window: "19:00〜翌朝"},
}

const (
	tagPrefix = "[時間帯:"

	legacyMorning   = "午前"
	legacyAfternoon = "午後"
)

var (
	tagPattern = regexp.MustCompile(`\[時間帯:([A-G,]+)\]`)

	legacyMorningSlots   = []string{"A", "B"}
	legacyAfternoonSlots = []string{"D", "E", "F"}
)

// AllSlotIDs returns a fresh copy of every slot id, A..G
func AllSlotIDs() []string {
	ids := make([]string, len(Slots))
	for i, s := range Slots {
		ids[i] = s.ID
	}
	return ids
}

// IsKnown reports whether id names one of the seven slots
func IsKnown(id string) bool {
	for _, s := range Slots {
		if s.ID == id {
			return true
		}
	}
	return false
}

// IsFullSet reports whether slots selects every slot exactly once
func IsFullSet(slots []string) bool {
	if len(slots) != len(Slots) {
		return false
	}
	seen := make(map[string]bool, len(slots))
	for _, id := range slots {
		if !IsKnown(id) || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// Encode folds the selected slots into the user's note. An empty selection
// is read as "no restriction" and encoded like the full set.
func Encode(slots []string, userNote string) string {
	if len(slots) == 0 || IsFullSet(slots) {
		return userNote
	}

	sorted := append([]string(nil), slots...)
	sort.Strings(sorted)

	tag := tagPrefix + strings.Join(sorted, ",") + "]"
	if userNote == "" {
		return tag
	}
	return tag + " " + userNote
}

// Decode splits a stored note into the selected slots and the user's own text.
// The tag content is taken verbatim; only the first tag and one space after it
// are removed from the user's text.
func Decode(note string) ([]string, string) {
	loc := tagPattern.FindStringSubmatchIndex(note)
	if loc == nil {
		switch {
		case strings.Contains(note, legacyMorning):
			return append([]string(nil), legacyMorningSlots...), note
		case strings.Contains(note, legacyAfternoon):
			return append([]string(nil), legacyAfternoonSlots...), note
		}
		return AllSlotIDs(), note
	}

	userNote := note[:loc[0]] + strings.TrimPrefix(note[loc[1]:], " ")
	return strings.Split(note[loc[2]:loc[3]], ","), userNote
}
