// Package mood holds the closed set of moods a journal entry can carry and
// the glyph/label shown for each.
package mood

import "strings"

// Mood is a closed enumeration. The zero value None means no mood was set.
type Mood uint8

const (
	None Mood = iota
	Neutral
	Focused
	Relaxed
	Stressed
	Anxious
	Excited
	Happy
	Sad
	Angry
	Calm
	Motivated
)

type info struct {
	id    string
	glyph string
	label string
}

var lexicon = [...]info{
	None:      {"", "❔", "No mood"},
	Neutral:   {"neutral", "😐", "Neutral"},
	Focused:   {"focused", "🎯", "Focused"},
	Relaxed:   {"relaxed", "😌", "Relaxed"},
	Stressed:  {"stressed", "😫", "Stressed"},
	Anxious:   {"anxious", "😰", "Anxious"},
	Excited:   {"excited", "🤩", "Excited"},
	Happy:     {"happy", "😊", "Happy"},
	Sad:       {"sad", "😢", "Sad"},
	Angry:     {"angry", "😠", "Angry"},
	Calm:      {"calm", "🧘", "Calm"},
	Motivated: {"motivated", "💪", "Motivated"},
}

var byID = func() map[string]Mood {
	m := make(map[string]Mood, len(lexicon))
	for i, in := range lexicon {
		if in.id != "" {
			m[in.id] = Mood(i)
		}
	}
	return m
}()

func (m Mood) lookup() info {
	if int(m) >= len(lexicon) {
		return lexicon[None]
	}
	return lexicon[m]
}

// String returns the stable identifier ("happy"), or "" for None.
func (m Mood) String() string { return m.lookup().id }

func (m Mood) Glyph() string { return m.lookup().glyph }

func (m Mood) Label() string { return m.lookup().label }

// IsSet reports whether m is a member of the closed set.
func (m Mood) IsSet() bool { return m != None && int(m) < len(lexicon) }

// Parse matches raw against the mood identifiers ignoring case and
// surrounding whitespace. Unrecognized input yields None.
func Parse(raw string) Mood {
	return byID[strings.ToLower(strings.TrimSpace(raw))]
}

// All lists every mood except None in display order.
func All() []Mood {
	out := make([]Mood, 0, len(lexicon)-1)
	for i := 1; i < len(lexicon); i++ {
		out = append(out, Mood(i))
	}
	return out
}

func (m Mood) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText never fails; unknown values decode to None.
func (m *Mood) UnmarshalText(b []byte) error {
	*m = Parse(string(b))
	return nil
}
