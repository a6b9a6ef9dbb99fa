/*
Package charset maintains the character-id space shared by the word graph,
the ambiguity tables and the classifier.

Every character the engine can hypothesize is registered here once and
referred to by a small integer id afterwards. Multi-character replacement
ngrams and their per-position fragment placeholders (used by the ambiguity
substitution machinery) are registered on demand while the rule files load,
so the id space can grow during initialization but is read-only once the
first search starts.
*/
package charset

import (
	"fmt"
	"strings"
	"unicode"
)

// CharID identifies one registered character, ngram or fragment placeholder.
type CharID int32

// InvalidCharID marks an unset or failed id lookup.
const InvalidCharID CharID = -1

// FragmentInfo records which registered ngram a fragment placeholder belongs
// to and which position of the wrong ngram it occupies.
type FragmentInfo struct {
	NgramID CharID
	Pos     int
	Total   int
}

type charInfo struct {
	str      string
	isNgram  bool
	fragment *FragmentInfo
	lowerID  CharID
}

// Charset maps character strings to CharIDs and back, and carries the
// per-id properties the ambiguity classifier needs.
type Charset struct {
	infos []charInfo
	ids   map[string]CharID
}

// New returns an empty Charset.
func New() *Charset {
	return &Charset{ids: make(map[string]CharID)}
}

// FromString registers every rune of s in order and returns the charset.
// Convenient for tests and for bootstrapping from a classifier alphabet.
func FromString(s string) *Charset {
	cs := New()
	for _, r := range s {
		cs.Register(string(r))
	}
	return cs
}

// Size returns the number of registered ids.
func (cs *Charset) Size() int { return len(cs.infos) }

// Contains reports whether the given character string is registered.
func (cs *Charset) Contains(s string) bool {
	_, ok := cs.ids[s]
	return ok
}

// IDOf returns the id of a registered character string, or InvalidCharID.
func (cs *Charset) IDOf(s string) CharID {
	if id, ok := cs.ids[s]; ok {
		return id
	}
	return InvalidCharID
}

// StringOf returns the character string for an id, or "" when out of range.
func (cs *Charset) StringOf(id CharID) string {
	if id < 0 || int(id) >= len(cs.infos) {
		return ""
	}
	return cs.infos[id].str
}

// Register adds a character string to the set, returning its id. Registering
// an already known string is a no-op returning the existing id.
func (cs *Charset) Register(s string) CharID {
	if id, ok := cs.ids[s]; ok {
		return id
	}
	id := CharID(len(cs.infos))
	cs.infos = append(cs.infos, charInfo{str: s, lowerID: InvalidCharID})
	cs.ids[s] = id

	// Wire up the case-folding link both ways when the counterpart exists.
	lower := strings.ToLower(s)
	if lower != s {
		if lowID, ok := cs.ids[lower]; ok {
			cs.infos[id].lowerID = lowID
		}
	} else {
		cs.infos[id].lowerID = id
		upper := strings.ToUpper(s)
		if upID, ok := cs.ids[upper]; ok && upper != s {
			cs.infos[upID].lowerID = id
		}
	}
	return id
}

// SetIsNgram marks an id as a multi-character ngram.
func (cs *Charset) SetIsNgram(id CharID, isNgram bool) {
	if id >= 0 && int(id) < len(cs.infos) {
		cs.infos[id].isNgram = isNgram
	}
}

// IsNgram reports whether an id was registered as a multi-character ngram.
func (cs *Charset) IsNgram(id CharID) bool {
	if id < 0 || int(id) >= len(cs.infos) {
		return false
	}
	return cs.infos[id].isNgram
}

// ToLower returns the id of the lower-case counterpart of id. Ids without a
// registered counterpart fold to themselves, so two ids are case variants of
// one another exactly when their ToLower results match.
func (cs *Charset) ToLower(id CharID) CharID {
	if id < 0 || int(id) >= len(cs.infos) {
		return InvalidCharID
	}
	if low := cs.infos[id].lowerID; low != InvalidCharID {
		return low
	}
	lower := strings.ToLower(cs.infos[id].str)
	if lowID, ok := cs.ids[lower]; ok {
		cs.infos[id].lowerID = lowID
		return lowID
	}
	return id
}

// FragmentString encodes the placeholder string for position pos of an
// ngram replacement split into total slots, e.g. |ww|0|2.
func FragmentString(ngram string, pos, total int) string {
	return fmt.Sprintf("|%s|%d|%d", ngram, pos, total)
}

// RegisterFragment registers a fragment placeholder for one position of a
// replacement ngram and links it back to the base ngram id. The base ngram
// must already be registered.
func (cs *Charset) RegisterFragment(ngram string, pos, total int) CharID {
	base := cs.IDOf(ngram)
	id := cs.Register(FragmentString(ngram, pos, total))
	cs.infos[id].fragment = &FragmentInfo{NgramID: base, Pos: pos, Total: total}
	return id
}

// FragmentOf returns fragment placeholder info for an id, or nil when the id
// is not a fragment.
func (cs *Charset) FragmentOf(id CharID) *FragmentInfo {
	if id < 0 || int(id) >= len(cs.infos) {
		return nil
	}
	return cs.infos[id].fragment
}

// IDsOfString maps every rune of a word to its id. Returns false when any
// rune is unregistered.
func (cs *Charset) IDsOfString(word string) ([]CharID, bool) {
	ids := make([]CharID, 0, len(word))
	for _, r := range word {
		id, ok := cs.ids[string(r)]
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// StringOfIDs renders an id sequence back to text. Fragment placeholders
// render as their encoded form; callers wanting the reconstructed
// replacement should collapse fragments first.
func (cs *Charset) StringOfIDs(ids []CharID) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(cs.StringOf(id))
	}
	return b.String()
}

// IsAlpha reports whether the id is a single letter rune.
func (cs *Charset) IsAlpha(id CharID) bool {
	s := cs.StringOf(id)
	if s == "" {
		return false
	}
	runes := []rune(s)
	return len(runes) == 1 && unicode.IsLetter(runes[0])
}
