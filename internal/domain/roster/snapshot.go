// Package roster resolves extracted name strings against the known player
// roster. The roster itself is owned by an external provider; this package
// only works on immutable snapshots of it.
package roster

import "github.com/HYPExMon5ter/GAL-Discord-Bot-sub003/internal/domain/model"

type aliasKey struct {
	rosterID string
	alias    string // normalized
}

// Snapshot is an immutable view of the roster. It is built once and then
// only read, so concurrent matches never observe a half-updated roster.
type Snapshot struct {
	entries []model.RosterEntry
	aliases []aliasKey
	exact   map[string][]string // normalized alias -> roster ids carrying it
}

// NewSnapshot indexes entries for exact and fuzzy lookup. The canonical
// display name counts as an alias.
func NewSnapshot(entries []model.RosterEntry) *Snapshot {
	s := &Snapshot{
		entries: entries,
		exact:   make(map[string][]string),
	}
	for _, e := range entries {
		names := append([]string{e.DisplayName}, e.Aliases...)
		seen := make(map[string]struct{}, len(names))
		for _, name := range names {
			key := Normalize(name)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			s.aliases = append(s.aliases, aliasKey{rosterID: e.ID, alias: key})
			s.exact[key] = appendUnique(s.exact[key], e.ID)
		}
	}
	return s
}

// Len returns the number of roster entries in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
