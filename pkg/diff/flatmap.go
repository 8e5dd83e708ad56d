package diff

import (
	"sort"

	"grit/pkg/object"
)

// FlatMaps compares two path -> (OID, mode) maps and returns the sorted
// deltas. A path present only on the new side is Added, only on the old
// side Deleted; present on both with a different OID or mode is Modified.
// Exact-OID rename pairing runs afterwards.
func FlatMaps(old, new map[string]Entry) *Diff {
	paths := make([]string, 0, len(old)+len(new))
	seen := make(map[string]bool, len(old)+len(new))
	for p := range old {
		paths = append(paths, p)
		seen[p] = true
	}
	for p := range new {
		if !seen[p] {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	var deltas []Delta
	for _, path := range paths {
		oldEntry, inOld := old[path]
		newEntry, inNew := new[path]

		switch {
		case !inOld:
			deltas = append(deltas, Delta{
				Status:  Added,
				Path:    path,
				NewOid:  newEntry.Oid,
				NewMode: newEntry.Mode,
			})
		case !inNew:
			deltas = append(deltas, Delta{
				Status:  Deleted,
				Path:    path,
				OldOid:  oldEntry.Oid,
				OldMode: oldEntry.Mode,
			})
		case oldEntry.Oid != newEntry.Oid || oldEntry.Mode != newEntry.Mode:
			deltas = append(deltas, Delta{
				Status:  Modified,
				Path:    path,
				OldOid:  oldEntry.Oid,
				NewOid:  newEntry.Oid,
				OldMode: oldEntry.Mode,
				NewMode: newEntry.Mode,
			})
		}
	}

	deltas = detectRenames(deltas)
	return &Diff{Deltas: deltas}
}

// detectRenames pairs each Deleted delta with an Added delta carrying the
// same OID, collapsing the pair into a single Renamed delta. Pairing is
// one-to-one; content-similarity matching is out of scope. The result is
// re-sorted by path.
func detectRenames(deltas []Delta) []Delta {
	addedByOid := make(map[object.Oid][]int)
	for i, d := range deltas {
		if d.Status == Added {
			addedByOid[d.NewOid] = append(addedByOid[d.NewOid], i)
		}
	}

	consumed := make(map[int]bool)
	var renames []Delta

	for i, d := range deltas {
		if d.Status != Deleted {
			continue
		}
		candidates := addedByOid[d.OldOid]
		for _, j := range candidates {
			if consumed[j] {
				continue
			}
			added := deltas[j]
			renames = append(renames, Delta{
				Status:  Renamed,
				Path:    added.Path,
				OldPath: d.Path,
				OldOid:  d.OldOid,
				NewOid:  added.NewOid,
				OldMode: d.OldMode,
				NewMode: added.NewMode,
			})
			consumed[i] = true
			consumed[j] = true
			break
		}
	}

	if len(renames) == 0 {
		return deltas
	}

	out := make([]Delta, 0, len(deltas))
	for i, d := range deltas {
		if !consumed[i] {
			out = append(out, d)
		}
	}
	out = append(out, renames...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}
