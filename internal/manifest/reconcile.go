package manifest

import (
	"fmt"
	"sort"
	"strings"

	"pattiprep/internal/naming"
)

// Source is an audio file found on disk.
type Source struct {
	File    string
	Ext     string
	Shuffle bool
}

// FileName is the on-disk name of the source.
func (s Source) FileName() string {
	return naming.FileKey(s.File, s.Ext)
}

func (s Source) key() string {
	return sourceKey(s.File, s.Ext, s.Shuffle)
}

// Result is the outcome of Reconcile.
type Result struct {
	Entries []Entry
	// Added holds generated entries for files the manifest did not know.
	Added []Entry
	// Removed holds existing entries whose backing file is gone.
	Removed []Entry
	// Adopted holds existing entries re-pointed at a file with a new name,
	// such as after a FLAC was converted to WAV.
	Adopted []Entry
	// Duplicates holds entries dropped because a later entry names the same
	// file.
	Duplicates []Entry
}

// Reconcile merges existing entries with the files on disk. Entries whose file
// still exists are carried forward unchanged; new files get generated entries
// in defaultCategory; entries without a file are dropped. When several entries
// name the same file the last one wins. The result is sorted by
// case-insensitive category, then id.
func Reconcile(existing []Entry, sources []Source, defaultCategory string) Result {
	var result Result

	byKey := make(map[string]int, len(existing))
	for i, entry := range existing {
		byKey[entry.Key()] = i
	}
	onDisk := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		onDisk[src.key()] = struct{}{}
	}

	claimed := make([]bool, len(existing))
	matched := make([]int, len(sources))
	for i, src := range sources {
		matched[i] = -1
		if idx, ok := byKey[src.key()]; ok && !claimed[idx] {
			claimed[idx] = true
			matched[i] = idx
		}
	}

	// Adopt orphaned entries whose id matches the slug of an unmatched file.
	adopted := make(map[int]bool)
	for i, src := range sources {
		if matched[i] >= 0 {
			continue
		}
		slug := naming.Slug(src.FileName())
		for idx, entry := range existing {
			if claimed[idx] || entry.ID != slug {
				continue
			}
			if _, stillThere := onDisk[entry.Key()]; stillThere {
				continue
			}
			claimed[idx] = true
			matched[i] = idx
			adopted[i] = true
			break
		}
	}

	usedIDs := make(map[string]struct{}, len(existing)+len(sources))
	for i := range sources {
		if matched[i] >= 0 {
			usedIDs[existing[matched[i]].ID] = struct{}{}
		}
	}

	entries := make([]Entry, 0, len(sources))
	for i, src := range sources {
		if idx := matched[i]; idx >= 0 {
			entry := existing[idx].Clone()
			if adopted[i] {
				entry.File = src.File
				entry.Ext = src.Ext
				entry.IsShuffle = src.Shuffle
				result.Adopted = append(result.Adopted, entry.Clone())
			}
			entries = append(entries, entry)
			continue
		}
		entry := Entry{
			ID:        uniqueID(naming.Slug(src.FileName()), src.Ext, usedIDs),
			Name:      naming.DisplayName(src.FileName()),
			Category:  defaultCategory,
			File:      src.File,
			Ext:       src.Ext,
			IsShuffle: src.Shuffle,
		}
		usedIDs[entry.ID] = struct{}{}
		entries = append(entries, entry)
		result.Added = append(result.Added, entry.Clone())
	}

	for idx, entry := range existing {
		if claimed[idx] {
			continue
		}
		if byKey[entry.Key()] != idx {
			result.Duplicates = append(result.Duplicates, entry.Clone())
			continue
		}
		result.Removed = append(result.Removed, entry.Clone())
	}

	SortEntries(entries)
	result.Entries = entries
	return result
}

// SortEntries orders entries by case-insensitive category, then id. Equal
// keys keep their relative order.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ci, cj := strings.ToLower(entries[i].Category), strings.ToLower(entries[j].Category)
		if ci != cj {
			return ci < cj
		}
		return entries[i].ID < entries[j].ID
	})
}

// uniqueID resolves a generated id collision by appending the extension, then
// a counter.
func uniqueID(id, ext string, used map[string]struct{}) string {
	if _, taken := used[id]; !taken {
		return id
	}
	base := id
	if suffix := naming.Slug(ext); suffix != "" {
		base = id + "-" + suffix
	}
	candidate := base
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// CategoryCounts returns the number of entries per category, keyed by the
// category as written.
func CategoryCounts(entries []Entry) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.Category]++
	}
	return counts
}
