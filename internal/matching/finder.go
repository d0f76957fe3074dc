package matching

import (
	"context"
	"sort"
)

// Holder is one identifier record carrying a given key.
type Holder struct {
	RecordID uint
	CaseID   uint
}

// RecordSource lists the identifier records of a kind whose key equals key.
// Implementations must read through the transaction bound to ctx, if any, so
// that records written earlier in the same transaction are visible.
type RecordSource interface {
	HoldersOf(ctx context.Context, kind Kind, key string) ([]Holder, error)
}

// Finder resolves co-holders of an identifier value.
type Finder struct {
	source RecordSource
}

// NewFinder creates a Finder reading from source.
func NewFinder(source RecordSource) *Finder {
	return &Finder{source: source}
}

// FindCoHolders returns the distinct case ids, in ascending order, of every
// record of kind with the given key except excludingRecordID. Removing the
// source case itself is left to the caller.
func (f *Finder) FindCoHolders(ctx context.Context, kind Kind, key string, excludingRecordID uint) ([]uint, error) {
	if key == "" {
		return nil, nil
	}
	holders, err := f.source.HoldersOf(ctx, kind, key)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(holders))
	ids := make([]uint, 0, len(holders))
	for _, h := range holders {
		if h.RecordID == excludingRecordID {
			continue
		}
		if _, dup := seen[h.CaseID]; dup {
			continue
		}
		seen[h.CaseID] = struct{}{}
		ids = append(ids, h.CaseID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
