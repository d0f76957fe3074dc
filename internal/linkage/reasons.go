package linkage

import (
	"context"
	"fmt"
	"sort"

	"github.com/diewo77/scam-catalog/i18n"
	"github.com/diewo77/scam-catalog/internal/matching"
)

// keySet holds the distinct keys of one case, per linking kind.
type keySet map[matching.Kind]map[string]struct{}

func (ks keySet) add(kind matching.Kind, key string) {
	if ks[kind] == nil {
		ks[kind] = make(map[string]struct{})
	}
	ks[kind][key] = struct{}{}
}

// Reason is one shared normalized key between two cases.
type Reason struct {
	Kind matching.Kind
	Key  string
}

// Label returns the translated kind label.
func (r Reason) Label(lang string) string {
	return i18n.T(lang, "reason."+string(r.Kind))
}

// Text renders the reason as "<Label>: <key>".
func (r Reason) Text(lang string) string {
	return r.Label(lang) + ": " + r.Key
}

// Reasons explains why cases a and b are related, one "<Label>: <key>" entry
// per distinct shared key, in the order phone, email, name, account and
// lexicographically within a kind. Labels are translated into lang.
func (m *Maintainer) Reasons(ctx context.Context, lang string, a, b uint) ([]string, error) {
	all, err := m.SharedKeys(ctx, a, []uint{b})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all[b]))
	for _, r := range all[b] {
		out = append(out, r.Text(lang))
	}
	return out, nil
}

// SharedKeys computes the reasons between source and each related case with
// a single identifier read, ordered as in Reasons. Cases sharing nothing map
// to an empty slice.
func (m *Maintainer) SharedKeys(ctx context.Context, source uint, related []uint) (map[uint][]Reason, error) {
	out := make(map[uint][]Reason, len(related))
	if len(related) == 0 {
		return out, nil
	}
	ids := append([]uint{source}, related...)
	idents, err := m.store.IdentifiersOfCases(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load identifiers: %w", err)
	}

	sets := make(map[uint]keySet, len(ids))
	for _, ident := range idents {
		key, ok := matching.Normalize(ident.Kind, ident.Value)
		if !ok || !ident.Kind.Links() {
			continue
		}
		if sets[ident.CaseID] == nil {
			sets[ident.CaseID] = keySet{}
		}
		sets[ident.CaseID].add(ident.Kind, key)
	}

	src := sets[source]
	for _, id := range related {
		out[id] = sharedReasons(src, sets[id])
	}
	return out, nil
}

func sharedReasons(a, b keySet) []Reason {
	reasons := []Reason{}
	if a == nil || b == nil {
		return reasons
	}
	for _, kind := range matching.LinkingKinds {
		var shared []string
		for key := range a[kind] {
			if _, ok := b[kind][key]; ok {
				shared = append(shared, key)
			}
		}
		sort.Strings(shared)
		for _, key := range shared {
			reasons = append(reasons, Reason{Kind: kind, Key: key})
		}
	}
	return reasons
}
