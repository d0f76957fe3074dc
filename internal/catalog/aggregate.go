package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/diewo77/scam-catalog/internal/matching"
	"github.com/diewo77/scam-catalog/internal/models"
)

// Aggregation is the union of facts across a group of cases. Values are raw.
type Aggregation struct {
	Names           []string `json:"names"`
	Phones          []string `json:"phones"`
	Emails          []string `json:"emails"`
	Websites        []string `json:"websites"`
	PaymentAccounts []string `json:"payment_accounts"`
	Tags            []string `json:"tags"`
}

// Aggregate folds the identifier values and tags of cases into sorted,
// duplicate-free lists. Blank values are not facts and are skipped. No
// disclosure policy is applied.
func Aggregate(cases []models.Case) Aggregation {
	sets := map[matching.Kind]map[string]struct{}{}
	tags := map[string]struct{}{}
	for _, c := range cases {
		for _, ident := range c.Identifiers {
			if strings.TrimSpace(ident.Value) == "" {
				continue
			}
			if sets[ident.Kind] == nil {
				sets[ident.Kind] = map[string]struct{}{}
			}
			sets[ident.Kind][ident.Value] = struct{}{}
		}
		for _, t := range c.Tags {
			tags[t.Name] = struct{}{}
		}
	}
	return Aggregation{
		Names:           sortedKeys(sets[matching.KindName]),
		Phones:          sortedKeys(sets[matching.KindPhone]),
		Emails:          sortedKeys(sets[matching.KindEmail]),
		Websites:        sortedKeys(sets[matching.KindWebsite]),
		PaymentAccounts: sortedKeys(sets[matching.KindPaymentAccount]),
		Tags:            sortedKeys(tags),
	}
}

// ProfileAggregate is a profile with the union of its cases' facts.
type ProfileAggregate struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	ImagePath string      `json:"image_path,omitempty"`
	CaseIDs   []uint      `json:"case_ids"`
	Facts     Aggregation `json:"facts"`
}

// AggregateProfile loads a profile and aggregates its cases.
func (s *Service) AggregateProfile(ctx context.Context, id uint) (*ProfileAggregate, error) {
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	ids := make([]uint, 0, len(p.Cases))
	for _, c := range p.Cases {
		ids = append(ids, c.ID)
	}
	return &ProfileAggregate{
		ID:        p.ID,
		Name:      p.Name,
		ImagePath: p.ImagePath,
		CaseIDs:   ids,
		Facts:     Aggregate(p.Cases),
	}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
