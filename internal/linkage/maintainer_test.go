package linkage

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/scam-catalog/internal/db"
	"github.com/diewo77/scam-catalog/internal/logging"
	"github.com/diewo77/scam-catalog/internal/matching"
	"github.com/diewo77/scam-catalog/internal/metrics"
	"github.com/diewo77/scam-catalog/internal/models"
	"github.com/diewo77/scam-catalog/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	store   *store.Store
	m       *Maintainer
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	s := store.New(gdb)
	met := metrics.New(prometheus.NewRegistry())
	return &fixture{store: s, m: New(s, logging.Discard(), met), metrics: met}
}

// addCase writes a case and its identifiers in one transaction, running the
// hook after each identifier the way the write path does.
func (f *fixture) addCase(t *testing.T, idents ...models.Identifier) uint {
	t.Helper()
	var id uint
	err := f.store.Transaction(context.Background(), func(ctx context.Context) error {
		c := &models.Case{}
		if err := f.store.CreateCase(ctx, c); err != nil {
			return err
		}
		id = c.ID
		for i := range idents {
			idents[i].CaseID = c.ID
			if err := f.store.CreateIdentifier(ctx, &idents[i]); err != nil {
				return err
			}
			f.m.OnIdentifierSaved(ctx, &idents[i])
		}
		return nil
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) related(t *testing.T, id uint) []uint {
	t.Helper()
	ids, err := f.store.RelatedIDs(context.Background(), id)
	require.NoError(t, err)
	return ids
}

func ident(kind matching.Kind, value string) models.Identifier {
	return models.Identifier{Kind: kind, Value: value}
}

func TestSharedPhoneLinksBothWays(t *testing.T) {
	f := newFixture(t)
	a := f.addCase(t, ident(matching.KindPhone, "+95 09123456"))
	b := f.addCase(t, ident(matching.KindPhone, "+9509123456"))

	assert.Equal(t, []uint{b}, f.related(t, a))
	assert.Equal(t, []uint{a}, f.related(t, b))

	reasons, err := f.m.Reasons(context.Background(), "en", a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Phone: +9509123456"}, reasons)

	back, err := f.m.Reasons(context.Background(), "en", b, a)
	require.NoError(t, err)
	assert.Equal(t, reasons, back)
}

func TestEveryLinkingKindMatchesCaseInsensitively(t *testing.T) {
	tests := []struct {
		kind   matching.Kind
		first  string
		second string
	}{
		{matching.KindEmail, "Scam@Example.COM", "scam@example.com"},
		{matching.KindName, "Ko  Aung", "ko aung"},
		{matching.KindPaymentAccount, "KBZ 1234", "kbz1234"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := newFixture(t)
			a := f.addCase(t, ident(tt.kind, tt.first))
			b := f.addCase(t, ident(tt.kind, tt.second))
			assert.Equal(t, []uint{b}, f.related(t, a))
		})
	}
}

func TestWebsitesNeverLink(t *testing.T) {
	f := newFixture(t)
	a := f.addCase(t, ident(matching.KindWebsite, "https://scam.example.com"))
	f.addCase(t, ident(matching.KindWebsite, "https://scam.example.com"))
	assert.Empty(t, f.related(t, a))
	assert.Zero(t, testutil.ToFloat64(f.metrics.LinkageRuns))
}

func TestBlankValuesNeverLink(t *testing.T) {
	f := newFixture(t)
	a := f.addCase(t, ident(matching.KindPhone, "   "))
	f.addCase(t, ident(matching.KindPhone, ""))
	assert.Empty(t, f.related(t, a))
}

func TestResavingIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addCase(t, ident(matching.KindEmail, "x@y.z"))
	b := f.addCase(t, ident(matching.KindEmail, "x@y.z"))

	c, err := f.store.GetCase(ctx, b)
	require.NoError(t, err)
	rec := c.Identifiers[0]
	for i := 0; i < 3; i++ {
		require.NoError(t, f.store.SaveIdentifier(ctx, &rec))
		f.m.OnIdentifierSaved(ctx, &rec)
	}

	n, err := f.store.CountLinks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	reasons, err := f.m.Reasons(ctx, "en", a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Email: x@y.z"}, reasons)
}

func TestCoHoldersLinkToSourceOnly(t *testing.T) {
	f := newFixture(t)
	a := f.addCase(t, ident(matching.KindPhone, "111111"))
	b := f.addCase(t, ident(matching.KindEmail, "b@b.b"))
	c := f.addCase(t, ident(matching.KindPhone, "111111"), ident(matching.KindEmail, "b@b.b"))

	assert.Equal(t, []uint{c}, f.related(t, a))
	assert.Equal(t, []uint{c}, f.related(t, b))
	assert.Equal(t, []uint{a, b}, f.related(t, c))
}

func TestSameCaseDuplicatesDoNotSelfLink(t *testing.T) {
	f := newFixture(t)
	a := f.addCase(t, ident(matching.KindName, "Ko Ko"), ident(matching.KindName, "ko ko"))
	assert.Empty(t, f.related(t, a))
}

func TestReasonsOrderAndLabels(t *testing.T) {
	f := newFixture(t)
	a := f.addCase(t,
		ident(matching.KindName, "Zaw"),
		ident(matching.KindName, "Aye"),
		ident(matching.KindPaymentAccount, "9999"),
		ident(matching.KindEmail, "e@x.io"),
		ident(matching.KindPhone, "0912"),
		ident(matching.KindWebsite, "https://x.io"))
	b := f.addCase(t,
		ident(matching.KindPaymentAccount, "9999"),
		ident(matching.KindName, "aye"),
		ident(matching.KindName, "zaw"),
		ident(matching.KindPhone, "0912"),
		ident(matching.KindEmail, "E@X.IO"),
		ident(matching.KindWebsite, "https://x.io"))

	reasons, err := f.m.Reasons(context.Background(), "en", a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Phone: 0912",
		"Email: e@x.io",
		"Name: aye",
		"Name: zaw",
		"Account: 9999",
	}, reasons)

	my, err := f.m.Reasons(context.Background(), "my", a, b)
	require.NoError(t, err)
	assert.Equal(t, "ဖုန်း: 0912", my[0])

	keys, err := f.m.SharedKeys(context.Background(), a, []uint{b})
	require.NoError(t, err)
	assert.Equal(t, Reason{Kind: matching.KindPhone, Key: "0912"}, keys[b][0])
}

func TestReasonsForUnrelatedCasesIsEmpty(t *testing.T) {
	f := newFixture(t)
	a := f.addCase(t, ident(matching.KindName, "A"))
	b := f.addCase(t, ident(matching.KindName, "B"))
	got, err := f.m.SharedKeys(context.Background(), a, []uint{b, 999})
	require.NoError(t, err)
	assert.Empty(t, got[b])
	assert.Empty(t, got[999])
}

// failingStore breaks edge writes to exercise the fault boundary.
type failingStore struct {
	*store.Store
	panics bool
}

func (s failingStore) LinkCases(ctx context.Context, a, b uint) (bool, error) {
	if s.panics {
		panic("edge writer exploded")
	}
	// Write the edge, then fail: the savepoint must undo it.
	if _, err := s.Store.LinkCases(ctx, a, b); err != nil {
		return false, err
	}
	return false, errors.New("disk full")
}

func TestLinkageFailureKeepsIdentifierWrite(t *testing.T) {
	for _, panics := range []bool{false, true} {
		name := "error"
		if panics {
			name = "panic"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.m = New(failingStore{Store: f.store, panics: panics}, logging.Discard(), f.metrics)
			ctx := context.Background()

			a := f.addCase(t, ident(matching.KindPhone, "555000"))
			b := f.addCase(t, ident(matching.KindPhone, "555000"))

			c, err := f.store.GetCase(ctx, b)
			require.NoError(t, err, "primary write must commit")
			require.Len(t, c.Identifiers, 1)
			assert.Empty(t, f.related(t, a))
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LinkageFailures))
		})
	}
}

// lockingStore records match-key locks and can refuse them.
type lockingStore struct {
	*store.Store
	locked []string
	fail   bool
}

func (s *lockingStore) LockMatchKey(ctx context.Context, kind matching.Kind, key string) error {
	if s.fail {
		return errors.New("lock timeout")
	}
	s.locked = append(s.locked, string(kind)+":"+key)
	return s.Store.LockMatchKey(ctx, kind, key)
}

func TestLinkingLocksTheMatchKey(t *testing.T) {
	f := newFixture(t)
	ls := &lockingStore{Store: f.store}
	f.m = New(ls, logging.Discard(), f.metrics)

	a := f.addCase(t, ident(matching.KindPhone, "+95 0912"), ident(matching.KindWebsite, "https://x.io"))
	b := f.addCase(t, ident(matching.KindPhone, "+950912"))
	assert.Equal(t, []string{"phone:+950912", "phone:+950912"}, ls.locked)
	assert.Equal(t, []uint{b}, f.related(t, a))

	ls.fail = true
	c := f.addCase(t, ident(matching.KindPhone, "+950912"))
	assert.Empty(t, f.related(t, c), "no link without the lock")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LinkageFailures))
}

func TestRebuildRestoresLostEdges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addCase(t, ident(matching.KindPhone, "777"))
	b := f.addCase(t, ident(matching.KindPhone, "777"))
	c := f.addCase(t, ident(matching.KindEmail, "q@q.q"))
	d := f.addCase(t, ident(matching.KindEmail, "Q@q.q"))

	require.NoError(t, f.store.UnlinkCases(ctx, a, b))
	require.NoError(t, f.store.UnlinkCases(ctx, c, d))
	assert.Empty(t, f.related(t, a))

	processed, err := f.m.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, processed)
	assert.Equal(t, []uint{b}, f.related(t, a))
	assert.Equal(t, []uint{c}, f.related(t, d))

	n, err := f.store.CountLinks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRebuildHonoursCancellation(t *testing.T) {
	f := newFixture(t)
	f.addCase(t, ident(matching.KindPhone, "1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.m.Rebuild(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
