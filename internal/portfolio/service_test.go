package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nfrund/folio/internal/database"
	"github.com/nfrund/folio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type release struct {
	id, url, reason string
}

type recordingReleaser struct {
	mu    sync.Mutex
	calls []release
}

func (r *recordingReleaser) Release(_ context.Context, id, url, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, release{id, url, reason})
}

func (r *recordingReleaser) released() []release {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]release(nil), r.calls...)
}

func newTestService(t *testing.T) (*Service, *database.MemoryPortfolioStore, *recordingReleaser) {
	t.Helper()
	store := database.NewMemoryPortfolioStore()
	rel := &recordingReleaser{}
	return NewService(store, rel), store, rel
}

func TestEnsureExists_SeedsDefaultsOnce(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	first, err := svc.EnsureExists(ctx)
	require.NoError(t, err)
	second, err := svc.EnsureExists(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Saves())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("EnsureExists not idempotent (-first +second):\n%s", diff)
	}

	var types []string
	for _, s := range first.Experience.Sections {
		types = append(types, s.Type)
	}
	assert.Equal(t, []string{"Work", "Internship", "Volunteership"}, types)
	assert.Len(t, first.Contact.FormFields, 3)
}

func TestEnsureExists_ConcurrentFirstAccessWritesOnce(t *testing.T) {
	svc, store, _ := newTestService(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.EnsureExists(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Calls arriving after the first flight completed find the document.
	assert.Equal(t, 1, store.Saves())
}

// ctxStore fails like a network-backed store once its context is done.
type ctxStore struct {
	*database.MemoryPortfolioStore
}

func (s ctxStore) Load(ctx context.Context) (*domain.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.MemoryPortfolioStore.Load(ctx)
}

func (s ctxStore) Save(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.MemoryPortfolioStore.Save(ctx, p)
}

func TestEnsureExists_SharedLoadIgnoresCallerCancellation(t *testing.T) {
	store := database.NewMemoryPortfolioStore()
	svc := NewService(ctxStore{store}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := svc.EnsureExists(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Projects)
	assert.Equal(t, 1, store.Saves())
}

func TestEnsureExists_RepairsEmptyListsOnly(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	custom := domain.DefaultPortfolio()
	custom.Experience.Sections = nil
	custom.Contact.FormFields = []domain.FormField{}
	custom.Contact.Title = "Say hello"
	custom.Projects = []domain.Project{{ID: "p1", Title: "Kept"}}
	_, err := store.Save(ctx, custom)
	require.NoError(t, err)

	got, err := svc.EnsureExists(ctx)
	require.NoError(t, err)

	assert.Len(t, got.Experience.Sections, 3)
	assert.Len(t, got.Contact.FormFields, 3)
	assert.Equal(t, "Say hello", got.Contact.Title)
	assert.Equal(t, []domain.Project{{ID: "p1", Title: "Kept"}}, got.Projects)

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted.Experience.Sections, 3)
}

func TestEnsureExists_NonEmptyContentUntouched(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	custom := domain.DefaultPortfolio()
	custom.Experience.Sections = []domain.Section{{Type: "Research", Items: []domain.ExperienceItem{{ID: "r1", Role: "RA"}}}}
	_, err := store.Save(ctx, custom)
	require.NoError(t, err)
	saves := store.Saves()

	got, err := svc.EnsureExists(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom.Experience.Sections, got.Experience.Sections)
	assert.Equal(t, saves, store.Saves(), "no write expected when nothing needs repair")
}

func TestEnsureExists_StorageFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.FailWith = database.ErrNotConnected

	_, err := svc.EnsureExists(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindStorage))
	assert.ErrorIs(t, err, database.ErrNotConnected)
}

func TestReplace_AssignsMissingIdentities(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	doc := domain.DefaultPortfolio()
	doc.Projects = []domain.Project{{ID: "keep-me", Title: "A"}, {Title: "B"}}
	doc.Experience.Sections[0].Items = append(doc.Experience.Sections[0].Items, domain.ExperienceItem{Role: "New"})

	stored, err := svc.Replace(ctx, doc)
	require.NoError(t, err)

	assert.Equal(t, "keep-me", stored.Projects[0].ID)
	assert.NotEmpty(t, stored.Projects[1].ID)
	items := stored.Experience.Sections[0].Items
	assert.NotEmpty(t, items[len(items)-1].ID)
	assert.Empty(t, doc.Projects[1].ID, "input document must not be mutated")
}

func TestReplace_RenamesDuplicateIdentities(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	doc := domain.DefaultPortfolio()
	doc.Projects = []domain.Project{{ID: "dup", Title: "A"}, {ID: "dup", Title: "B"}}
	doc.Experience.Sections[0].Items = []domain.ExperienceItem{{ID: "x", Role: "One"}}
	doc.Experience.Sections[1].Items = []domain.ExperienceItem{{ID: "x", Role: "Two"}}

	stored, err := svc.Replace(ctx, doc)
	require.NoError(t, err)

	assert.Equal(t, "dup", stored.Projects[0].ID)
	assert.NotEqual(t, "dup", stored.Projects[1].ID)
	assert.NotEmpty(t, stored.Projects[1].ID)
	assert.Equal(t, "x", stored.Experience.Sections[0].Items[0].ID)
	assert.NotEqual(t, "x", stored.Experience.Sections[1].Items[0].ID)

	// Each project is now reachable on its own.
	projects, err := svc.DeleteProject(ctx, "dup")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "B", projects[0].Title)
	_, err = svc.DeleteProject(ctx, "dup")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestReplace_RejectsInvalidFormFields(t *testing.T) {
	svc, store, _ := newTestService(t)

	doc := domain.DefaultPortfolio()
	doc.Contact.FormFields[0].Label = ""

	_, err := svc.Replace(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Zero(t, store.Saves())
}

func TestReplace_ReleasesDroppedAssets(t *testing.T) {
	ctx := context.Background()
	svc, _, rel := newTestService(t)

	doc := domain.DefaultPortfolio()
	doc.Projects = []domain.Project{
		{ID: "a", Image: "http://cdn/portfolio/a.png", ImageID: "portfolio/a.png"},
		{ID: "b", Image: "http://cdn/portfolio/b.png", ImageID: "portfolio/b.png"},
	}
	doc.ResumeURL = "http://cdn/portfolio/cv.pdf"
	doc.ResumeID = "portfolio/cv.pdf"
	_, err := svc.Replace(ctx, doc)
	require.NoError(t, err)
	assert.Empty(t, rel.released())

	next := doc.Clone()
	next.Projects = next.Projects[:1]
	next.Projects[0].ImageID = "" // clients may drop the id but keep the url
	_, err = svc.Replace(ctx, next)
	require.NoError(t, err)

	assert.Equal(t, []release{{"portfolio/b.png", "http://cdn/portfolio/b.png", "portfolio_replaced"}}, rel.released())
}

func TestResetAndSeed(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	doc, err := svc.EnsureExists(ctx)
	require.NoError(t, err)
	doc.Contact.Title = "Changed"
	_, err = svc.Replace(ctx, doc)
	require.NoError(t, err)

	seeded, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Contact", seeded.Contact.Title)

	require.NoError(t, svc.Reset(ctx))
	gone, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSave_PassesThroughDomainErrors(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.FailWith = domain.Validation("bad", nil)

	_, err := svc.save(context.Background(), domain.DefaultPortfolio(), "op")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	store.FailWith = errors.New("disk full")
	_, err = svc.save(context.Background(), domain.DefaultPortfolio(), "op")
	assert.True(t, domain.IsKind(err, domain.KindStorage))
}
