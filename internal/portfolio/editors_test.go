package portfolio

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nfrund/folio/internal/database"
	"github.com/nfrund/folio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageRef(id string) *domain.AssetRef {
	return &domain.AssetRef{ID: id, URL: "http://localhost:5000/uploads/" + id, Kind: domain.AssetImage, Format: "png"}
}

func TestAddProject_AssignsStableIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	p, projects, err := svc.AddProject(ctx, ProjectInput{Title: "Folio", ButtonText: "See", ButtonLink: "#"}, imageRef("portfolio/new.png"))
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.Equal(t, "http://localhost:5000/uploads/portfolio/new.png", p.Image)
	assert.Equal(t, "portfolio/new.png", p.ImageID)
	require.Len(t, projects, 2)
	assert.Equal(t, *p, projects[1])

	// Unrelated edits never change the identity.
	_, _, err = svc.AddProject(ctx, ProjectInput{Title: "Other"}, nil)
	require.NoError(t, err)
	_, _, err = svc.UpdateProject(ctx, p.ID, ProjectInput{Title: "Folio v2"}, nil)
	require.NoError(t, err)

	doc, err := svc.EnsureExists(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.ID, doc.Projects[1].ID)
	assert.Equal(t, "Folio v2", doc.Projects[1].Title)
}

func TestUpdateProject_WithoutFileKeepsImage(t *testing.T) {
	ctx := context.Background()
	svc, _, rel := newTestService(t)

	p, _, err := svc.AddProject(ctx, ProjectInput{Title: "A"}, imageRef("portfolio/a.png"))
	require.NoError(t, err)

	updated, _, err := svc.UpdateProject(ctx, p.ID, ProjectInput{Title: "B", Description: "d"}, nil)
	require.NoError(t, err)
	assert.Equal(t, p.Image, updated.Image)
	assert.Equal(t, "B", updated.Title)
	assert.Empty(t, rel.released())
}

func TestUpdateProject_WithFileReleasesOldImage(t *testing.T) {
	ctx := context.Background()
	svc, _, rel := newTestService(t)

	p, _, err := svc.AddProject(ctx, ProjectInput{Title: "A"}, imageRef("portfolio/old.png"))
	require.NoError(t, err)

	updated, _, err := svc.UpdateProject(ctx, p.ID, ProjectInput{Title: "A"}, imageRef("portfolio/new.png"))
	require.NoError(t, err)
	assert.Equal(t, "portfolio/new.png", updated.ImageID)
	assert.Equal(t, []release{{"portfolio/old.png", "http://localhost:5000/uploads/portfolio/old.png", "project_image_replaced"}}, rel.released())
}

func TestUpdateProject_NotFoundLeavesListAndReleasesUpload(t *testing.T) {
	ctx := context.Background()
	svc, _, rel := newTestService(t)

	before, err := svc.EnsureExists(ctx)
	require.NoError(t, err)

	_, _, err = svc.UpdateProject(ctx, "missing", ProjectInput{Title: "x"}, imageRef("portfolio/orphan.png"))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Equal(t, "Project not found", err.(*domain.Error).Message)

	after, err := svc.EnsureExists(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(before.Projects, after.Projects); diff != "" {
		t.Errorf("projects changed on NotFound (-before +after):\n%s", diff)
	}
	assert.Equal(t, []release{{"portfolio/orphan.png", "http://localhost:5000/uploads/portfolio/orphan.png", "orphaned_upload"}}, rel.released())
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()
	svc, _, rel := newTestService(t)

	a, _, err := svc.AddProject(ctx, ProjectInput{Title: "A"}, imageRef("portfolio/a.png"))
	require.NoError(t, err)
	b, _, err := svc.AddProject(ctx, ProjectInput{Title: "B"}, nil)
	require.NoError(t, err)

	projects, err := svc.DeleteProject(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Portfolio Website", projects[0].Title)
	assert.Equal(t, b.ID, projects[1].ID)
	assert.Equal(t, []release{{"portfolio/a.png", "http://localhost:5000/uploads/portfolio/a.png", "project_deleted"}}, rel.released())

	_, err = svc.DeleteProject(ctx, a.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestAddExperience_WorkSection(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	exp, err := svc.AddExperience(ctx, "Work", ExperienceInput{Company: "X", Role: "Dev", Duration: "2024", Description: "d"})
	require.NoError(t, err)

	work := exp.Section("Work")
	require.NotNil(t, work)
	require.Len(t, work.Items, 2)
	added := work.Items[1]
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "X", added.Company)
	assert.Equal(t, "", added.Organization)
	assert.Equal(t, "Dev", added.Role)
}

func TestAddExperience_UnknownSection(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.AddExperience(context.Background(), "Hobbies", ExperienceInput{Role: "x"})
	require.Error(t, err)
	assert.Equal(t, "Section not found", err.(*domain.Error).Message)
	assert.Equal(t, 1, store.Saves(), "only the seeding write")
}

func TestUpdateAndDeleteExperience(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	doc, err := svc.EnsureExists(ctx)
	require.NoError(t, err)
	internship := doc.Experience.Section("Internship")
	first, second := internship.Items[0], internship.Items[1]

	exp, err := svc.UpdateExperience(ctx, "Internship", first.ID, ExperienceInput{Company: "Acme", Role: "Intern"})
	require.NoError(t, err)
	item := exp.Section("Internship").Items[0]
	assert.Equal(t, first.ID, item.ID)
	assert.Equal(t, "Acme", item.Company)

	_, err = svc.UpdateExperience(ctx, "Internship", "nope", ExperienceInput{})
	assert.Equal(t, "Experience item not found", err.(*domain.Error).Message)
	_, err = svc.UpdateExperience(ctx, "Nope", first.ID, ExperienceInput{})
	assert.Equal(t, "Section not found", err.(*domain.Error).Message)

	exp, err = svc.DeleteExperience(ctx, "Internship", first.ID)
	require.NoError(t, err)
	items := exp.Section("Internship").Items
	require.Len(t, items, 1)
	assert.Equal(t, second, items[0])

	_, err = svc.DeleteExperience(ctx, "Internship", first.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestUpdateResume(t *testing.T) {
	ctx := context.Background()
	svc, _, rel := newTestService(t)

	url, err := svc.UpdateResume(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, url)

	cv := &domain.AssetRef{ID: "portfolio/cv.pdf", URL: "http://localhost:5000/uploads/portfolio/cv.pdf", Kind: domain.AssetDocument}
	url, err = svc.UpdateResume(ctx, cv)
	require.NoError(t, err)
	assert.Equal(t, cv.URL, url)
	assert.Empty(t, rel.released())

	// Same file name overwrites in place and must not be released.
	_, err = svc.UpdateResume(ctx, cv)
	require.NoError(t, err)
	assert.Empty(t, rel.released())

	cv2 := &domain.AssetRef{ID: "portfolio/cv-2025.pdf", URL: "http://localhost:5000/uploads/portfolio/cv-2025.pdf", Kind: domain.AssetDocument}
	_, err = svc.UpdateResume(ctx, cv2)
	require.NoError(t, err)
	assert.Equal(t, []release{{cv.ID, cv.URL, "resume_replaced"}}, rel.released())

	url, err = svc.UpdateResume(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, cv2.URL, url)
}

func TestEditors_StorageFailureReleasesUpload(t *testing.T) {
	ctx := context.Background()
	svc, store, rel := newTestService(t)
	_, err := svc.EnsureExists(ctx)
	require.NoError(t, err)

	store.FailWith = database.ErrNotConnected
	_, _, err = svc.AddProject(ctx, ProjectInput{Title: "A"}, imageRef("portfolio/a.png"))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindStorage))
	assert.Len(t, rel.released(), 1)
}
