package portfolio

import (
	"context"

	"github.com/google/uuid"
	"github.com/nfrund/folio/internal/domain"
)

const (
	msgProjectNotFound    = "Project not found"
	msgSectionNotFound    = "Section not found"
	msgExperienceNotFound = "Experience item not found"
)

// ProjectInput holds the editable text fields of a project.
type ProjectInput struct {
	Title       string
	Description string
	ButtonText  string
	ButtonLink  string
}

// ExperienceInput holds the editable fields of an experience item.
type ExperienceInput struct {
	Company      string
	Organization string
	Role         string
	Duration     string
	Description  string
}

// AddProject appends a project. image is the freshly uploaded asset, or nil.
func (s *Service) AddProject(ctx context.Context, in ProjectInput, image *domain.AssetRef) (p *domain.Project, all []domain.Project, err error) {
	defer s.releaseOnFailure(ctx, image, &err)

	doc, err := s.EnsureExists(ctx)
	if err != nil {
		return nil, nil, err
	}

	project := domain.Project{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		ButtonText:  in.ButtonText,
		ButtonLink:  in.ButtonLink,
	}
	if image != nil {
		project.Image = image.URL
		project.ImageID = image.ID
	}
	doc.Projects = append(doc.Projects, project)

	stored, err := s.save(ctx, doc, "add project")
	if err != nil {
		return nil, nil, err
	}
	return &project, stored.Projects, nil
}

// UpdateProject rewrites the text fields of a project. When image is non-nil
// it replaces the current image, which is released after the save.
// Without a new image the existing one is kept.
func (s *Service) UpdateProject(ctx context.Context, id string, in ProjectInput, image *domain.AssetRef) (p *domain.Project, all []domain.Project, err error) {
	defer s.releaseOnFailure(ctx, image, &err)

	doc, err := s.EnsureExists(ctx)
	if err != nil {
		return nil, nil, err
	}

	idx := doc.ProjectIndex(id)
	if idx < 0 {
		return nil, nil, domain.NotFound(msgProjectNotFound)
	}

	project := &doc.Projects[idx]
	previous := assetUse{id: project.ImageID, url: project.Image}

	project.Title = in.Title
	project.Description = in.Description
	project.ButtonText = in.ButtonText
	project.ButtonLink = in.ButtonLink
	if image != nil {
		project.Image = image.URL
		project.ImageID = image.ID
	}
	updated := *project

	stored, err := s.save(ctx, doc, "update project")
	if err != nil {
		return nil, nil, err
	}

	if image != nil && (previous.id != "" || previous.url != "") {
		s.releaser.Release(ctx, previous.id, previous.url, "project_image_replaced")
	}
	return &updated, stored.Projects, nil
}

// DeleteProject removes a project and releases its image.
func (s *Service) DeleteProject(ctx context.Context, id string) ([]domain.Project, error) {
	doc, err := s.EnsureExists(ctx)
	if err != nil {
		return nil, err
	}

	idx := doc.ProjectIndex(id)
	if idx < 0 {
		return nil, domain.NotFound(msgProjectNotFound)
	}
	removed := doc.Projects[idx]
	doc.Projects = append(doc.Projects[:idx], doc.Projects[idx+1:]...)

	stored, err := s.save(ctx, doc, "delete project")
	if err != nil {
		return nil, err
	}

	if removed.Image != "" || removed.ImageID != "" {
		s.releaser.Release(ctx, removed.ImageID, removed.Image, "project_deleted")
	}
	return stored.Projects, nil
}

// AddExperience appends an item to the named section.
func (s *Service) AddExperience(ctx context.Context, section string, in ExperienceInput) (*domain.Experience, error) {
	doc, err := s.EnsureExists(ctx)
	if err != nil {
		return nil, err
	}

	sec := doc.Experience.Section(section)
	if sec == nil {
		return nil, domain.NotFound(msgSectionNotFound)
	}
	sec.Items = append(sec.Items, domain.ExperienceItem{
		ID:           uuid.NewString(),
		Company:      in.Company,
		Organization: in.Organization,
		Role:         in.Role,
		Duration:     in.Duration,
		Description:  in.Description,
	})

	stored, err := s.save(ctx, doc, "add experience")
	if err != nil {
		return nil, err
	}
	return &stored.Experience, nil
}

// UpdateExperience rewrites an item in place, keeping its identity.
func (s *Service) UpdateExperience(ctx context.Context, section, id string, in ExperienceInput) (*domain.Experience, error) {
	doc, err := s.EnsureExists(ctx)
	if err != nil {
		return nil, err
	}

	sec, idx, err := locateItem(doc, section, id)
	if err != nil {
		return nil, err
	}
	item := &sec.Items[idx]
	item.Company = in.Company
	item.Organization = in.Organization
	item.Role = in.Role
	item.Duration = in.Duration
	item.Description = in.Description

	stored, err := s.save(ctx, doc, "update experience")
	if err != nil {
		return nil, err
	}
	return &stored.Experience, nil
}

// DeleteExperience removes an item, preserving the order of its siblings.
func (s *Service) DeleteExperience(ctx context.Context, section, id string) (*domain.Experience, error) {
	doc, err := s.EnsureExists(ctx)
	if err != nil {
		return nil, err
	}

	sec, idx, err := locateItem(doc, section, id)
	if err != nil {
		return nil, err
	}
	sec.Items = append(sec.Items[:idx], sec.Items[idx+1:]...)

	stored, err := s.save(ctx, doc, "delete experience")
	if err != nil {
		return nil, err
	}
	return &stored.Experience, nil
}

// UpdateResume points the resume link at a freshly uploaded document and
// releases the previous one. With a nil resume the current link is returned
// unchanged.
func (s *Service) UpdateResume(ctx context.Context, resume *domain.AssetRef) (url string, err error) {
	orphan := resume
	defer func() { s.releaseOnFailure(ctx, orphan, &err) }()

	doc, err := s.EnsureExists(ctx)
	if err != nil {
		return "", err
	}
	if resume == nil {
		return doc.ResumeURL, nil
	}

	previous := assetUse{id: doc.ResumeID, url: doc.ResumeURL}
	if previous.id == resume.ID {
		// The upload overwrote the file the document already points at.
		orphan = nil
	}
	doc.ResumeURL = resume.URL
	doc.ResumeID = resume.ID

	stored, err := s.save(ctx, doc, "update resume")
	if err != nil {
		return "", err
	}

	// Documents keep their file name, so re-uploading the same file lands on
	// the key that is now referenced again.
	if (previous.id != "" || previous.url != "") && previous.id != resume.ID && previous.url != resume.URL {
		s.releaser.Release(ctx, previous.id, previous.url, "resume_replaced")
	}
	return stored.ResumeURL, nil
}

func locateItem(doc *domain.Portfolio, section, id string) (*domain.Section, int, error) {
	sec := doc.Experience.Section(section)
	if sec == nil {
		return nil, -1, domain.NotFound(msgSectionNotFound)
	}
	idx := sec.IndexOf(id)
	if idx < 0 {
		return nil, -1, domain.NotFound(msgExperienceNotFound)
	}
	return sec, idx, nil
}

// releaseOnFailure drops an uploaded asset that never made it into the
// document.
func (s *Service) releaseOnFailure(ctx context.Context, asset *domain.AssetRef, err *error) {
	if *err != nil && asset != nil {
		s.releaser.Release(ctx, asset.ID, asset.URL, "orphaned_upload")
	}
}
