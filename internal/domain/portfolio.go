package domain

import "context"

// Social is a link to one of the owner's social profiles.
type Social struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	URL  string `json:"url"`
}

// FormField describes one input of the contact form rendered by the client.
type FormField struct {
	ID          string `json:"id" validate:"required"`
	Label       string `json:"label" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Placeholder string `json:"placeholder" validate:"required"`
	Rows        *int   `json:"rows,omitempty" validate:"omitempty,gt=0"`
}

type SubmitButton struct {
	Label string `json:"label"`
}

type Contact struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Socials      []Social     `json:"socials"`
	FormFields   []FormField  `json:"formFields" validate:"dive"`
	SubmitButton SubmitButton `json:"submitButton"`
}

// ExperienceItem is one entry inside an experience section. ID is assigned
// when the item is created and never changes afterwards.
type ExperienceItem struct {
	ID           string `json:"_id"`
	Company      string `json:"company"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Duration     string `json:"duration"`
	Description  string `json:"description"`
}

// Section groups experience items under a type label such as "Work".
type Section struct {
	Type  string           `json:"type"`
	Items []ExperienceItem `json:"items"`
}

type Experience struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section returns the section with the given type label, or nil.
func (e *Experience) Section(sectionType string) *Section {
	for i := range e.Sections {
		if e.Sections[i].Type == sectionType {
			return &e.Sections[i]
		}
	}
	return nil
}

// IndexOf returns the position of the item with the given ID, or -1.
func (s *Section) IndexOf(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Project is a showcased piece of work. ImageID is the asset store
// identifier of Image and is empty when the image is not hosted by us.
type Project struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ImageID     string `json:"imageId,omitempty"`
	ButtonText  string `json:"buttonText"`
	ButtonLink  string `json:"buttonLink"`
}

type Skill struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type Skills struct {
	Languages                 []Skill `json:"languages"`
	FrameworksAndTechnologies []Skill `json:"frameworksAndTechnologies"`
	ToolsAndPlatforms         []Skill `json:"toolsAndPlatforms"`
	Databases                 []Skill `json:"databases"`
}

// Portfolio is the single document holding all site content.
type Portfolio struct {
	Contact    Contact    `json:"contact"`
	Experience Experience `json:"experience"`
	Projects   []Project  `json:"projects"`
	Skills     Skills     `json:"skills"`
	ResumeURL  string     `json:"resumeUrl"`
	ResumeID   string     `json:"resumeId,omitempty"`
}

// ProjectIndex returns the position of the project with the given ID, or -1.
func (p *Portfolio) ProjectIndex(id string) int {
	for i := range p.Projects {
		if p.Projects[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the structural rules of a submitted document.
func (p *Portfolio) Validate() error {
	return validatorInstance.Struct(p)
}

// Normalize replaces nil slices with empty ones so the document always
// serializes lists as [] rather than null.
func (p *Portfolio) Normalize() {
	if p.Contact.Socials == nil {
		p.Contact.Socials = []Social{}
	}
	if p.Contact.FormFields == nil {
		p.Contact.FormFields = []FormField{}
	}
	if p.Experience.Sections == nil {
		p.Experience.Sections = []Section{}
	}
	for i := range p.Experience.Sections {
		if p.Experience.Sections[i].Items == nil {
			p.Experience.Sections[i].Items = []ExperienceItem{}
		}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
	for _, list := range []*[]Skill{
		&p.Skills.Languages,
		&p.Skills.FrameworksAndTechnologies,
		&p.Skills.ToolsAndPlatforms,
		&p.Skills.Databases,
	} {
		if *list == nil {
			*list = []Skill{}
		}
	}
}

// Clone returns a deep copy of the document.
func (p *Portfolio) Clone() *Portfolio {
	if p == nil {
		return nil
	}
	out := *p
	out.Contact.Socials = append([]Social(nil), p.Contact.Socials...)
	out.Contact.FormFields = make([]FormField, len(p.Contact.FormFields))
	for i, f := range p.Contact.FormFields {
		if f.Rows != nil {
			rows := *f.Rows
			f.Rows = &rows
		}
		out.Contact.FormFields[i] = f
	}
	out.Experience.Sections = make([]Section, len(p.Experience.Sections))
	for i, s := range p.Experience.Sections {
		s.Items = append([]ExperienceItem(nil), s.Items...)
		out.Experience.Sections[i] = s
	}
	out.Projects = append([]Project(nil), p.Projects...)
	out.Skills.Languages = append([]Skill(nil), p.Skills.Languages...)
	out.Skills.FrameworksAndTechnologies = append([]Skill(nil), p.Skills.FrameworksAndTechnologies...)
	out.Skills.ToolsAndPlatforms = append([]Skill(nil), p.Skills.ToolsAndPlatforms...)
	out.Skills.Databases = append([]Skill(nil), p.Skills.Databases...)
	out.Normalize()
	return &out
}

// PortfolioRepository persists the singleton portfolio document.
type PortfolioRepository interface {
	// Load returns the stored document, or (nil, nil) when none exists.
	Load(ctx context.Context) (*Portfolio, error)
	// Save creates or fully replaces the stored document.
	Save(ctx context.Context, p *Portfolio) (*Portfolio, error)
	// Delete removes the stored document. Deleting a missing document is not an error.
	Delete(ctx context.Context) error
}
