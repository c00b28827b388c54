package store

import (
	"fmt"
	"strings"
)

// Kind tags which collection an entity belongs to.
type Kind string

const (
	KindTask    Kind = "task"
	KindProject Kind = "project"
	KindNote    Kind = "note"
	KindIdea    Kind = "idea"
)

// Kinds lists every collection in the order commands and help text use.
var Kinds = []Kind{KindTask, KindProject, KindNote, KindIdea}

func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "s")
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

func (k Kind) Plural() string { return string(k) + "s" }

// Title returns the capitalized kind, e.g. "Task".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// PrimaryField names the field used for matching and display.
func (k Kind) PrimaryField() string {
	switch k {
	case KindTask:
		return "title"
	case KindProject:
		return "name"
	default:
		return "content"
	}
}

// Entity is implemented by *Task, *Project, *Note and *Idea only.
type Entity interface {
	Kind() Kind
	EntityID() string
	PrimaryText() string
	Created() string
	setIdentity(id, createdAt string)
	setPrimaryText(s string)
}

type Importance string

const (
	ImportanceMin  Importance = "Min"
	ImportanceLow  Importance = "Low"
	ImportanceMed  Importance = "Med"
	ImportanceHigh Importance = "High"
	ImportanceMax  Importance = "Max"
)

// ParseImportance accepts the canonical names plus a few common spellings.
func ParseImportance(s string) (Importance, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "min", "minimal", "lowest":
		return ImportanceMin, nil
	case "low", "l":
		return ImportanceLow, nil
	case "med", "medium", "normal", "m", "n":
		return ImportanceMed, nil
	case "high", "h":
		return ImportanceHigh, nil
	case "max", "urgent", "highest", "u":
		return ImportanceMax, nil
	default:
		return "", fmt.Errorf("%w: unknown importance %q", ErrInvalid, s)
	}
}

type ChecklistItem struct {
	ID        string `yaml:"id" json:"id"`
	Content   string `yaml:"content" json:"content"`
	Completed bool   `yaml:"completed" json:"completed"`
}

type Task struct {
	ID               string          `yaml:"id" json:"id"`
	Title            string          `yaml:"title" json:"title"`
	Completed        bool            `yaml:"completed" json:"completed"`
	CreatedAt        string          `yaml:"created_at" json:"createdAt"`
	DueDate          string          `yaml:"due_date,omitempty" json:"dueDate,omitempty"`
	Importance       Importance      `yaml:"importance,omitempty" json:"importance,omitempty"`
	Description      string          `yaml:"-" json:"description,omitempty"`
	Checklist        []ChecklistItem `yaml:"checklist,omitempty" json:"checklist,omitempty"`
	ProjectID        string          `yaml:"project_id,omitempty" json:"projectId,omitempty"`
	Recurring        bool            `yaml:"recurring,omitempty" json:"recurring,omitempty"`
	RecurringDetails string          `yaml:"recurring_details,omitempty" json:"recurringDetails,omitempty"`
}

func (t *Task) Kind() Kind          { return KindTask }
func (t *Task) EntityID() string    { return t.ID }
func (t *Task) PrimaryText() string { return t.Title }
func (t *Task) Created() string     { return t.CreatedAt }

func (t *Task) setIdentity(id, createdAt string) { t.ID, t.CreatedAt = id, createdAt }
func (t *Task) setPrimaryText(s string)          { t.Title = s }

// StatusLabel is the bracketed state shown in task listings.
func (t *Task) StatusLabel() string {
	if t.Completed {
		return "Completed"
	}
	return "Pending"
}

type Project struct {
	ID                 string `yaml:"id" json:"id"`
	Name               string `yaml:"name" json:"name"`
	Description        string `yaml:"-" json:"description"`
	CreatedAt          string `yaml:"created_at" json:"createdAt"`
	Context            string `yaml:"context,omitempty" json:"context,omitempty"`
	ExcludeUserContext bool   `yaml:"exclude_user_context,omitempty" json:"excludeUserContext,omitempty"`
	Color              string `yaml:"color,omitempty" json:"color,omitempty"`
}

func (p *Project) Kind() Kind          { return KindProject }
func (p *Project) EntityID() string    { return p.ID }
func (p *Project) PrimaryText() string { return p.Name }
func (p *Project) Created() string     { return p.CreatedAt }

func (p *Project) setIdentity(id, createdAt string) { p.ID, p.CreatedAt = id, createdAt }
func (p *Project) setPrimaryText(s string)          { p.Name = s }

type Note struct {
	ID        string `yaml:"id" json:"id"`
	Content   string `yaml:"-" json:"content"`
	CreatedAt string `yaml:"created_at" json:"createdAt"`
}

func (n *Note) Kind() Kind          { return KindNote }
func (n *Note) EntityID() string    { return n.ID }
func (n *Note) PrimaryText() string { return n.Content }
func (n *Note) Created() string     { return n.CreatedAt }

func (n *Note) setIdentity(id, createdAt string) { n.ID, n.CreatedAt = id, createdAt }
func (n *Note) setPrimaryText(s string)          { n.Content = s }

type Idea struct {
	ID        string `yaml:"id" json:"id"`
	Content   string `yaml:"-" json:"content"`
	CreatedAt string `yaml:"created_at" json:"createdAt"`
}

func (i *Idea) Kind() Kind          { return KindIdea }
func (i *Idea) EntityID() string    { return i.ID }
func (i *Idea) PrimaryText() string { return i.Content }
func (i *Idea) Created() string     { return i.CreatedAt }

func (i *Idea) setIdentity(id, createdAt string) { i.ID, i.CreatedAt = id, createdAt }
func (i *Idea) setPrimaryText(s string)          { i.Content = s }

// NewEntity builds an unsaved entity of the given kind with its primary text set.
func NewEntity(kind Kind, text string) (Entity, error) {
	e, err := blankEntity(kind)
	if err != nil {
		return nil, err
	}
	e.setPrimaryText(strings.TrimSpace(text))
	return e, nil
}

func blankEntity(kind Kind) (Entity, error) {
	switch kind {
	case KindTask:
		return &Task{}, nil
	case KindProject:
		return &Project{}, nil
	case KindNote:
		return &Note{}, nil
	case KindIdea:
		return &Idea{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalid, kind)
	}
}

// Clone returns a deep copy so stored values cannot be mutated through results.
func Clone(e Entity) Entity {
	switch v := e.(type) {
	case *Task:
		c := *v
		if v.Checklist != nil {
			c.Checklist = append([]ChecklistItem(nil), v.Checklist...)
		}
		return &c
	case *Project:
		c := *v
		return &c
	case *Note:
		c := *v
		return &c
	case *Idea:
		c := *v
		return &c
	default:
		return e
	}
}

// Patch is a field-level merge. Nil fields are left untouched.
type Patch struct {
	Text        *string
	Completed   *bool
	Description *string
	DueDate     *string
	Importance  *Importance
	ProjectID   *string
}

// TextPatch renames the primary field.
func TextPatch(s string) Patch { return Patch{Text: &s} }

// CompletedPatch sets a task's completion flag.
func CompletedPatch(done bool) Patch { return Patch{Completed: &done} }

// Apply merges p into e. Fields that do not exist on e's kind are rejected
// before anything is written.
func (p Patch) Apply(e Entity) error {
	if err := p.validate(e.Kind()); err != nil {
		return err
	}
	if p.Text != nil {
		e.setPrimaryText(strings.TrimSpace(*p.Text))
	}
	switch v := e.(type) {
	case *Task:
		if p.Completed != nil {
			v.Completed = *p.Completed
		}
		if p.Description != nil {
			v.Description = strings.TrimSpace(*p.Description)
		}
		if p.DueDate != nil {
			v.DueDate = strings.TrimSpace(*p.DueDate)
		}
		if p.Importance != nil {
			v.Importance = *p.Importance
		}
		if p.ProjectID != nil {
			v.ProjectID = strings.TrimSpace(*p.ProjectID)
		}
	case *Project:
		if p.Description != nil {
			v.Description = strings.TrimSpace(*p.Description)
		}
	}
	return nil
}

func (p Patch) validate(kind Kind) error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, kind.PrimaryField())
	}
	if kind == KindTask {
		return nil
	}
	if p.Completed != nil || p.DueDate != nil || p.Importance != nil || p.ProjectID != nil {
		return fmt.Errorf("%w: task-only field on %s", ErrInvalid, kind)
	}
	if p.Description != nil && kind != KindProject {
		return fmt.Errorf("%w: description not supported on %s", ErrInvalid, kind)
	}
	return nil
}
