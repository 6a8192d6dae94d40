package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-builder/resume/model"
)

// State is the enhancement lifecycle of a session.
type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateReviewing State = "reviewing"
)

var (
	ErrBusy            = errors.New("an enhancement is already in progress")
	ErrAwaitingReview  = errors.New("an enhancement candidate is awaiting apply or reject")
	ErrNotEditable     = errors.New("document is locked while an enhancement is pending or under review")
	ErrNotReviewing    = errors.New("no enhancement candidate to review")
	ErrIndexOutOfRange = errors.New("entry index out of range")
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownSection  = errors.New("unknown section")
	ErrEnhancerPanic   = errors.New("enhancement failed unexpectedly")
)

// Enhancer turns a document into an enhanced candidate of the same shape.
type Enhancer interface {
	Enhance(ctx context.Context, doc model.Document) (model.Document, error)
}

// View is a point-in-time copy of a session.
type View struct {
	ID        string          `json:"id"`
	State     State           `json:"state"`
	Document  model.Document  `json:"document"`
	Candidate *model.Document `json:"candidate,omitempty"`
	LastError string          `json:"lastError,omitempty"`
	Revision  int64           `json:"revision"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Session owns one live document and its enhancement state machine:
// idle -> pending -> reviewing|idle -> idle.
type Session struct {
	id  string
	now func() time.Time

	mu        sync.Mutex
	state     State
	live      model.Document
	candidate *model.Document
	lastErr   string
	revision  int64
	updatedAt time.Time
}

// NewSession constructs an idle session owning doc.
func NewSession(id string, doc model.Document, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		id:        id,
		now:       now,
		state:     StateIdle,
		live:      editable(doc),
		updatedAt: now().UTC(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a deep copy of the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:        s.id,
		State:     s.state,
		Document:  s.live.Clone(),
		LastError: s.lastErr,
		Revision:  s.revision,
		UpdatedAt: s.updatedAt,
	}
	if s.candidate != nil {
		c := s.candidate.Clone()
		v.Candidate = &c
	}
	return v
}

// Active returns the document the preview should show: the candidate while
// reviewing, otherwise the live document.
func (s *Session) Active() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateReviewing && s.candidate != nil {
		return s.candidate.Clone()
	}
	return s.live.Clone()
}

// SetPersonal sets one personal info field.
func (s *Session) SetPersonal(field PersonalField, value string) error {
	return s.edit(func(doc *model.Document) error {
		if !setPersonal(&doc.PersonalInfo, field, value) {
			return ErrUnknownField
		}
		return nil
	})
}

// SetExperience sets one field of the experience entry at index.
func (s *Session) SetExperience(index int, field ExperienceField, value string) error {
	return s.edit(func(doc *model.Document) error {
		if index < 0 || index >= len(doc.Experience) {
			return ErrIndexOutOfRange
		}
		if !setExperience(&doc.Experience[index], field, value) {
			return ErrUnknownField
		}
		return nil
	})
}

// SetEducation sets one field of the education entry at index.
func (s *Session) SetEducation(index int, field EducationField, value string) error {
	return s.edit(func(doc *model.Document) error {
		if index < 0 || index >= len(doc.Education) {
			return ErrIndexOutOfRange
		}
		if !setEducation(&doc.Education[index], field, value) {
			return ErrUnknownField
		}
		return nil
	})
}

// SetActivity sets one field of the extra-curricular entry at index.
func (s *Session) SetActivity(index int, field ActivityField, value string) error {
	return s.edit(func(doc *model.Document) error {
		if index < 0 || index >= len(doc.ExtraCurriculars) {
			return ErrIndexOutOfRange
		}
		if !setActivity(&doc.ExtraCurriculars[index], field, value) {
			return ErrUnknownField
		}
		return nil
	})
}

// SetSkill replaces the skill at index.
func (s *Session) SetSkill(index int, value string) error {
	return s.edit(func(doc *model.Document) error {
		if index < 0 || index >= len(doc.Skills) {
			return ErrIndexOutOfRange
		}
		doc.Skills[index] = value
		return nil
	})
}

// AddEntry appends a blank entry to section.
func (s *Session) AddEntry(section Section) error {
	return s.edit(func(doc *model.Document) error {
		switch section {
		case SectionExperience:
			doc.Experience = append(doc.Experience, model.Experience{})
		case SectionEducation:
			doc.Education = append(doc.Education, model.Education{})
		case SectionExtraCurriculars:
			doc.ExtraCurriculars = append(doc.ExtraCurriculars, model.ExtraCurricular{})
		case SectionSkills:
			doc.Skills = append(doc.Skills, "")
		default:
			return ErrUnknownSection
		}
		return nil
	})
}

// RemoveEntry removes the entry at index keeping the order of the rest.
// Removing the only entry resets it to blank so one editable entry remains.
func (s *Session) RemoveEntry(section Section, index int) error {
	return s.edit(func(doc *model.Document) error {
		var err error
		switch section {
		case SectionExperience:
			doc.Experience, err = removeAt(doc.Experience, index)
		case SectionEducation:
			doc.Education, err = removeAt(doc.Education, index)
		case SectionExtraCurriculars:
			doc.ExtraCurriculars, err = removeAt(doc.ExtraCurriculars, index)
		case SectionSkills:
			doc.Skills, err = removeAt(doc.Skills, index)
		default:
			return ErrUnknownSection
		}
		return err
	})
}

// LoadSample replaces the live document with the demo document.
func (s *Session) LoadSample() error {
	return s.edit(func(doc *model.Document) error {
		*doc = model.Sample()
		return nil
	})
}

// Submit sends a snapshot of the live document to enh. Only one submission
// may be in flight; it is not cancelled when the caller goes away and is
// bounded by the enhancer's own timeout. On success the session moves to
// reviewing and the candidate is returned.
func (s *Session) Submit(ctx context.Context, enh Enhancer) (model.Document, error) {
	s.mu.Lock()
	switch s.state {
	case StatePending:
		s.mu.Unlock()
		return model.Document{}, ErrBusy
	case StateReviewing:
		s.mu.Unlock()
		return model.Document{}, ErrAwaitingReview
	}
	s.state = StatePending
	s.lastErr = ""
	s.touch()
	snapshot := s.live.Clone()
	s.mu.Unlock()

	candidate, err := callEnhancer(context.WithoutCancel(ctx), enh, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err != nil {
		s.state = StateIdle
		s.lastErr = err.Error()
		return model.Document{}, err
	}
	c := candidate.Normalize()
	s.candidate = &c
	s.state = StateReviewing
	return c.Clone(), nil
}

// Apply replaces the live document with the reviewed candidate.
func (s *Session) Apply() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing || s.candidate == nil {
		return ErrNotReviewing
	}
	s.live = editable(*s.candidate)
	s.candidate = nil
	s.state = StateIdle
	s.revision++
	s.touch()
	return nil
}

// Reject discards the reviewed candidate leaving the live document untouched.
func (s *Session) Reject() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing || s.candidate == nil {
		return ErrNotReviewing
	}
	s.candidate = nil
	s.state = StateIdle
	s.touch()
	return nil
}

func (s *Session) edit(fn func(doc *model.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrNotEditable
	}
	next := s.live.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.live = next.Normalize()
	s.revision++
	s.touch()
	return nil
}

// touch must be called with mu held.
func (s *Session) touch() {
	s.updatedAt = s.now().UTC()
}

// callEnhancer converts a panic in enh into ErrEnhancerPanic so a session
// never stays pending.
func callEnhancer(ctx context.Context, enh Enhancer, doc model.Document) (out model.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = model.Document{}
			err = fmt.Errorf("%w: %v", ErrEnhancerPanic, r)
		}
	}()
	return enh.Enhance(ctx, doc)
}

// editable returns a normalized copy of doc in which every repeatable
// section has at least one entry to edit.
func editable(doc model.Document) model.Document {
	out := doc.Normalize()
	if len(out.Experience) == 0 {
		out.Experience = []model.Experience{{}}
	}
	if len(out.Education) == 0 {
		out.Education = []model.Education{{}}
	}
	if len(out.ExtraCurriculars) == 0 {
		out.ExtraCurriculars = []model.ExtraCurricular{{}}
	}
	if len(out.Skills) == 0 {
		out.Skills = []string{""}
	}
	return out
}

func removeAt[T any](items []T, index int) ([]T, error) {
	if index < 0 || index >= len(items) {
		return items, ErrIndexOutOfRange
	}
	if len(items) == 1 {
		var blank T
		return []T{blank}, nil
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...), nil
}
