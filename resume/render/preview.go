package render

import (
	"strings"

	"resume-builder/resume/model"
)

// Section kinds, in display order.
const (
	KindExperience       = "experience"
	KindEducation        = "education"
	KindExtraCurriculars = "extraCurriculars"
	KindSkills           = "skills"
)

// Preview is the read-only display form of a document.
type Preview struct {
	Header   Header    `json:"header"`
	Summary  string    `json:"summary,omitempty"`
	Sections []Section `json:"sections"`
}

// Header holds the name and the non-empty contact details.
type Header struct {
	Name    string   `json:"name,omitempty"`
	Contact []string `json:"contact,omitempty"`
}

// Section is one rendered résumé section. Skills use Items, the other
// sections use Entries.
type Section struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Entries []Entry  `json:"entries,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// Entry is a single rendered experience, education or activity row.
type Entry struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Dates    string `json:"dates,omitempty"`
	Note     string `json:"note,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Project maps a document onto its preview. It has no side effects; sections
// without any non-blank entry are omitted rather than rendered empty.
func Project(doc model.Document) Preview {
	p := Preview{
		Header: Header{
			Name:    strings.TrimSpace(doc.PersonalInfo.Name),
			Contact: nonEmpty(doc.PersonalInfo.Email, doc.PersonalInfo.Phone, doc.PersonalInfo.Location),
		},
		Summary:  strings.TrimSpace(doc.PersonalInfo.Summary),
		Sections: []Section{},
	}

	var experience []Entry
	for _, e := range doc.Experience {
		if e.IsBlank() {
			continue
		}
		experience = append(experience, Entry{
			Title:    e.Position,
			Subtitle: e.Company,
			Dates:    dateRange(e.StartDate, e.EndDate),
			Detail:   e.Description,
		})
	}
	if len(experience) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindExperience, Title: "Professional Experience", Entries: experience})
	}

	var education []Entry
	for _, e := range doc.Education {
		if e.IsBlank() {
			continue
		}
		entry := Entry{
			Title:    e.School,
			Subtitle: degreeLine(e.Degree, e.Field),
			Dates:    strings.TrimSpace(e.GraduationDate),
		}
		if gpa := strings.TrimSpace(e.GPA); gpa != "" {
			entry.Note = "GPA: " + gpa
		}
		education = append(education, entry)
	}
	if len(education) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindEducation, Title: "Education", Entries: education})
	}

	var activities []Entry
	for _, e := range doc.ExtraCurriculars {
		if e.IsBlank() {
			continue
		}
		activities = append(activities, Entry{
			Title:    e.Role,
			Subtitle: e.Organization,
			Dates:    dateRange(e.StartDate, e.EndDate),
			Detail:   e.Description,
		})
	}
	if len(activities) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindExtraCurriculars, Title: "Extra-Curricular Activities", Entries: activities})
	}

	if skills := nonEmpty(doc.Skills...); len(skills) > 0 {
		p.Sections = append(p.Sections, Section{Kind: KindSkills, Title: "Skills", Items: skills})
	}
	return p
}

// HasSection reports whether the preview renders a section of the given kind.
func (p Preview) HasSection(kind string) bool {
	for _, s := range p.Sections {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start
	default:
		return end
	}
}

func degreeLine(degree, field string) string {
	degree, field = strings.TrimSpace(degree), strings.TrimSpace(field)
	switch {
	case degree != "" && field != "":
		return degree + " in " + field
	case degree != "":
		return degree
	default:
		return field
	}
}
