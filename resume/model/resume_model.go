package model

import "strings"

// Document represents the résumé payload exchanged between the editor, the
// preview renderer and the enhancement service. All values are opaque strings.
type Document struct {
	PersonalInfo     PersonalInfo      `json:"personalInfo"`
	Experience       []Experience      `json:"experience"`
	Education        []Education       `json:"education"`
	ExtraCurriculars []ExtraCurricular `json:"extraCurriculars"`
	Skills           []string          `json:"skills"`
}

// PersonalInfo captures top-of-resume contact details and the summary.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
}

// Experience represents a work history entry.
type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Education represents an education entry.
type Education struct {
	School         string `json:"school"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationDate string `json:"graduationDate"`
	GPA            string `json:"gpa,omitempty"`
}

// ExtraCurricular represents an activity outside of employment.
type ExtraCurricular struct {
	Organization string `json:"organization"`
	Role         string `json:"role"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Description  string `json:"description"`
}

// Blank returns an empty document with one editable entry per repeatable section.
func Blank() Document {
	return Document{
		Experience:       []Experience{{}},
		Education:        []Education{{}},
		ExtraCurriculars: []ExtraCurricular{{}},
		Skills:           []string{""},
	}
}

// Clone returns a deep copy so callers never share backing arrays.
func (d Document) Clone() Document {
	out := Document{PersonalInfo: d.PersonalInfo}
	if d.Experience != nil {
		out.Experience = append([]Experience{}, d.Experience...)
	}
	if d.Education != nil {
		out.Education = append([]Education{}, d.Education...)
	}
	if d.ExtraCurriculars != nil {
		out.ExtraCurriculars = append([]ExtraCurricular{}, d.ExtraCurriculars...)
	}
	if d.Skills != nil {
		out.Skills = append([]string{}, d.Skills...)
	}
	return out
}

// Normalize replaces nil sections with empty slices so the document always
// serializes with all five keys and array containers.
func (d Document) Normalize() Document {
	out := d.Clone()
	if out.Experience == nil {
		out.Experience = []Experience{}
	}
	if out.Education == nil {
		out.Education = []Education{}
	}
	if out.ExtraCurriculars == nil {
		out.ExtraCurriculars = []ExtraCurricular{}
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	return out
}

// IsBlank reports whether every field of the entry is empty.
func (e Experience) IsBlank() bool {
	return allBlank(e.Company, e.Position, e.StartDate, e.EndDate, e.Description)
}

// IsBlank reports whether every field of the entry is empty.
func (e Education) IsBlank() bool {
	return allBlank(e.School, e.Degree, e.Field, e.GraduationDate, e.GPA)
}

// IsBlank reports whether every field of the entry is empty.
func (e ExtraCurricular) IsBlank() bool {
	return allBlank(e.Organization, e.Role, e.StartDate, e.EndDate, e.Description)
}

func allBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
