package editor

import "resume-builder/resume/model"

// Section identifies a repeatable section of the document.
type Section string

const (
	SectionExperience       Section = "experience"
	SectionEducation        Section = "education"
	SectionExtraCurriculars Section = "extraCurriculars"
	SectionSkills           Section = "skills"
)

// PersonalField identifies a field of the personal info block.
type PersonalField string

const (
	PersonalName     PersonalField = "name"
	PersonalEmail    PersonalField = "email"
	PersonalPhone    PersonalField = "phone"
	PersonalLocation PersonalField = "location"
	PersonalSummary  PersonalField = "summary"
)

// ExperienceField identifies a field of an experience entry.
type ExperienceField string

const (
	ExperienceCompany     ExperienceField = "company"
	ExperiencePosition    ExperienceField = "position"
	ExperienceStartDate   ExperienceField = "startDate"
	ExperienceEndDate     ExperienceField = "endDate"
	ExperienceDescription ExperienceField = "description"
)

// EducationField identifies a field of an education entry.
type EducationField string

const (
	EducationSchool         EducationField = "school"
	EducationDegree         EducationField = "degree"
	EducationStudyField     EducationField = "field"
	EducationGraduationDate EducationField = "graduationDate"
	EducationGPA            EducationField = "gpa"
)

// ActivityField identifies a field of an extra-curricular entry.
type ActivityField string

const (
	ActivityOrganization ActivityField = "organization"
	ActivityRole         ActivityField = "role"
	ActivityStartDate    ActivityField = "startDate"
	ActivityEndDate      ActivityField = "endDate"
	ActivityDescription  ActivityField = "description"
)

// ParseSection maps a wire name onto a Section.
func ParseSection(raw string) (Section, bool) {
	switch s := Section(raw); s {
	case SectionExperience, SectionEducation, SectionExtraCurriculars, SectionSkills:
		return s, true
	default:
		return "", false
	}
}

func setPersonal(p *model.PersonalInfo, field PersonalField, value string) bool {
	switch field {
	case PersonalName:
		p.Name = value
	case PersonalEmail:
		p.Email = value
	case PersonalPhone:
		p.Phone = value
	case PersonalLocation:
		p.Location = value
	case PersonalSummary:
		p.Summary = value
	default:
		return false
	}
	return true
}

func setExperience(e *model.Experience, field ExperienceField, value string) bool {
	switch field {
	case ExperienceCompany:
		e.Company = value
	case ExperiencePosition:
		e.Position = value
	case ExperienceStartDate:
		e.StartDate = value
	case ExperienceEndDate:
		e.EndDate = value
	case ExperienceDescription:
		e.Description = value
	default:
		return false
	}
	return true
}

func setEducation(e *model.Education, field EducationField, value string) bool {
	switch field {
	case EducationSchool:
		e.School = value
	case EducationDegree:
		e.Degree = value
	case EducationStudyField:
		e.Field = value
	case EducationGraduationDate:
		e.GraduationDate = value
	case EducationGPA:
		e.GPA = value
	default:
		return false
	}
	return true
}

func setActivity(e *model.ExtraCurricular, field ActivityField, value string) bool {
	switch field {
	case ActivityOrganization:
		e.Organization = value
	case ActivityRole:
		e.Role = value
	case ActivityStartDate:
		e.StartDate = value
	case ActivityEndDate:
		e.EndDate = value
	case ActivityDescription:
		e.Description = value
	default:
		return false
	}
	return true
}
