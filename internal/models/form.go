package models

// FormKind identifies one of the public forms.
type FormKind string

const (
	FormStudent FormKind = "student"
	FormTeacher FormKind = "teacher"
	FormContact FormKind = "contact"
)

// Valid reports whether k names a known form.
func (k FormKind) Valid() bool {
	switch k {
	case FormStudent, FormTeacher, FormContact:
		return true
	}
	return false
}

// Mirror store collections.
const (
	CollectionRegistrations       = "registrations"
	CollectionTeacherApplications = "teacher_applications"
)

// Collection returns the mirror collection for k, or "" when the form is relay-only.
func (k FormKind) Collection() string {
	switch k {
	case FormStudent:
		return CollectionRegistrations
	case FormTeacher:
		return CollectionTeacherApplications
	}
	return ""
}

// SubmissionType is the discriminator sent to the relay.
func (k FormKind) SubmissionType() string {
	switch k {
	case FormStudent:
		return "Student"
	case FormTeacher:
		return "Teacher"
	default:
		return "Contact"
	}
}

// Skill levels offered to new students.
const (
	SkillBeginner     = "Beginner"
	SkillIntermediate = "Intermediate"
)
