package models

// StudentRegistration is the student sub-form draft.
type StudentRegistration struct {
	ParentName            string `json:"parentName"`
	StudentName           string `json:"studentName"`
	StudentDOB            string `json:"studentDob"`
	SkillLevel            string `json:"skillLevel"`
	PriorExperience       string `json:"priorExperience"`
	Classes               string `json:"classes"`
	Address               string `json:"address"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Referral              string `json:"referral"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	MedicalInfo           string `json:"medicalInfo"`
	Consent               bool   `json:"consent"`
	SendCopy              bool   `json:"sendCopy"`
	BotField              string `json:"botField"`
}

// TeacherApplication is the teacher sub-form draft.
type TeacherApplication struct {
	FullName       string   `json:"fullName"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Instruments    []string `json:"instruments"`
	Qualifications string   `json:"qualifications"`
	Experience     string   `json:"experience"`
	SendCopy       bool     `json:"sendCopy"`
	BotField       string   `json:"botField"`
	CV             *CVFile  `json:"-"`
}

// CVFile is an optional attachment on a teacher application.
type CVFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

// ContactInquiry is the contact form draft. It is never mirrored.
type ContactInquiry struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	BotField string `json:"botField"`
}
