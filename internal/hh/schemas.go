package hh

import (
	"strings"
	"time"
)

// TimeLayout is the timestamp layout hh uses (numeric zone without colon).
const TimeLayout = "2006-01-02T15:04:05-0700"

// ParseTime parses an hh timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// Negotiation states with special handling.
const (
	StateDiscard  = "discard"
	StateResponse = "response"
)

// Message author roles.
const (
	ParticipantEmployer  = "employer"
	ParticipantApplicant = "applicant"
)

// IDName is the {id, name} pair hh uses for dictionaries.
type IDName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Me is GET /me.
type Me struct {
	ID         string `json:"id" validate:"required"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// FullName joins last, first and middle names, skipping empty parts.
func (m *Me) FullName() string {
	return strings.Join(strings.Fields(m.LastName+" "+m.FirstName+" "+m.MiddleName), " ")
}

// Employer is an employer reference. The ID is empty for hidden employers.
type Employer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AlternateURL string `json:"alternate_url"`
}

// SalaryRange is a salary fork; either bound may be missing.
type SalaryRange struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
	Gross    bool   `json:"gross"`
}

// NegotiationState is the state of a negotiation (response, invitation,
// interview, discard, hired, ...).
type NegotiationState struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

// NegotiationVacancy is the vacancy a negotiation refers to.
type NegotiationVacancy struct {
	ID           string       `json:"id" validate:"required"`
	Name         string       `json:"name"`
	AlternateURL string       `json:"alternate_url"`
	Employer     *Employer    `json:"employer"`
	SalaryRange  *SalaryRange `json:"salary_range"`
	CreatedAt    string       `json:"created_at"`
}

// ResumeRef is the resume a negotiation was made with.
type ResumeRef struct {
	ID           string `json:"id" validate:"required"`
	Title        string `json:"title"`
	AlternateURL string `json:"alternate_url"`
	URL          string `json:"url"`
}

// Negotiation is an application thread between the applicant and an employer.
// Vacancy is nil when the vacancy was removed.
type Negotiation struct {
	ID               string              `json:"id" validate:"required"`
	State            NegotiationState    `json:"state"`
	Hidden           bool                `json:"hidden"`
	ViewedByOpponent bool                `json:"viewed_by_opponent"`
	DeclineAllowed   bool                `json:"decline_allowed"`
	HasUpdates       bool                `json:"has_updates"`
	MessagingStatus  string              `json:"messaging_status"`
	CreatedAt        string              `json:"created_at"`
	UpdatedAt        string              `json:"updated_at"`
	URL              string              `json:"url"`
	Vacancy          *NegotiationVacancy `json:"vacancy"`
	Resume           *ResumeRef          `json:"resume"`
}

// NegotiationList is GET /negotiations.
type NegotiationList struct {
	Found   int           `json:"found"`
	Page    int           `json:"page"`
	Pages   int           `json:"pages"`
	PerPage int           `json:"per_page"`
	Items   []Negotiation `json:"items" validate:"dive"`
}

// MessageAuthor identifies who wrote a message.
type MessageAuthor struct {
	ParticipantType string `json:"participant_type" validate:"required"`
}

// Message is one chat message of a negotiation.
type Message struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Author    MessageAuthor `json:"author"`
	CreatedAt string        `json:"created_at"`
}

// FromEmployer reports whether the employer wrote the message.
func (m *Message) FromEmployer() bool {
	return m.Author.ParticipantType == ParticipantEmployer
}

// MessageList is GET /negotiations/{id}/messages.
type MessageList struct {
	Found   int       `json:"found"`
	Page    int       `json:"page"`
	Pages   int       `json:"pages"`
	PerPage int       `json:"per_page"`
	Items   []Message `json:"items" validate:"dive"`
}

// ResumeItem is a resume in GET /resumes/mine.
type ResumeItem struct {
	ID           string `json:"id" validate:"required"`
	Title        string `json:"title"`
	Status       IDName `json:"status"`
	AlternateURL string `json:"alternate_url"`
	UpdatedAt    string `json:"updated_at"`
}

// ResumeList is GET /resumes/mine.
type ResumeList struct {
	Found int          `json:"found"`
	Items []ResumeItem `json:"items" validate:"dive"`
}

// ResumeDetail is GET /resumes/{id}. Its shape varies between resume
// kinds, so it is decoded leniently and every field may be empty.
type ResumeDetail struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	ProfessionalRoles []IDName           `json:"professional_roles"`
	SkillSet          []string           `json:"skill_set"`
	Skills            string             `json:"skills"`
	Experience        []ResumeExperience `json:"experience"`
	Education         *ResumeEducation   `json:"education"`
	Language          []ResumeLanguage   `json:"language"`
	TotalExperience   *TotalExperience   `json:"total_experience"`
}

// TotalExperience is the summed work experience of a resume.
type TotalExperience struct {
	Months int `json:"months"`
}

// ResumeExperience is one job in a resume.
type ResumeExperience struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Description string `json:"description"`
}

// EducationEntry is a course, a degree or an attestation.
type EducationEntry struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Result       string `json:"result"`
	Year         int    `json:"year"`
}

// ResumeEducation groups the education entries of a resume.
type ResumeEducation struct {
	Level       *IDName          `json:"level"`
	Primary     []EducationEntry `json:"primary"`
	Additional  []EducationEntry `json:"additional"`
	Attestation []EducationEntry `json:"attestation"`
	Elementary  []EducationEntry `json:"elementary"`
}

// ResumeLanguage is a language and its level.
type ResumeLanguage struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level IDName `json:"level"`
}

// Snippet holds the highlighted parts of a vacancy in search results.
type Snippet struct {
	Requirement    string `json:"requirement"`
	Responsibility string `json:"responsibility"`
}

// VacancyItem is a vacancy in search results.
type VacancyItem struct {
	ID                     string       `json:"id" validate:"required"`
	Name                   string       `json:"name" validate:"required"`
	AlternateURL           string       `json:"alternate_url"`
	ApplyAlternateURL      string       `json:"apply_alternate_url"`
	Employer               *Employer    `json:"employer"`
	HasTest                bool         `json:"has_test"`
	Archived               bool         `json:"archived"`
	ResponseLetterRequired bool         `json:"response_letter_required"`
	Relations              []string     `json:"relations"`
	SalaryRange            *SalaryRange `json:"salary_range"`
	Snippet                Snippet      `json:"snippet"`
	Experience             *IDName      `json:"experience"`
	PublishedAt            string       `json:"published_at"`
}

// EmployerName returns the employer name, empty when there is no employer.
func (v *VacancyItem) EmployerName() string {
	if v.Employer == nil {
		return ""
	}
	return v.Employer.Name
}

// VacancyList is GET /resumes/{id}/similar_vacancies.
type VacancyList struct {
	Found   int           `json:"found"`
	Page    int           `json:"page"`
	Pages   int           `json:"pages"`
	PerPage int           `json:"per_page"`
	Items   []VacancyItem `json:"items" validate:"dive"`
}

// VacancyFull is GET /vacancies/{id}. Description is HTML.
type VacancyFull struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required"`
	AlternateURL string    `json:"alternate_url"`
	Description  string    `json:"description"`
	KeySkills    []IDName  `json:"key_skills"`
	Experience   *IDName   `json:"experience"`
	Employer     *Employer `json:"employer"`
}

// BlacklistedEmployer is an entry of GET /employers/blacklisted.
type BlacklistedEmployer struct {
	ID            string `json:"id" validate:"required"`
	Name          string `json:"name"`
	AlternateURL  string `json:"alternate_url"`
	URL           string `json:"url"`
	OpenVacancies int    `json:"open_vacancies"`
}

// BlacklistedEmployers is GET /employers/blacklisted.
type BlacklistedEmployers struct {
	Found        int                   `json:"found"`
	Page         int                   `json:"page"`
	Pages        int                   `json:"pages"`
	PerPage      int                   `json:"per_page"`
	LimitReached bool                  `json:"limit_reached"`
	Items        []BlacklistedEmployer `json:"items" validate:"dive"`
}
