package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-hhapply/internal/hh"
)

// VacancyItem renders a search result for an LLM prompt.
func VacancyItem(v *hh.VacancyItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Вакансия: %s\n", v.Name)
	fmt.Fprintf(&b, "Компания: %s\n", v.EmployerName())
	fmt.Fprintf(&b, "Требования: %s\n", HTMLToText(v.Snippet.Requirement))
	fmt.Fprintf(&b, "Обязанности: %s\n", HTMLToText(v.Snippet.Responsibility))
	return b.String()
}

// Vacancy renders a full vacancy for an LLM prompt. The HTML description
// is converted to text.
func Vacancy(v *hh.VacancyFull) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Вакансия: %s\n", v.Name)
	if v.Employer != nil {
		fmt.Fprintf(&b, "Компания: %s\n", v.Employer.Name)
	}
	if v.Experience != nil && v.Experience.Name != "" {
		fmt.Fprintf(&b, "Опыт: %s\n", v.Experience.Name)
	}
	if len(v.KeySkills) > 0 {
		skills := make([]string, 0, len(v.KeySkills))
		for _, s := range v.KeySkills {
			skills = append(skills, s.Name)
		}
		fmt.Fprintf(&b, "Ключевые навыки: %s\n", strings.Join(skills, ", "))
	}
	fmt.Fprintf(&b, "Описание:\n%s\n", HTMLToText(v.Description))
	return b.String()
}

// Resume renders a resume for the candidate blurb prompt. Empty sections
// are left out.
func Resume(r *hh.ResumeDetail) string {
	parts := []string{"Title: " + r.Title}

	if len(r.ProfessionalRoles) > 0 {
		roles := make([]string, 0, len(r.ProfessionalRoles))
		for _, p := range r.ProfessionalRoles {
			roles = append(roles, p.Name)
		}
		parts = append(parts, "Professional roles: "+strings.Join(roles, ", "))
	}

	if len(r.SkillSet) > 0 {
		parts = append(parts, "Skill set: "+strings.Join(r.SkillSet, ", "))
	}

	if r.TotalExperience != nil && r.TotalExperience.Months > 0 {
		months := r.TotalExperience.Months
		if years := months / 12; years > 0 {
			parts = append(parts, fmt.Sprintf("Total experience: %d years %d months", years, months%12))
		} else {
			parts = append(parts, fmt.Sprintf("Total experience: %d months", months))
		}
	}

	if len(r.Experience) > 0 {
		lines := make([]string, 0, len(r.Experience))
		for _, e := range r.Experience {
			lines = append(lines, fmt.Sprintf("- %s at %s (%s - %s)\n  %s",
				e.Position, or(e.Company, "-"), e.Start, or(e.End, "now"), e.Description))
		}
		parts = append(parts, "Experience:\n"+strings.Join(lines, "\n"))
	}

	if edu := r.Education; edu != nil {
		var lines []string
		for _, p := range edu.Primary {
			lines = append(lines, fmt.Sprintf("- %s, %s, %s",
				or(p.Organization, p.Name), or(p.Result, "-"), year(p.Year)))
		}
		for _, a := range edu.Additional {
			lines = append(lines, fmt.Sprintf("- Course: %s, %s, %s", a.Name, or(a.Organization, "-"), year(a.Year)))
		}
		for _, a := range edu.Attestation {
			lines = append(lines, fmt.Sprintf("- Attestation: %s, %s, %s", a.Name, or(a.Organization, "-"), year(a.Year)))
		}
		if len(lines) > 0 {
			parts = append(parts, "Education:\n"+strings.Join(lines, "\n"))
		}
	}

	if len(r.Language) > 0 {
		lines := make([]string, 0, len(r.Language))
		for _, l := range r.Language {
			lines = append(lines, fmt.Sprintf("- %s: %s", l.Name, l.Level.Name))
		}
		parts = append(parts, "Languages:\n"+strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n")
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func year(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}
