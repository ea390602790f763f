package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/autojob/internal/types"
)

// FormatResumeText renders a resume as plain text for pasting into
// application forms.
func FormatResumeText(resume types.ResumeJSON) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n\n", resume.Summary)

	b.WriteString("SKILLS:\n")
	b.WriteString(strings.Join(resume.Skills, ", "))
	b.WriteString("\n\n")

	b.WriteString("EXPERIENCE:\n")
	for _, exp := range resume.Experience {
		fmt.Fprintf(&b, "\n%s at %s (%s)\n", exp.Role, exp.Company, exp.Duration)
		for _, ach := range exp.Achievements {
			fmt.Fprintf(&b, "  - %s\n", ach)
		}
	}

	b.WriteString("\n\nPROJECTS:\n")
	for _, proj := range resume.Projects {
		fmt.Fprintf(&b, "\n%s\n%s\nTechnologies: %s\n", proj.Name, proj.Description, strings.Join(proj.Technologies, ", "))
	}

	return b.String()
}

// BuildApplicationPackage renders the full materials bundle as a plain-text
// document the operator can file or attach.
func BuildApplicationPackage(job *types.JobRecord, profile *types.UserProfile, materials *types.ApplicationMaterials, now time.Time) string {
	var b strings.Builder

	b.WriteString("AUTOJOB APPLICATION PACKAGE\n")
	b.WriteString("===========================\n\n")
	fmt.Fprintf(&b, "Job: %s\n", job.Title)
	fmt.Fprintf(&b, "Company: %s\n", job.Company)
	fmt.Fprintf(&b, "Application URL: %s\n\n", job.ApplyURL)
	fmt.Fprintf(&b, "DATE: %s\n\n", now.Format("2006-01-02 15:04:05"))

	b.WriteString("---\n\nCOVER LETTER\n============\n\n")
	b.WriteString(materials.CoverLetter)
	b.WriteString("\n\n---\n\nRESUME\n======\n")
	b.WriteString(FormatResumeText(materials.Resume))

	b.WriteString("\n---\n\nCONTACT INFORMATION\n===================\n\n")
	fmt.Fprintf(&b, "Name: %s\n", profile.FullName)
	fmt.Fprintf(&b, "Email: %s\n", profile.Email)
	fmt.Fprintf(&b, "Phone: %s\n", profile.Phone)
	fmt.Fprintf(&b, "LinkedIn: %s\n", profile.LinkedIn)
	fmt.Fprintf(&b, "Portfolio: %s\n", profile.Portfolio)

	if materials.Report != nil {
		b.WriteString("\n---\n\nRESUME MUTATION REPORT\n======================\n\n")
		fmt.Fprintf(&b, "Track Used: %s\n", materials.Report.SelectedTrackName)
		fmt.Fprintf(&b, "ATS Score Estimate: %d%%\n", materials.Report.ATSScoreEstimate)
		fmt.Fprintf(&b, "Keywords Injected: %s\n", strings.Join(materials.Report.KeywordsInjected, ", "))
	}

	return b.String()
}
