// Package observability provides formatted output utilities for verbose CLI
// mode and the append-only activity journal.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/autojob/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobRecord outputs a human-readable summary of an extracted job record.
func (p *Printer) PrintJobRecord(job *types.JobRecord) {
	if job == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:    %s\n", job.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", job.Location))
	}
	sb.WriteString(fmt.Sprintf("Platform: %s\n", job.Platform))

	if len(job.Skills) > 0 {
		sb.WriteString("\nRequired Skills:\n")
		count := min(len(job.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", job.Skills[i]))
		}
		if len(job.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(job.Skills)-maxItemsToShow))
		}
	}

	if job.Intent != nil {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Intent:   %s (%.0f%%)\n", job.Intent.Type, job.Intent.Confidence*100))
	}

	p.printBox("EXTRACTED JOB RECORD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchResult outputs the match score against the candidate profile.
func (p *Printer) PrintMatchResult(match *types.MatchResult, threshold int) {
	if match == nil {
		return
	}

	var sb strings.Builder
	verdict := "BELOW THRESHOLD"
	if match.Score >= threshold {
		verdict = "QUALIFIED"
	}
	sb.WriteString(fmt.Sprintf("Score:     %d / 100 (threshold %d)\n", match.Score, threshold))
	sb.WriteString(fmt.Sprintf("Verdict:   %s\n", verdict))

	reasoning := match.Reasoning
	if len(reasoning) > 100 {
		reasoning = reasoning[:97] + "..."
	}
	sb.WriteString(fmt.Sprintf("Reasoning: %s\n", reasoning))

	if len(match.MissingSkills) > 0 {
		sb.WriteString("\nMissing Skills:\n")
		count := min(len(match.MissingSkills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", match.MissingSkills[i]))
		}
		if len(match.MissingSkills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(match.MissingSkills)-maxItemsToShow))
		}
	}

	p.printBox("MATCH RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMutationReport outputs the resume tailoring report.
func (p *Printer) PrintMutationReport(report *types.MutationReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Track:     %s\n", report.SelectedTrackName))
	sb.WriteString(fmt.Sprintf("ATS Score: %d / 100\n", report.ATSScoreEstimate))

	if len(report.KeywordsInjected) > 0 {
		sb.WriteString("\nKeywords Injected:\n")
		count := min(len(report.KeywordsInjected), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", report.KeywordsInjected[i]))
		}
		if len(report.KeywordsInjected) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.KeywordsInjected)-maxItemsToShow))
		}
	}

	if len(report.MirroredPhrases) > 0 {
		sb.WriteString("\nMirrored Phrases:\n")
		count := min(len(report.MirroredPhrases), 3)
		for i := 0; i < count; i++ {
			phrase := report.MirroredPhrases[i].Mirrored
			if len(phrase) > 45 {
				phrase = phrase[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", phrase))
		}
		if len(report.MirroredPhrases) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.MirroredPhrases)-3))
		}
	}

	p.printBox("RESUME MUTATION REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStrategyPlan outputs the active strategy plan.
func (p *Printer) PrintStrategyPlan(plan *types.StrategyPlan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	goal := plan.Goal
	if len(goal) > 48 {
		goal = goal[:45] + "..."
	}
	sb.WriteString(fmt.Sprintf("Goal:      %s\n", goal))
	sb.WriteString(fmt.Sprintf("Quota:     %d / day\n", plan.DailyQuota))
	sb.WriteString(fmt.Sprintf("Intensity: %s\n", plan.Intensity))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", plan.Status))

	if len(plan.TargetRoles) > 0 {
		sb.WriteString("\nTarget Roles:\n")
		count := min(len(plan.TargetRoles), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", plan.TargetRoles[i]))
		}
		if len(plan.TargetRoles) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(plan.TargetRoles)-3))
		}
	}

	if len(plan.Platforms) > 0 {
		sb.WriteString(fmt.Sprintf("\nPlatforms: %s\n", strings.Join(plan.Platforms, ", ")))
	}

	p.printBox("STRATEGY PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRiskState outputs the current risk shield state.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRiskState(state *types.RiskState) {
	if state == nil {
		return
	}

	if state.Level == types.RiskLow && !state.Locked {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ RISK LEVEL LOW")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Level:        %s\n", state.Level))
	if state.Locked {
		sb.WriteString("Lock:         ⚠ ENGAGED\n")
	} else {
		sb.WriteString("Lock:         disengaged\n")
	}
	sb.WriteString(fmt.Sprintf("CAPTCHAs:     %d\n", state.CaptchaCount))
	sb.WriteString(fmt.Sprintf("DOM changes:  %t\n", state.DOMChangesDetected))
	sb.WriteString(fmt.Sprintf("IP repute:    %d / 100\n", state.IPReputation))

	p.printBox("RISK SHIELD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCommand outputs the interpreted command.
func (p *Printer) PrintCommand(cmd *types.CommandResult) {
	if cmd == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Action: %s\n", cmd.Action))
	if cmd.Goal != "" {
		goal := cmd.Goal
		if len(goal) > 48 {
			goal = goal[:45] + "..."
		}
		sb.WriteString(fmt.Sprintf("Goal:   %s\n", goal))
	}
	if cmd.Filters != nil {
		if cmd.Filters.Role != "" {
			sb.WriteString(fmt.Sprintf("Role:   %s\n", cmd.Filters.Role))
		}
		if cmd.Filters.Location != "" {
			sb.WriteString(fmt.Sprintf("Where:  %s\n", cmd.Filters.Location))
		}
	}
	if cmd.Limits != nil && cmd.Limits.MaxApplications > 0 {
		sb.WriteString(fmt.Sprintf("Cap:    %d applications\n", cmd.Limits.MaxApplications))
	}
	if cmd.Action == types.ActionBlocked && cmd.Reason != "" {
		reason := cmd.Reason
		if len(reason) > 48 {
			reason = reason[:45] + "..."
		}
		sb.WriteString(fmt.Sprintf("Reason: %s\n", reason))
	}

	title := "INTERPRETED COMMAND"
	if cmd.Action == types.ActionBlocked {
		title = "⚠ COMMAND BLOCKED"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}
