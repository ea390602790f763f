// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "JobPosting")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// JobPostingSchema returns the extraction schema for raw job postings.
// Extracts the title, company, location, required skills, and a condensed
// description alongside hiring-intent signals.
func JobPostingSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobPosting",
		Description: `You are an expert job posting parser and hiring-intent analyst.
Your task is to extract structured fields from a raw job posting and judge whether it represents a genuine hiring effort.
IMPORTANT: Preserve the exact wording for title, company, and location.
For intent, weigh signals such as posting age, vagueness of the role, mismatched seniority, and requests for unusual personal data.`,
		Fields: []SchemaField{
			{
				Name:        "title",
				Type:        "\"string\"",
				Description: "Job title exactly as posted",
				Required:    true,
			},
			{
				Name:        "company",
				Type:        "\"string\"",
				Description: "Hiring company name",
				Required:    true,
			},
			{
				Name:        "location",
				Type:        "\"string\"",
				Description: "Location or 'Remote'",
				Required:    false,
			},
			{
				Name:        "skills",
				Type:        "[\"string\"]",
				Description: "Concrete technical skills required - copy each verbatim",
				Required:    true,
			},
			{
				Name:        "description",
				Type:        "\"string\"",
				Description: "Condensed posting body covering responsibilities and requirements",
				Required:    true,
			},
			{
				Name:        "intent_signals",
				Type:        "[{\"type\": \"string\", \"confidence\": number, \"reasoning\": \"string\"}]",
				Description: "Hiring-intent classification; type is one of Real Hire, Ghost Job, Data Harvesting, Training/Upskilling Scam, Evergreen/Pipeline",
				Required:    false,
			},
		},
	}
}

// IntentSignalsSchema returns the extraction schema for standalone
// hiring-intent analysis of an already-structured job record.
func IntentSignalsSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "IntentSignals",
		Description: `You are a hiring-intent analyst. Classify whether this job posting represents a genuine hiring effort.
Consider posting freshness, specificity of the role, and whether the company is plausibly hiring at this seniority.`,
		Fields: []SchemaField{
			{
				Name:        "intent_signals",
				Type:        "[{\"type\": \"string\", \"confidence\": number, \"reasoning\": \"string\"}]",
				Description: "One or more signals; type is one of Real Hire, Ghost Job, Data Harvesting, Training/Upskilling Scam, Evergreen/Pipeline; confidence is 0-1",
				Required:    true,
			},
		},
	}
}
