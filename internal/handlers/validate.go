package handlers

import (
	"strings"
	"unicode/utf8"

	"diyhub/internal/models"
)

// Validation limits for project and comment fields, matching the
// published document schema.
const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
	maxCommentLen     = 500
	maxReplyLen       = 300
	maxReviewLen      = 300
)

// validateProject checks a fully-merged project document and returns the
// first problem found, or "" when the document is valid. Step numbers are
// deliberately not checked for uniqueness or contiguity.
func validateProject(p *models.Project) string {
	if strings.TrimSpace(p.Title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(p.Title) > maxTitleLen {
		return "Title must be at most 100 characters."
	}
	if strings.TrimSpace(p.Description) == "" {
		return "Description is required."
	}
	if utf8.RuneCountInString(p.Description) > maxDescriptionLen {
		return "Description must be at most 500 characters."
	}
	if !models.ValidCategory(p.Category) {
		return "Unknown category."
	}
	if !models.ValidDifficulty(p.Difficulty) {
		return "Difficulty must be Beginner, Intermediate or Advanced."
	}
	if strings.TrimSpace(p.EstimatedTime) == "" {
		return "Estimated time is required."
	}

	for _, m := range p.Materials {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Quantity) == "" {
			return "Every material needs a name and a quantity."
		}
		if m.EstimatedCost != nil && *m.EstimatedCost < 0 {
			return "Material cost cannot be negative."
		}
	}
	for _, tool := range p.Tools {
		if strings.TrimSpace(tool.Name) == "" {
			return "Every tool needs a name."
		}
	}
	for _, s := range p.Steps {
		if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Description) == "" {
			return "Every step needs a title and a description."
		}
	}
	for _, img := range p.Images {
		if strings.TrimSpace(img.URL) == "" {
			return "Every image needs a URL."
		}
	}
	return ""
}

// validateComment trims and checks comment text, returning the cleaned
// text or a problem message.
func validateComment(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "Comment text is required"
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "", "Comment must be at most 500 characters."
	}
	return text, ""
}
