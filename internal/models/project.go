// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Difficulty classifies how demanding a project is for the builder.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Categories is the fixed set of project categories. Order matters:
// the categories list endpoint returns them in this order.
var Categories = []string{
	"Woodworking",
	"Home Decor",
	"Crafts & Sewing",
	"Garden & Outdoor",
	"Electronics",
	"Kitchen & Food",
	"Furniture",
	"Art & Painting",
	"Jewelry",
	"Other",
}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// ValidDifficulty reports whether d is a known difficulty level.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Material is one item on a project's shopping list. EstimatedCost is
// optional; a missing cost counts as zero toward the project total.
type Material struct {
	Name          string   `json:"name"`
	Quantity      string   `json:"quantity"`
	EstimatedCost *float64 `json:"estimatedCost,omitempty"`
}

// Tool is a piece of equipment a project calls for.
type Tool struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Step is one instruction in a project's build sequence. StepNumber is
// caller-supplied and not checked for uniqueness or contiguity.
type Step struct {
	StepNumber  int      `json:"stepNumber"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Tips        []string `json:"tips,omitempty"`
}

// Image is a project photo. URLs are opaque strings; the backend never
// touches the files themselves.
type Image struct {
	URL         string `json:"url"`
	Caption     string `json:"caption,omitempty"`
	IsMainImage bool   `json:"isMainImage"`
}

// Reply is a nested answer to a comment.
type Reply struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a top-level comment on a project, owned by the project
// document along with its replies.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Reply   `json:"replies"`
}

// Completion records that a user finished building a project. Rating and
// review are optional.
type Completion struct {
	UserID      *uuid.UUID `json:"userId,omitempty"`
	CompletedAt time.Time  `json:"completedAt"`
	Rating      *int       `json:"rating,omitempty"`
	Review      string     `json:"review,omitempty"`
	Images      []string   `json:"images,omitempty"`
}

// Project is a shared DIY how-to post. The child collections (materials,
// tools, steps, images, comments, completions, likes, tags) live inside
// the project row as JSONB: they have no life of their own outside their
// parent.
type Project struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Category      string       `json:"category"`
	Difficulty    Difficulty   `json:"difficulty"`
	EstimatedTime string       `json:"estimatedTime"`
	Materials     []Material   `json:"materials"`
	Tools         []Tool       `json:"tools"`
	Steps         []Step       `json:"steps"`
	Images        []Image      `json:"images"`
	AuthorID      uuid.UUID    `json:"authorId"`
	AuthorName    string       `json:"authorName,omitempty"` // joined from users, not stored
	Tags          []string     `json:"tags"`
	Likes         []uuid.UUID  `json:"likes"`
	Comments      []Comment    `json:"comments"`
	Completions   []Completion `json:"completions"`
	TotalCost     float64      `json:"totalCost"`
	IsPublished   bool         `json:"isPublished"`
	IsFeatured    bool         `json:"isFeatured"`
	Views         int          `json:"views"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// RecalcTotalCost recomputes TotalCost as the sum of material costs,
// treating a missing cost as zero. Called on every save; whatever the
// client sent for totalCost is overwritten.
func (p *Project) RecalcTotalCost() {
	var total float64
	for _, m := range p.Materials {
		if m.EstimatedCost != nil {
			total += *m.EstimatedCost
		}
	}
	p.TotalCost = total
}

// LikeCount returns the number of users who liked the project.
func (p *Project) LikeCount() int { return len(p.Likes) }

// CommentCount returns the number of top-level comments.
func (p *Project) CommentCount() int { return len(p.Comments) }

// CompletionCount returns the number of recorded completions.
func (p *Project) CompletionCount() int { return len(p.Completions) }

// AverageRating returns the mean of rated completions rounded to one
// decimal place, or 0 when no completion carries a rating.
func (p *Project) AverageRating() float64 {
	var sum, n int
	for _, c := range p.Completions {
		if c.Rating != nil {
			sum += *c.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}

// LikedBy reports whether the given user has liked the project.
func (p *Project) LikedBy(userID uuid.UUID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
