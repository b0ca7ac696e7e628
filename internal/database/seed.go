package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"diyhub/internal/models"
)

// Seed populates the database with initial development data: a demo user
// and a handful of sample projects across categories. It is a no-op when
// users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var authorID uuid.UUID
	err = db.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, "maker", "maker@diyhub.local", string(hash)).Scan(&authorID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	for _, p := range sampleProjects() {
		p.AuthorID = authorID
		p.RecalcTotalCost()
		if err := insertSeedProject(db, p); err != nil {
			return err
		}
	}

	slog.Info("database seeded with demo data",
		"email", "maker@diyhub.local",
		"password", "password",
	)
	return nil
}

func insertSeedProject(db *sql.DB, p *models.Project) error {
	cols := map[string]any{}
	for name, v := range map[string]any{
		"materials": p.Materials,
		"tools":     p.Tools,
		"steps":     p.Steps,
		"images":    p.Images,
		"tags":      p.Tags,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("seed marshal %s: %w", name, err)
		}
		cols[name] = b
	}

	_, err := db.Exec(`
		INSERT INTO projects (title, description, category, difficulty, estimated_time,
		                      materials, tools, steps, images, tags,
		                      author_id, total_cost, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, p.Title, p.Description, p.Category, p.Difficulty, p.EstimatedTime,
		cols["materials"], cols["tools"], cols["steps"], cols["images"], cols["tags"],
		p.AuthorID, p.TotalCost, p.IsFeatured,
	)
	if err != nil {
		return fmt.Errorf("seed insert project %q: %w", p.Title, err)
	}
	return nil
}

func cost(v float64) *float64 { return &v }

// sampleProjects returns the development seed set.
func sampleProjects() []*models.Project {
	return []*models.Project{
		{
			Title:         "Rustic Wooden Coffee Table",
			Description:   "Build a beautiful rustic coffee table using reclaimed wood. Perfect for adding a cozy touch to your living room.",
			Category:      "Woodworking",
			Difficulty:    models.DifficultyIntermediate,
			EstimatedTime: "1-2 days",
			Materials: []models.Material{
				{Name: "Reclaimed wood planks", Quantity: "8 pieces", EstimatedCost: cost(50)},
				{Name: "Wood screws", Quantity: "1 box", EstimatedCost: cost(10)},
				{Name: "Wood stain", Quantity: "1 bottle", EstimatedCost: cost(15)},
				{Name: "Sandpaper", Quantity: "Various grits", EstimatedCost: cost(12)},
			},
			Tools: []models.Tool{
				{Name: "Circular saw", Required: true},
				{Name: "Drill", Required: true},
				{Name: "Sander", Required: false},
				{Name: "Measuring tape", Required: true},
			},
			Steps: []models.Step{
				{StepNumber: 1, Title: "Cut the wood to size", Description: "Measure and cut all wooden pieces according to the plan dimensions.", Tips: []string{"Always measure twice, cut once", "Use proper safety equipment"}},
				{StepNumber: 2, Title: "Sand all pieces", Description: "Sand all wooden pieces starting with coarse grit and finishing with fine grit.", Tips: []string{"Sand with the grain", "Clean dust between grits"}},
				{StepNumber: 3, Title: "Assemble the frame", Description: "Join the wooden pieces together using wood screws and ensure everything is square.", Tips: []string{"Pre-drill holes to prevent splitting", "Use clamps for better alignment"}},
				{StepNumber: 4, Title: "Apply finish", Description: "Apply wood stain evenly and let dry completely between coats.", Tips: []string{"Use thin coats", "Work in well-ventilated area"}},
			},
			Images: []models.Image{
				{URL: "https://images.unsplash.com/photo-1506439773649-6e0eb8cfb237?w=800", Caption: "Finished coffee table", IsMainImage: true},
			},
			Tags:       []string{"rustic", "furniture", "living room", "beginner-friendly"},
			IsFeatured: true,
		},
		{
			Title:         "Mason Jar Herb Garden",
			Description:   "Create a beautiful hanging herb garden using mason jars. Perfect for small spaces and beginners.",
			Category:      "Garden & Outdoor",
			Difficulty:    models.DifficultyBeginner,
			EstimatedTime: "2-3 hours",
			Materials: []models.Material{
				{Name: "Mason jars", Quantity: "6 pieces", EstimatedCost: cost(18)},
				{Name: "Hose clamps", Quantity: "6 pieces", EstimatedCost: cost(12)},
				{Name: "Wooden board", Quantity: "1 piece", EstimatedCost: cost(15)},
				{Name: "Potting soil", Quantity: "1 bag", EstimatedCost: cost(8)},
				{Name: "Herb seeds", Quantity: "Various", EstimatedCost: cost(20)},
			},
			Tools: []models.Tool{
				{Name: "Drill", Required: true},
				{Name: "Screwdriver", Required: true},
				{Name: "Level", Required: true},
			},
			Steps: []models.Step{
				{StepNumber: 1, Title: "Prepare the mounting board", Description: "Cut and sand the wooden board to desired length."},
				{StepNumber: 2, Title: "Attach hose clamps", Description: "Secure hose clamps to the board at regular intervals."},
				{StepNumber: 3, Title: "Mount the board", Description: "Securely mount the board to wall or fence."},
				{StepNumber: 4, Title: "Plant herbs", Description: "Fill jars with soil and plant your chosen herbs.", Tips: []string{"Choose herbs that don't require deep roots", "Ensure proper drainage"}},
			},
			Images: []models.Image{
				{URL: "https://images.unsplash.com/photo-1416879595882-3373a0480b5b?w=800", Caption: "Hanging herb garden", IsMainImage: true},
			},
			Tags: []string{"herbs", "garden", "mason jars", "small space"},
		},
		{
			Title:         "Homemade Sourdough Bread",
			Description:   "Learn to bake artisan sourdough bread from scratch, starting with your own starter culture.",
			Category:      "Kitchen & Food",
			Difficulty:    models.DifficultyAdvanced,
			EstimatedTime: "1 week",
			Materials: []models.Material{
				{Name: "Bread flour", Quantity: "2 kg", EstimatedCost: cost(6)},
				{Name: "Whole wheat flour", Quantity: "500 g", EstimatedCost: cost(3)},
				{Name: "Sea salt", Quantity: "1 box", EstimatedCost: cost(4)},
			},
			Tools: []models.Tool{
				{Name: "Dutch oven", Required: true},
				{Name: "Kitchen scale", Required: true},
				{Name: "Banneton basket", Required: false},
			},
			Steps: []models.Step{
				{StepNumber: 1, Title: "Create sourdough starter", Description: "Mix flour and water daily for a week until the starter is active."},
				{StepNumber: 2, Title: "Mix the dough", Description: "Combine starter, flour, water and salt, then rest."},
				{StepNumber: 3, Title: "Bulk fermentation", Description: "Let the dough rise with periodic stretch and folds."},
				{StepNumber: 4, Title: "Shape and final proof", Description: "Shape the loaf and proof overnight in the fridge."},
				{StepNumber: 5, Title: "Bake the bread", Description: "Score and bake in preheated Dutch oven.", Tips: []string{"Preheat Dutch oven to 450°F", "Steam creates crispy crust"}},
			},
			Images: []models.Image{
				{URL: "https://images.unsplash.com/photo-1509440159596-0249088772ff?w=800", Caption: "Fresh sourdough bread", IsMainImage: true},
			},
			Tags: []string{"sourdough", "bread", "baking", "fermentation"},
		},
	}
}
