package store

import (
	"testing"

	"github.com/google/uuid"

	"diyhub/internal/models"
)

func cost(v float64) *float64 { return &v }

func TestProjectCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	author := testUser(t, db)

	created := testProject(t, db, author, func(p *models.Project) {
		p.Materials = []models.Material{
			{Name: "Plywood", Quantity: "2 sheets", EstimatedCost: cost(50)},
			{Name: "Screws", Quantity: "1 box", EstimatedCost: cost(10)},
			{Name: "Stain", Quantity: "1 can", EstimatedCost: cost(15)},
			{Name: "Sandpaper", Quantity: "5 sheets", EstimatedCost: cost(12)},
		}
		p.Tags = []string{"rustic", "furniture"}
		p.TotalCost = 12345 // client-sent value must be discarded
	})

	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.TotalCost != 87 {
		t.Errorf("total cost: got %v, want 87 (recomputed from materials)", created.TotalCost)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected project, got nil")
	}
	if found.AuthorID != author.ID {
		t.Errorf("author: got %s, want %s", found.AuthorID, author.ID)
	}
	if found.AuthorName != author.Username {
		t.Errorf("author name: got %q, want %q", found.AuthorName, author.Username)
	}
	if len(found.Materials) != 4 {
		t.Errorf("materials: got %d, want 4", len(found.Materials))
	}
	if found.Views != 0 {
		t.Errorf("views: got %d, want 0", found.Views)
	}
}

func TestProjectFindByIDMissing(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)

	p, err := s.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if p != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestProjectUpdateRecomputesTotalCost(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	author := testUser(t, db)
	created := testProject(t, db, author, nil)

	created.Title = "Updated Title"
	created.Materials = []models.Material{
		{Name: "Paint", Quantity: "1 can", EstimatedCost: cost(20)},
		{Name: "Brushes", Quantity: "2"},
	}
	if err := s.Update(created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Title != "Updated Title" {
		t.Errorf("title: got %q, want %q", found.Title, "Updated Title")
	}
	if found.TotalCost != 20 {
		t.Errorf("total cost: got %v, want 20", found.TotalCost)
	}
}

func TestProjectUpdateMissing(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)

	p := &models.Project{ID: uuid.New(), Title: "x", Description: "x",
		Category: "Other", Difficulty: models.DifficultyBeginner, EstimatedTime: "1 hour"}
	if err := s.Update(p); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectDelete(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	author := testUser(t, db)
	created := testProject(t, db, author, nil)

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found != nil {
		t.Error("expected project to be gone")
	}

	if err := s.Delete(created.ID); err != ErrNotFound {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestIncrementViews(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	author := testUser(t, db)
	created := testProject(t, db, author, nil)

	for want := 1; want <= 3; want++ {
		views, err := s.IncrementViews(created.ID)
		if err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
		if views != want {
			t.Errorf("views: got %d, want %d", views, want)
		}
	}

	if _, err := s.IncrementViews(uuid.New()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestToggleLikePairwiseIdempotent(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	author := testUser(t, db)
	liker := testUser(t, db)
	created := testProject(t, db, author, nil)

	liked, count, err := s.ToggleLike(created.ID, liker.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !liked || count != 1 {
		t.Errorf("first toggle: got liked=%v count=%d, want true 1", liked, count)
	}

	liked, count, err = s.ToggleLike(created.ID, liker.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if liked || count != 0 {
		t.Errorf("second toggle: got liked=%v count=%d, want false 0", liked, count)
	}

	if _, _, err := s.ToggleLike(uuid.New(), liker.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown project, got %v", err)
	}
}

func TestAddComment(t *testing.T) {
	db := testDB(t)
	s := NewProjectStore(db)
	author := testUser(t, db)
	commenter := testUser(t, db)
	created := testProject(t, db, author, nil)

	comment, err := s.AddComment(created.ID, commenter, "Great build!")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.Username != commenter.Username {
		t.Errorf("username: got %q, want %q", comment.Username, commenter.Username)
	}
	if comment.Text != "Great build!" {
		t.Errorf("text: got %q, want %q", comment.Text, "Great build!")
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.CommentCount() != 1 {
		t.Errorf("comment count: got %d, want 1", found.CommentCount())
	}
	if len(found.Comments[0].Replies) != 0 {
		t.Error("expected empty replies on a new comment")
	}

	if _, err := s.AddComment(uuid.New(), commenter, "hi"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown project, got %v", err)
	}
}

func TestSavedToggleAndList(t *testing.T) {
	db := testDB(t)
	saved := NewSavedStore(db)
	author := testUser(t, db)
	saver := testUser(t, db)
	created := testProject(t, db, author, nil)

	on, err := saved.Toggle(saver.ID, created.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !on {
		t.Error("first toggle should save")
	}

	ids, err := saved.IDs(saver.ID)
	if err != nil {
		t.Fatalf("IDs: %v", err)
	}
	if !ids[created.ID] {
		t.Error("expected project in saved set")
	}

	projects, err := saved.ListProjects(saver.ID)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != created.ID {
		t.Errorf("saved list: got %d items, want the saved project", len(projects))
	}

	off, err := saved.Toggle(saver.ID, created.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if off {
		t.Error("second toggle should unsave")
	}
}
