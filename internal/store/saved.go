package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"diyhub/internal/models"
)

// SavedStore handles the saved-projects relation between users and projects.
type SavedStore struct {
	db *sql.DB
}

// NewSavedStore creates a new SavedStore with the given database connection.
func NewSavedStore(db *sql.DB) *SavedStore {
	return &SavedStore{db: db}
}

// Toggle saves the project for the user, or removes it if already saved.
// Returns the new saved state.
func (s *SavedStore) Toggle(userID, projectID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		DELETE FROM saved_projects WHERE user_id = $1 AND project_id = $2
	`, userID, projectID)
	if err != nil {
		return false, fmt.Errorf("unsave project: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}

	if _, err := s.db.Exec(`
		INSERT INTO saved_projects (user_id, project_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, projectID); err != nil {
		return false, fmt.Errorf("save project: %w", err)
	}
	return true, nil
}

// IDs returns the set of project ids the user has saved.
func (s *SavedStore) IDs(userID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := s.db.Query(`
		SELECT project_id FROM saved_projects WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("saved ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan saved id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// ListProjects returns the user's saved projects, most recently saved first.
// Unpublished projects stay visible here: saving is a personal bookmark.
func (s *SavedStore) ListProjects(userID uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Query(`
		SELECT `+projectColumns+`
		FROM saved_projects sp
		JOIN projects p ON p.id = sp.project_id
		JOIN users u ON u.id = p.author_id
		WHERE sp.user_id = $1
		ORDER BY sp.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved projects: %w", err)
	}
	defer rows.Close()

	var items []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}
