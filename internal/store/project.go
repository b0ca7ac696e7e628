package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"diyhub/internal/models"
)

// ProjectStore handles all project-related database operations. The child
// collections of a project travel as JSONB columns inside the project row.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a new ProjectStore with the given database connection.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// projectColumns is the select list shared by every project query.
// The author's username is joined in from users.
const projectColumns = `
	p.id, p.title, p.description, p.category, p.difficulty, p.estimated_time,
	p.materials, p.tools, p.steps, p.images, p.tags, p.likes, p.comments, p.completions,
	p.author_id, u.username, p.total_cost, p.is_published, p.is_featured, p.views,
	p.created_at, p.updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProject reads one project row, unmarshalling its JSONB collections.
func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var materials, tools, steps, images, tags, likes, comments, completions []byte

	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Category, &p.Difficulty, &p.EstimatedTime,
		&materials, &tools, &steps, &images, &tags, &likes, &comments, &completions,
		&p.AuthorID, &p.AuthorName, &p.TotalCost, &p.IsPublished, &p.IsFeatured, &p.Views,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for name, dst := range map[string]struct {
		raw []byte
		out any
	}{
		"materials":   {materials, &p.Materials},
		"tools":       {tools, &p.Tools},
		"steps":       {steps, &p.Steps},
		"images":      {images, &p.Images},
		"tags":        {tags, &p.Tags},
		"likes":       {likes, &p.Likes},
		"comments":    {comments, &p.Comments},
		"completions": {completions, &p.Completions},
	} {
		if err := json.Unmarshal(dst.raw, dst.out); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", name, err)
		}
	}
	return p, nil
}

// marshalCollections converts the embedded collections to JSONB payloads
// in the order used by the insert and update statements. Nil slices are
// stored as empty arrays.
func marshalCollections(p *models.Project) (materials, tools, steps, images, tags []byte, err error) {
	if p.Materials == nil {
		p.Materials = []models.Material{}
	}
	if p.Tools == nil {
		p.Tools = []models.Tool{}
	}
	if p.Steps == nil {
		p.Steps = []models.Step{}
	}
	if p.Images == nil {
		p.Images = []models.Image{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	for _, m := range []struct {
		name string
		v    any
		out  *[]byte
	}{
		{"materials", p.Materials, &materials},
		{"tools", p.Tools, &tools},
		{"steps", p.Steps, &steps},
		{"images", p.Images, &images},
		{"tags", p.Tags, &tags},
	} {
		b, merr := json.Marshal(m.v)
		if merr != nil {
			err = fmt.Errorf("marshal %s: %w", m.name, merr)
			return
		}
		*m.out = b
	}
	return
}

// Create inserts a new project. TotalCost is recomputed from the materials
// before writing; whatever the caller put there is discarded.
func (s *ProjectStore) Create(p *models.Project) (*models.Project, error) {
	p.RecalcTotalCost()

	materials, tools, steps, images, tags, err := marshalCollections(p)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`
		INSERT INTO projects (title, description, category, difficulty, estimated_time,
		                      materials, tools, steps, images, tags,
		                      author_id, total_cost, is_published, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, views, created_at, updated_at
	`, p.Title, p.Description, p.Category, p.Difficulty, p.EstimatedTime,
		materials, tools, steps, images, tags,
		p.AuthorID, p.TotalCost, p.IsPublished, p.IsFeatured,
	).Scan(&p.ID, &p.Views, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	p.Likes = []uuid.UUID{}
	p.Comments = []models.Comment{}
	p.Completions = []models.Completion{}
	return p, nil
}

// FindByID retrieves a project by id with the author's username joined in.
// Returns nil if not found.
func (s *ProjectStore) FindByID(id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(`
		SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return p, nil
}

// Update replaces the author-editable fields of a project. Likes, comments,
// completions and the view counter are not touched; they change only through
// their own operations. TotalCost is recomputed before writing.
func (s *ProjectStore) Update(p *models.Project) error {
	p.RecalcTotalCost()

	materials, tools, steps, images, tags, err := marshalCollections(p)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE projects SET
			title = $1, description = $2, category = $3, difficulty = $4,
			estimated_time = $5, materials = $6, tools = $7, steps = $8,
			images = $9, tags = $10, total_cost = $11, is_published = $12,
			is_featured = $13, updated_at = NOW()
		WHERE id = $14
	`, p.Title, p.Description, p.Category, p.Difficulty,
		p.EstimatedTime, materials, tools, steps,
		images, tags, p.TotalCost, p.IsPublished,
		p.IsFeatured, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a project permanently.
func (s *ProjectStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter by one. The increment happens in
// SQL so concurrent fetches cannot lose updates.
func (s *ProjectStore) IncrementViews(id uuid.UUID) (int, error) {
	var views int
	err := s.db.QueryRow(`
		UPDATE projects SET views = views + 1 WHERE id = $1 RETURNING views
	`, id).Scan(&views)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return views, nil
}

// ToggleLike adds the user to the project's likes, or removes them if
// already present. The row is locked for the duration of the transaction
// so concurrent toggles from the same user cannot both observe the same
// membership state.
func (s *ProjectStore) ToggleLike(projectID, userID uuid.UUID) (liked bool, count int, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, 0, fmt.Errorf("toggle like begin: %w", err)
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRow(`SELECT likes FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, fmt.Errorf("toggle like select: %w", err)
	}

	var likes []uuid.UUID
	if err := json.Unmarshal(raw, &likes); err != nil {
		return false, 0, fmt.Errorf("unmarshal likes: %w", err)
	}

	liked = true
	next := make([]uuid.UUID, 0, len(likes)+1)
	for _, id := range likes {
		if id == userID {
			liked = false // already present — this toggle removes
			continue
		}
		next = append(next, id)
	}
	if liked {
		next = append(next, userID)
	}

	payload, err := json.Marshal(next)
	if err != nil {
		return false, 0, fmt.Errorf("marshal likes: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE projects SET likes = $1, updated_at = NOW() WHERE id = $2
	`, payload, projectID); err != nil {
		return false, 0, fmt.Errorf("toggle like update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("toggle like commit: %w", err)
	}
	return liked, len(next), nil
}

// AddComment appends a comment to the project under a row lock and returns
// the stored comment.
func (s *ProjectStore) AddComment(projectID uuid.UUID, user *models.User, text string) (*models.Comment, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("add comment begin: %w", err)
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRow(`SELECT comments FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("add comment select: %w", err)
	}

	var comments []models.Comment
	if err := json.Unmarshal(raw, &comments); err != nil {
		return nil, fmt.Errorf("unmarshal comments: %w", err)
	}

	comment := models.Comment{
		ID:        uuid.New(),
		UserID:    user.ID,
		Username:  user.Username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Replies:   []models.Reply{},
	}
	comments = append(comments, comment)

	payload, err := json.Marshal(comments)
	if err != nil {
		return nil, fmt.Errorf("marshal comments: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE projects SET comments = $1, updated_at = NOW() WHERE id = $2
	`, payload, projectID); err != nil {
		return nil, fmt.Errorf("add comment update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("add comment commit: %w", err)
	}
	return &comment, nil
}
