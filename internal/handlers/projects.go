package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"diyhub/internal/cache"
	"diyhub/internal/middleware"
	"diyhub/internal/models"
	"diyhub/internal/store"
)

// Projects groups all project-related HTTP handlers.
type Projects struct {
	projects *store.ProjectStore
	saved    *store.SavedStore
	users    *store.UserStore
	cache    *cache.ResponseCache
}

// NewProjects creates a new Projects handler group. cache may be nil.
func NewProjects(projects *store.ProjectStore, saved *store.SavedStore, users *store.UserStore, rc *cache.ResponseCache) *Projects {
	return &Projects{projects: projects, saved: saved, users: users, cache: rc}
}

// projectView is a project as serialized to clients: the stored document
// plus derived counts, the author summary, and the per-viewer flags.
type projectView struct {
	models.Project
	Author          models.Summary `json:"author"`
	LikeCount       int            `json:"likeCount"`
	CommentCount    int            `json:"commentCount"`
	CompletionCount int            `json:"completionCount"`
	AverageRating   float64        `json:"averageRating"`
	IsLiked         bool           `json:"isLiked"`
	IsSaved         bool           `json:"isSaved"`
	IsAuthor        bool           `json:"isAuthor,omitempty"`
}

// viewOf annotates a project for the requesting user. savedIDs may be nil
// for unauthenticated requests.
func viewOf(p *models.Project, user *models.User, savedIDs map[uuid.UUID]bool) projectView {
	v := projectView{
		Project:         *p,
		Author:          models.Summary{ID: p.AuthorID, Username: p.AuthorName},
		LikeCount:       p.LikeCount(),
		CommentCount:    p.CommentCount(),
		CompletionCount: p.CompletionCount(),
		AverageRating:   p.AverageRating(),
	}
	if user != nil {
		v.IsLiked = p.LikedBy(user.ID)
		v.IsSaved = savedIDs[p.ID]
	}
	return v
}

// savedIDsFor loads the viewer's saved-project set, or nil when
// unauthenticated.
func (h *Projects) savedIDsFor(user *models.User) (map[uuid.UUID]bool, error) {
	if user == nil {
		return nil, nil
	}
	return h.saved.IDs(user.ID)
}

// feedResponse is the paginated listing envelope.
type feedResponse struct {
	Projects      []projectView `json:"projects"`
	CurrentPage   int           `json:"currentPage"`
	TotalPages    int           `json:"totalPages"`
	TotalProjects int           `json:"totalProjects"`
	HasNextPage   bool          `json:"hasNextPage"`
	HasPrevPage   bool          `json:"hasPrevPage"`
	Category      string        `json:"category,omitempty"`
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// filterFromQuery builds the feed filter from request query parameters.
func filterFromQuery(r *http.Request) store.ListFilter {
	q := r.URL.Query()
	return store.ListFilter{
		Category:     q.Get("category"),
		Difficulty:   q.Get("difficulty"),
		FeaturedOnly: q.Get("featured") == "true",
		Search:       q.Get("search"),
		SortBy:       q.Get("sortBy"),
		SortOrder:    q.Get("sortOrder"),
		Page:         queryInt(r, "page", 1),
		Limit:        queryInt(r, "limit", store.DefaultPageSize),
	}
}

// listWith runs the feed query and writes the paginated envelope. The
// filter is normalized up front so the envelope arithmetic uses the same
// effective page and limit as the query.
func (h *Projects) listWith(w http.ResponseWriter, r *http.Request, f store.ListFilter, category string) {
	user := middleware.UserFromCtx(r.Context())

	f.Normalize()
	items, total, err := h.projects.List(f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	savedIDs, err := h.savedIDsFor(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(f.Limit)))

	views := make([]projectView, 0, len(items))
	for i := range items {
		views = append(views, viewOf(&items[i], user, savedIDs))
	}

	writeJSON(w, http.StatusOK, feedResponse{
		Projects:      views,
		CurrentPage:   f.Page,
		TotalPages:    totalPages,
		TotalProjects: total,
		HasNextPage:   f.Page < totalPages,
		HasPrevPage:   f.Page > 1,
		Category:      category,
	})
}

// List serves the feed: GET /projects with filter, search, sort and
// pagination parameters.
func (h *Projects) List(w http.ResponseWriter, r *http.Request) {
	h.listWith(w, r, filterFromQuery(r), "")
}

// ByCategory serves GET /projects/category/{category}: the feed with the
// category fixed by the path.
func (h *Projects) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	f := filterFromQuery(r)
	f.Category = category
	f.Search = ""
	f.FeaturedOnly = false
	h.listWith(w, r, f, category)
}

// Featured serves GET /projects/featured/list: the most recent featured
// projects as a bare array.
func (h *Projects) Featured(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	items, err := h.projects.ListFeatured(queryInt(r, "limit", 6))
	if err != nil {
		writeError(w, r, err)
		return
	}

	savedIDs, err := h.savedIDsFor(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]projectView, 0, len(items))
	for i := range items {
		views = append(views, viewOf(&items[i], user, savedIDs))
	}
	writeJSON(w, http.StatusOK, views)
}

// SavedList serves GET /projects/saved/list: the caller's bookmarks.
func (h *Projects) SavedList(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	items, err := h.saved.ListProjects(user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]projectView, 0, len(items))
	for i := range items {
		v := viewOf(&items[i], user, nil)
		v.IsSaved = true // everything here is, by construction
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// projectID parses the {id} path parameter.
func projectID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errNotFound("Project not found")
	}
	return id, nil
}

// Get serves GET /projects/{id}. Every successful fetch counts as a view,
// repeat fetches by the same caller included.
func (h *Projects) Get(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := middleware.UserFromCtx(r.Context())

	p, err := h.projects.FindByID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil || !p.IsPublished {
		writeError(w, r, errNotFound("Project not found"))
		return
	}

	views, err := h.projects.IncrementViews(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p.Views = views

	savedIDs, err := h.savedIDsFor(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	v := viewOf(p, user, savedIDs)
	if user != nil {
		v.IsAuthor = p.AuthorID == user.ID
	}
	writeJSON(w, http.StatusOK, v)
}

// Create serves POST /projects. The author is always the authenticated
// caller; anything the payload says about authorship is ignored.
func (h *Projects) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	var payload projectPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	p := payload.newProject()
	p.AuthorID = user.ID
	p.AuthorName = user.Username

	if msg := validateProject(p); msg != "" {
		writeError(w, r, errValidation(msg))
		return
	}

	created, err := h.projects.Create(p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cache.Invalidate(r.Context(), cache.StatsKey, cache.CategoriesKey)
	writeJSON(w, http.StatusCreated, viewOf(created, user, nil))
}

// Update serves PUT /projects/{id}. Author-only; provided fields replace
// the stored ones and the document is re-validated.
func (h *Projects) Update(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := middleware.UserFromCtx(r.Context())

	p, err := h.projects.FindByID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, errNotFound("Project not found"))
		return
	}
	if p.AuthorID != user.ID {
		writeError(w, r, errForbidden("Not authorized to update this project"))
		return
	}

	var payload projectPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	payload.applyTo(p)

	if msg := validateProject(p); msg != "" {
		writeError(w, r, errValidation(msg))
		return
	}

	if err := h.projects.Update(p); err != nil {
		writeError(w, r, err)
		return
	}

	h.cache.Invalidate(r.Context(), cache.StatsKey, cache.CategoriesKey)

	savedIDs, err := h.savedIDsFor(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(p, user, savedIDs))
}

// Delete serves DELETE /projects/{id}. Author-only; removal is permanent.
func (h *Projects) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := middleware.UserFromCtx(r.Context())

	p, err := h.projects.FindByID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, errNotFound("Project not found"))
		return
	}
	if p.AuthorID != user.ID {
		writeError(w, r, errForbidden("Not authorized to delete this project"))
		return
	}

	if err := h.projects.Delete(id); err != nil {
		writeError(w, r, err)
		return
	}

	h.cache.Invalidate(r.Context(), cache.StatsKey, cache.CategoriesKey)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Project deleted successfully",
	})
}

// ToggleLike serves POST /projects/{id}/like.
func (h *Projects) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := middleware.UserFromCtx(r.Context())

	liked, count, err := h.projects.ToggleLike(id, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"liked":     liked,
		"likeCount": count,
	})
}

// ToggleSave serves POST /projects/{id}/save.
func (h *Projects) ToggleSave(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := middleware.UserFromCtx(r.Context())

	p, err := h.projects.FindByID(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, errNotFound("Project not found"))
		return
	}

	saved, err := h.saved.Toggle(user.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "Project removed from saved"
	if saved {
		message = "Project saved"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"saved":   saved,
		"message": message,
	})
}

type commentRequest struct {
	Text string `json:"text"`
}

// AddComment serves POST /projects/{id}/comments.
func (h *Projects) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := middleware.UserFromCtx(r.Context())

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	text, msg := validateComment(req.Text)
	if msg != "" {
		writeError(w, r, errValidation(msg))
		return
	}

	comment, err := h.projects.AddComment(id, user, text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// cacheAndWrite serializes data once, stores it under key and writes it
// to the client.
func (h *Projects) cacheAndWrite(w http.ResponseWriter, r *http.Request, key string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cache.Set(r.Context(), key, payload)
	writeRawJSON(w, http.StatusOK, payload)
}

// statsResponse is the aggregate overview payload.
type statsResponse struct {
	TotalProjects   int                `json:"totalProjects"`
	TotalUsers      int                `json:"totalUsers"`
	RecentProjects  int                `json:"recentProjects"`
	CategoryStats   []store.GroupCount `json:"categoryStats"`
	DifficultyStats []store.GroupCount `json:"difficultyStats"`
}

// Stats serves GET /projects/stats/overview through the response cache.
func (h *Projects) Stats(w http.ResponseWriter, r *http.Request) {
	if payload, ok := h.cache.Get(r.Context(), cache.StatsKey); ok {
		writeRawJSON(w, http.StatusOK, payload)
		return
	}

	totalProjects, err := h.projects.CountPublished(time.Time{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	totalUsers, err := h.users.Count()
	if err != nil {
		writeError(w, r, err)
		return
	}
	recent, err := h.projects.CountPublished(time.Now().AddDate(0, 0, -30))
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryStats, err := h.projects.CountByCategory()
	if err != nil {
		writeError(w, r, err)
		return
	}
	difficultyStats, err := h.projects.CountByDifficulty()
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := statsResponse{
		TotalProjects:   totalProjects,
		TotalUsers:      totalUsers,
		RecentProjects:  recent,
		CategoryStats:   categoryStats,
		DifficultyStats: difficultyStats,
	}
	h.cacheAndWrite(w, r, cache.StatsKey, resp)
}

// Categories serves GET /projects/categories/list: every category with
// its published project count, zero-filled.
func (h *Projects) Categories(w http.ResponseWriter, r *http.Request) {
	if payload, ok := h.cache.Get(r.Context(), cache.CategoriesKey); ok {
		writeRawJSON(w, http.StatusOK, payload)
		return
	}

	counts, err := h.projects.CountByCategory()
	if err != nil {
		writeError(w, r, err)
		return
	}

	byName := make(map[string]int, len(counts))
	for _, c := range counts {
		byName[c.Name] = c.Count
	}

	resp := make([]store.GroupCount, 0, len(models.Categories))
	for _, name := range models.Categories {
		resp = append(resp, store.GroupCount{Name: name, Count: byName[name]})
	}
	h.cacheAndWrite(w, r, cache.CategoriesKey, resp)
}

// projectPayload is the client-sent project document for create and
// update. Pointer scalars distinguish absent fields from zero values so
// updates replace exactly what the caller provided.
type projectPayload struct {
	Title         *string           `json:"title"`
	Description   *string           `json:"description"`
	Category      *string           `json:"category"`
	Difficulty    *string           `json:"difficulty"`
	EstimatedTime *string           `json:"estimatedTime"`
	Materials     []models.Material `json:"materials"`
	Tools         []toolPayload     `json:"tools"`
	Steps         []models.Step     `json:"steps"`
	Images        []models.Image    `json:"images"`
	Tags          []string          `json:"tags"`
	IsPublished   *bool             `json:"isPublished"`
	IsFeatured    *bool             `json:"isFeatured"`
}

// toolPayload keeps Required nullable so an omitted flag defaults to true.
type toolPayload struct {
	Name     string `json:"name"`
	Required *bool  `json:"required"`
}

func (tp toolPayload) tool() models.Tool {
	required := true
	if tp.Required != nil {
		required = *tp.Required
	}
	return models.Tool{Name: tp.Name, Required: required}
}

// trimTags trims each tag; empty results are dropped. Duplicates are
// deliberately kept.
func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// newProject builds a fresh project from the payload, with the schema
// defaults applied (published true, featured false).
func (pp *projectPayload) newProject() *models.Project {
	p := &models.Project{IsPublished: true}
	pp.applyTo(p)
	return p
}

// applyTo replaces the provided fields on p. Absent scalars and nil
// slices keep their stored values.
func (pp *projectPayload) applyTo(p *models.Project) {
	if pp.Title != nil {
		p.Title = strings.TrimSpace(*pp.Title)
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Difficulty != nil {
		p.Difficulty = models.Difficulty(*pp.Difficulty)
	}
	if pp.EstimatedTime != nil {
		p.EstimatedTime = *pp.EstimatedTime
	}
	if pp.Materials != nil {
		p.Materials = pp.Materials
	}
	if pp.Tools != nil {
		tools := make([]models.Tool, 0, len(pp.Tools))
		for _, tp := range pp.Tools {
			tools = append(tools, tp.tool())
		}
		p.Tools = tools
	}
	if pp.Steps != nil {
		p.Steps = pp.Steps
	}
	if pp.Images != nil {
		p.Images = pp.Images
	}
	if pp.Tags != nil {
		p.Tags = trimTags(pp.Tags)
	}
	if pp.IsPublished != nil {
		p.IsPublished = *pp.IsPublished
	}
	if pp.IsFeatured != nil {
		p.IsFeatured = *pp.IsFeatured
	}
}
