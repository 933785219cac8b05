package handlers

import (
	"context"
	"net/http"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
	"github.com/go-chi/chi/v5"
)

// NotesServiceInterface defines backlink and template operations
type NotesServiceInterface interface {
	Backlinks(ctx context.Context, userID, noteID string) ([]*models.Backlink, error)
	CreateBacklink(ctx context.Context, userID, sourceID, targetID string) (*models.Backlink, bool, error)
	Templates(ctx context.Context, userID string) ([]models.NoteTemplate, []*models.NoteTemplate, error)
	CreateTemplate(ctx context.Context, userID, name, content, category string) (*models.NoteTemplate, error)
}

// NotesHandler serves /notes
type NotesHandler struct {
	service NotesServiceInterface
}

func NewNotesHandler(service NotesServiceInterface) *NotesHandler {
	return &NotesHandler{service: service}
}

// CreateBacklinkRequest links two notes
type CreateBacklinkRequest struct {
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// CreateTemplateRequest defines a custom note template
type CreateTemplateRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"max=50"`
}

// Backlinks handles GET /notes/backlinks/{note_id}
func (h *NotesHandler) Backlinks(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	links, err := h.service.Backlinks(r.Context(), user.ID, chi.URLParam(r, "note_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if links == nil {
		links = []*models.Backlink{}
	}
	pkghttp.WriteOK(w, map[string]interface{}{"backlinks": links})
}

// CreateBacklink handles POST /notes/backlinks
func (h *NotesHandler) CreateBacklink(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req CreateBacklinkRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.SourceID, "source_id")
	fromQuery(r, &req.TargetID, "target_id")
	if !validBody(w, &req) {
		return
	}

	link, created, err := h.service.CreateBacklink(r.Context(), user.ID, req.SourceID, req.TargetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !created {
		pkghttp.WriteOK(w, map[string]interface{}{"success": true, "message": "Backlink already exists"})
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{"success": true, "backlink_id": link.ID})
}

// Templates handles GET /notes/templates
func (h *NotesHandler) Templates(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	predefined, custom, err := h.service.Templates(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if predefined == nil {
		predefined = []models.NoteTemplate{}
	}
	if custom == nil {
		custom = []*models.NoteTemplate{}
	}
	pkghttp.WriteOK(w, map[string]interface{}{"predefined": predefined, "custom": custom})
}

// CreateTemplate handles POST /notes/templates
func (h *NotesHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req CreateTemplateRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.Name, "name")
	fromQuery(r, &req.Content, "content")
	fromQuery(r, &req.Category, "category")
	if req.Category == "" {
		req.Category = "custom"
	}
	if !validBody(w, &req) {
		return
	}

	tpl, err := h.service.CreateTemplate(r.Context(), user.ID, req.Name, req.Content, req.Category)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{"success": true, "template_id": tpl.ID})
}
