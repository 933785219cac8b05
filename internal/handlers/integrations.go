package handlers

import (
	"context"
	"net/http"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	pkghttp "github.com/Hayacku/initium/pkg/http"
	"github.com/go-chi/chi/v5"
)

// IntegrationsServiceInterface defines webhook and provider operations
type IntegrationsServiceInterface interface {
	CreateWebhook(ctx context.Context, w *models.Webhook) error
	Webhooks(ctx context.Context, userID string) ([]*models.Webhook, error)
	DeleteWebhook(ctx context.Context, userID, id string) error
	Available() []models.AvailableIntegration
	Connect(ctx context.Context, userID, provider string) (*models.Integration, error)
	Connected(ctx context.Context, userID string) ([]*models.Integration, error)
}

// IntegrationsHandler serves /integrations
type IntegrationsHandler struct {
	service IntegrationsServiceInterface
}

func NewIntegrationsHandler(service IntegrationsServiceInterface) *IntegrationsHandler {
	return &IntegrationsHandler{service: service}
}

// CreateWebhookRequest registers an outbound webhook
type CreateWebhookRequest struct {
	Name   string   `json:"name" validate:"required,max=100"`
	URL    string   `json:"url" validate:"required,url"`
	Events []string `json:"events"`
}

// CreateWebhook handles POST /integrations/webhooks
func (h *IntegrationsHandler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req CreateWebhookRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	fromQuery(r, &req.Name, "name")
	fromQuery(r, &req.URL, "url")
	if req.Events == nil {
		req.Events = r.URL.Query()["events"]
	}
	if !validBody(w, &req) {
		return
	}

	hook := &models.Webhook{UserID: user.ID, Name: req.Name, URL: req.URL, Events: req.Events, Active: true}
	if err := h.service.CreateWebhook(r.Context(), hook); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{"success": true, "webhook_id": hook.ID})
}

// Webhooks handles GET /integrations/webhooks
func (h *IntegrationsHandler) Webhooks(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	hooks, err := h.service.Webhooks(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if hooks == nil {
		hooks = []*models.Webhook{}
	}
	pkghttp.WriteOK(w, map[string]interface{}{"webhooks": hooks})
}

// DeleteWebhook handles DELETE /integrations/webhooks/{webhook_id}
func (h *IntegrationsHandler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	if err := h.service.DeleteWebhook(r.Context(), user.ID, chi.URLParam(r, "webhook_id")); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{"success": true})
}

// Available handles GET /integrations/available. It needs no session.
func (h *IntegrationsHandler) Available(w http.ResponseWriter, r *http.Request) {
	list := h.service.Available()
	if list == nil {
		list = []models.AvailableIntegration{}
	}
	pkghttp.WriteOK(w, map[string]interface{}{"integrations": list})
}

// Connect handles POST /integrations/connect/{provider}
func (h *IntegrationsHandler) Connect(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	provider := chi.URLParam(r, "provider")
	in, err := h.service.Connect(r.Context(), user.ID, provider)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{
		"success":        true,
		"message":        provider + " connecté (mode mock)",
		"integration_id": in.ID,
	})
}

// Connected handles GET /integrations/connected
func (h *IntegrationsHandler) Connected(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	list, err := h.service.Connected(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []*models.Integration{}
	}
	pkghttp.WriteOK(w, map[string]interface{}{"integrations": list})
}
