package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Hayacku/initium/internal/auth"
	"github.com/Hayacku/initium/internal/models"
	"github.com/Hayacku/initium/internal/services"
	pkghttp "github.com/Hayacku/initium/pkg/http"
)

// SyncServiceInterface defines client data mirroring
type SyncServiceInterface interface {
	Push(ctx context.Context, userID, collection string, docs []models.Document) (int, error)
	Pull(ctx context.Context, userID string, collections []string) (*models.PullResult, error)
	Migrate(ctx context.Context, userID string, all map[string][]models.Document) (int, map[string]models.SyncResult, error)
	Clear(ctx context.Context, userID string, collections []string) (map[string]int64, error)
}

// SyncHandler serves /sync
type SyncHandler struct {
	service SyncServiceInterface
}

func NewSyncHandler(service SyncServiceInterface) *SyncHandler {
	return &SyncHandler{service: service}
}

// PushRequest uploads one collection. LastSync is accepted and ignored.
type PushRequest struct {
	Collection string            `json:"collection" validate:"required"`
	Data       []models.Document `json:"data"`
	LastSync   *time.Time        `json:"last_sync,omitempty"`
}

// SyncResponse is returned by push
type SyncResponse struct {
	Success     bool   `json:"success"`
	SyncedCount int    `json:"synced_count"`
	Message     string `json:"message"`
}

// PullResponse carries every requested collection
type PullResponse struct {
	Success  bool                         `json:"success"`
	Data     map[string][]models.Document `json:"data"`
	LastSync time.Time                    `json:"last_sync"`
}

// Push handles POST /sync/push
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var req PushRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	count, err := h.service.Push(r.Context(), user.ID, req.Collection, req.Data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, SyncResponse{
		Success:     true,
		SyncedCount: count,
		Message:     fmt.Sprintf("Successfully synced %d %s to cloud", count, req.Collection),
	})
}

// Pull handles GET /sync/pull?collections=a,b
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	result, err := h.service.Pull(r.Context(), user.ID, services.ParseCollections(r.URL.Query().Get("collections")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	for name, docs := range result.Data {
		if docs == nil {
			result.Data[name] = []models.Document{}
		}
	}
	pkghttp.WriteOK(w, PullResponse{Success: true, Data: result.Data, LastSync: result.LastSync})
}

// Migrate handles POST /sync/migrate. The body maps collection names to
// document lists; unknown names are reported per collection.
func (h *SyncHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	var all map[string][]models.Document
	if !decodeBody(w, r, &all, false) {
		return
	}

	total, results, err := h.service.Migrate(r.Context(), user.ID, all)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{
		"success":      true,
		"total_synced": total,
		"collections":  results,
		"message":      fmt.Sprintf("Successfully migrated %d total documents", total),
	})
}

// Clear handles DELETE /sync/clear?collections=a,b
func (h *SyncHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := auth.GetCurrentUser(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return
	}

	counts, err := h.service.Clear(r.Context(), user.ID, services.ParseCollections(r.URL.Query().Get("collections")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteOK(w, map[string]interface{}{
		"success":        true,
		"deleted_counts": counts,
		"message":        "Data cleared successfully",
	})
}
