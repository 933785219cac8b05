package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Hayacku/initium/internal/models"
	"github.com/google/uuid"
)

// SyncRepository defines document storage for client sync
type SyncRepository interface {
	Upsert(ctx context.Context, userID, collection string, docs []models.Document, syncedAt time.Time) (int, error)
	List(ctx context.Context, userID, collection string) ([]models.Document, error)
	Clear(ctx context.Context, userID, collection string) (int64, error)
}

// InvalidCollectionError names the rejected collection and the allow-list
type InvalidCollectionError struct {
	Collection string
}

func (e *InvalidCollectionError) Error() string {
	return fmt.Sprintf("Invalid collection name. Allowed: %s", strings.Join(models.SyncCollections, ", "))
}

func (e *InvalidCollectionError) Unwrap() error {
	return models.ErrInvalidCollection
}

// SyncService mirrors client-side collections into the database
type SyncService struct {
	repo   SyncRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewSyncService(repo SyncRepository, logger *slog.Logger) *SyncService {
	return &SyncService{repo: repo, logger: logger, now: time.Now}
}

// ParseCollections splits a comma separated list and keeps only allowed
// names. An empty list means every collection.
func ParseCollections(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return models.SyncCollections
	}
	var out []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if models.IsSyncCollection(name) {
			out = append(out, name)
		}
	}
	return out
}

// Push upserts docs into collection and returns how many were written
func (s *SyncService) Push(ctx context.Context, userID, collection string, docs []models.Document) (int, error) {
	if !models.IsSyncCollection(collection) {
		return 0, &InvalidCollectionError{Collection: collection}
	}
	return s.push(ctx, userID, collection, docs)
}

func (s *SyncService) push(ctx context.Context, userID, collection string, docs []models.Document) (int, error) {
	if err := normalizeIDs(collection, docs); err != nil {
		return 0, err
	}
	syncedAt := s.now().UTC()
	stamp := syncedAt.Format(time.RFC3339Nano)
	for i, doc := range docs {
		if doc == nil {
			doc = models.Document{}
			docs[i] = doc
		}
		if doc.ID() == "" {
			doc["id"] = uuid.New().String()
		}
		doc["user_id"] = userID
		doc["synced_at"] = stamp
	}

	n, err := s.repo.Upsert(ctx, userID, collection, docs, syncedAt)
	if err != nil {
		s.logger.Error("failed to push documents",
			slog.String("user_id", userID),
			slog.String("collection", collection),
			slog.Any("error", err))
		return 0, models.ErrInternalServer
	}
	return n, nil
}

func normalizeIDs(collection string, docs []models.Document) error {
	for i, doc := range docs {
		if _, err := doc.NormalizeID(); err != nil {
			return fmt.Errorf("%s document %d: %w", collection, i, err)
		}
	}
	return nil
}

// Pull returns the caller's documents for each named collection
func (s *SyncService) Pull(ctx context.Context, userID string, collections []string) (*models.PullResult, error) {
	result := &models.PullResult{Data: make(map[string][]models.Document, len(collections))}
	for _, name := range collections {
		docs, err := s.repo.List(ctx, userID, name)
		if err != nil {
			s.logger.Error("failed to pull documents",
				slog.String("user_id", userID),
				slog.String("collection", name),
				slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		result.Data[name] = docs
	}
	result.LastSync = s.now().UTC()
	return result, nil
}

// Migrate pushes several collections at once. Unknown collections are
// reported per entry and do not fail the call.
func (s *SyncService) Migrate(ctx context.Context, userID string, all map[string][]models.Document) (int, map[string]models.SyncResult, error) {
	// Reject bad ids before any collection is written
	for name, docs := range all {
		if models.IsSyncCollection(name) {
			if err := normalizeIDs(name, docs); err != nil {
				return 0, nil, err
			}
		}
	}

	results := make(map[string]models.SyncResult, len(all))
	total := 0
	for name, docs := range all {
		if !models.IsSyncCollection(name) {
			results[name] = models.SyncResult{Success: false, Message: "Invalid collection name"}
			continue
		}
		n, err := s.push(ctx, userID, name, docs)
		if err != nil {
			return 0, nil, err
		}
		count := n
		results[name] = models.SyncResult{Success: true, SyncedCount: &count, Message: fmt.Sprintf("Synced %d documents", n)}
		total += n
	}
	return total, results, nil
}

// Clear deletes the caller's documents and reports counts per collection
func (s *SyncService) Clear(ctx context.Context, userID string, collections []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(collections))
	for _, name := range collections {
		n, err := s.repo.Clear(ctx, userID, name)
		if err != nil {
			s.logger.Error("failed to clear documents",
				slog.String("user_id", userID),
				slog.String("collection", name),
				slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		counts[name] = n
	}
	s.logger.Info("sync data cleared", slog.String("user_id", userID), slog.Int("collections", len(collections)))
	return counts, nil
}
