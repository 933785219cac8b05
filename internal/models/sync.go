package models

import (
	"strconv"
	"time"
)

// SyncCollections is the allow-list of client collections that may be synced
var SyncCollections = []string{
	"quests", "habits", "projects", "tasks", "notes",
	"training", "events", "analytics", "badges",
}

// IsSyncCollection reports whether name is an allowed sync collection
func IsSyncCollection(name string) bool {
	for _, c := range SyncCollections {
		if c == name {
			return true
		}
	}
	return false
}

// Document is a schemaless client document. It always carries an "id" once
// stored.
type Document map[string]any

// ID returns the document id as a string, or "" when absent. Numeric ids
// sent by clients are formatted without a trailing fraction.
func (d Document) ID() string {
	id, _ := d.NormalizeID()
	return id
}

// NormalizeID rewrites a numeric id to its string form so the stored
// document carries the same id it is keyed on. Ids that are neither strings
// nor numbers are rejected with ErrInvalidDocumentID; a missing id yields "".
func (d Document) NormalizeID() (string, error) {
	raw, ok := d["id"]
	if !ok {
		return "", nil
	}
	var id string
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64:
		id = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		id = strconv.Itoa(v)
	case int64:
		id = strconv.FormatInt(v, 10)
	default:
		return "", ErrInvalidDocumentID
	}
	d["id"] = id
	return id, nil
}

// SyncResult is the per-collection outcome of a migrate call
type SyncResult struct {
	Success     bool   `json:"success"`
	SyncedCount *int   `json:"synced_count,omitempty"`
	Message     string `json:"message"`
}

// PullResult carries the documents returned by a pull
type PullResult struct {
	Data     map[string][]Document
	LastSync time.Time
}
