package models

import (
	"encoding/json"
	"time"
)

// Backlink connects two notes (or a note to another item)
type Backlink struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SourceID   string    `json:"source_id"`
	TargetID   string    `json:"target_id"`
	SourceType string    `json:"source_type"`
	TargetType string    `json:"target_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// NoteTemplate is a reusable note body. Predefined templates have no owner.
type NoteTemplate struct {
	ID         string          `json:"id,omitempty" yaml:"-"`
	UserID     string          `json:"user_id,omitempty" yaml:"-"`
	Name       string          `json:"name" yaml:"name"`
	Content    string          `json:"content" yaml:"content"`
	Category   string          `json:"category" yaml:"category"`
	Properties json.RawMessage `json:"properties,omitempty" yaml:"-"`
	CreatedAt  *time.Time      `json:"created_at,omitempty" yaml:"-"`
}

// MoodEntry is a single mood/energy log
type MoodEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	HabitID     *string   `json:"habit_id"`
	Mood        string    `json:"mood"`
	EnergyLevel int       `json:"energy_level"`
	Notes       *string   `json:"notes"`
	Date        time.Time `json:"date"`
}

// HabitMetric is a custom numeric measurement attached to a habit
type HabitMetric struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	HabitID    string    `json:"habit_id"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Date       time.Time `json:"date"`
}

// Pomodoro session kinds
const (
	SessionTypeWork       = "work"
	SessionTypeShortBreak = "short_break"
	SessionTypeLongBreak  = "long_break"
)

// PomodoroSession is a timed focus or break interval
type PomodoroSession struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TaskID      *string    `json:"task_id"`
	Duration    int        `json:"duration"`
	Type        string     `json:"type"`
	Completed   bool       `json:"completed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// PomodoroStats summarises a user's sessions
type PomodoroStats struct {
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	CompletionRate    float64 `json:"completion_rate"`
}
