package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func init() {
	registerForAutomigration(&Run{})
}

type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one recorded video generation.
type Run struct {
	gorm.Model
	UUID            string `gorm:"uniqueIndex"`
	Layer           string
	BBox            string
	Width, Height   int
	Start, End      time.Time
	IntervalMinutes int
	FPS             int
	OutputPath      string
	Status          RunStatus
	Frames          int
	Checksum        string
	Error           string
	FinishedAt      *time.Time
}

func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if len(r.UUID) == 0 {
		r.UUID = uuid.NewString()
	}
	if len(r.Status) == 0 {
		r.Status = RunStarted
	}
	return nil
}

// Duration is how long the run took, zero while it is still going.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil || r.CreatedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.CreatedAt)
}
