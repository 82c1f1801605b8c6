package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matvault/matvault/internal/catalog/domain"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
	json.Marshaler
}

// VideoAdded is recorded when a video enters the catalog, whether by
// hand or by the importer.
type VideoAdded struct {
	eventID    uuid.UUID
	videoID    uuid.UUID
	title      string
	source     domain.SourceType
	occurredAt time.Time
}

func NewVideoAdded(videoID uuid.UUID, title string, source domain.SourceType) *VideoAdded {
	return &VideoAdded{
		eventID:    uuid.New(),
		videoID:    videoID,
		title:      title,
		source:     source,
		occurredAt: time.Now(),
	}
}

func (e *VideoAdded) EventID() uuid.UUID     { return e.eventID }
func (e *VideoAdded) EventType() string      { return "VideoAdded" }
func (e *VideoAdded) AggregateID() uuid.UUID { return e.videoID }
func (e *VideoAdded) OccurredAt() time.Time  { return e.occurredAt }

func (e *VideoAdded) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID         `json:"event_id"`
		VideoID    uuid.UUID         `json:"video_id"`
		Title      string            `json:"title"`
		Source     domain.SourceType `json:"source"`
		OccurredAt time.Time         `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		VideoID:    e.videoID,
		Title:      e.title,
		Source:     e.source,
		OccurredAt: e.occurredAt,
	})
}

// ProgressChanged is recorded when a video's progress status moves.
type ProgressChanged struct {
	eventID    uuid.UUID
	videoID    uuid.UUID
	from       domain.ProgressStatus
	to         domain.ProgressStatus
	occurredAt time.Time
}

func NewProgressChanged(videoID uuid.UUID, from, to domain.ProgressStatus) *ProgressChanged {
	return &ProgressChanged{
		eventID:    uuid.New(),
		videoID:    videoID,
		from:       from,
		to:         to,
		occurredAt: time.Now(),
	}
}

func (e *ProgressChanged) EventID() uuid.UUID     { return e.eventID }
func (e *ProgressChanged) EventType() string      { return "ProgressChanged" }
func (e *ProgressChanged) AggregateID() uuid.UUID { return e.videoID }
func (e *ProgressChanged) OccurredAt() time.Time  { return e.occurredAt }

func (e *ProgressChanged) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID             `json:"event_id"`
		VideoID    uuid.UUID             `json:"video_id"`
		From       domain.ProgressStatus `json:"from"`
		To         domain.ProgressStatus `json:"to"`
		OccurredAt time.Time             `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		VideoID:    e.videoID,
		From:       e.from,
		To:         e.to,
		OccurredAt: e.occurredAt,
	})
}
