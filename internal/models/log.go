package models

import "time"

// Extraction-run outcomes.
const (
	RunStarted = "started"
	RunSuccess = "success"
	RunPartial = "partial"
	RunFailed  = "failed"
)

// ExtractionLog records one extraction attempt. Completed logs are
// append-only history and are never edited afterwards.
type ExtractionLog struct {
	ID            string `firestore:"-"`
	SourceWebsite string `firestore:"sourceWebsite"`
	Status        string `firestore:"status"`

	ItemsFound   int `firestore:"itemsFound"`
	ItemsNew     int `firestore:"itemsNew"`
	ItemsUpdated int `firestore:"itemsUpdated"`
	ItemsFailed  int `firestore:"itemsFailed"`

	StartedAt       time.Time `firestore:"startedAt"`
	CompletedAt     time.Time `firestore:"completedAt,omitempty"`
	DurationSeconds int       `firestore:"durationSeconds,omitempty"`

	ErrorMessage string `firestore:"errorMessage,omitempty"`
	Notes        string `firestore:"notes,omitempty"`
}

// GenerationRequest queues a trending topic or alert context for the
// external content-generation collaborator.
type GenerationRequest struct {
	ID          string         `firestore:"-"`
	ContentType string         `firestore:"contentType"`
	Title       string         `firestore:"title"`
	Priority    string         `firestore:"priority"`
	TopicDocID  string         `firestore:"topicDocID,omitempty"`
	Context     map[string]any `firestore:"context,omitempty"`

	Processed bool   `firestore:"processed"`
	Status    string `firestore:"status,omitempty"`

	GeneratedOutline string `firestore:"generatedOutline,omitempty"`
	GeneratedContent string `firestore:"generatedContent,omitempty"`
	WordCount        int    `firestore:"wordCount,omitempty"`

	ScheduledFor time.Time `firestore:"scheduledFor"`
	CreatedAt    time.Time `firestore:"createdAt"`
}
