package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TrendingTopic is a (source, topic, category) aggregate recomputed over the
// trailing window on every analysis pass. Frequency and TotalViews are
// overwritten, not accumulated.
type TrendingTopic struct {
	DocID         string `firestore:"-"`
	SourceWebsite string `firestore:"sourceWebsite"`
	Topic         string `firestore:"topic"`
	Category      string `firestore:"category"`

	Frequency     int     `firestore:"frequency"`
	TotalViews    int64   `firestore:"totalViews"`
	TotalSales    int64   `firestore:"totalSales"`
	AverageRating float64 `firestore:"averageRating,omitempty"`

	SampleItems []SampleItem `firestore:"sampleItems,omitempty"`

	ContentGenerated bool `firestore:"contentGenerated"`

	FirstSeen   time.Time `firestore:"firstSeen"`
	LastUpdated time.Time `firestore:"lastUpdated"`
}

// TopicDocID derives the stable storage identity for (website, topic, category).
func TopicDocID(website, topic, category string) string {
	sum := sha256.Sum256([]byte(website + "|" + topic + "|" + category))
	return hex.EncodeToString(sum[:])
}

// TrendingScore ranks topics for content selection. Recency decays the score
// by 10% per day since the last refresh, floored at 0.1.
func (t *TrendingTopic) TrendingScore(now time.Time) float64 {
	decay := 1.0
	if !t.LastUpdated.IsZero() {
		days := int(now.Sub(t.LastUpdated).Hours() / 24)
		decay = 1.0 - float64(days)*0.1
		if decay < 0.1 {
			decay = 0.1
		}
	}
	return float64(t.Frequency) * float64(t.TotalViews) * decay / 1000
}
