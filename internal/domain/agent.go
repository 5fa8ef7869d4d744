package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Review is a single user review of an agent. An agent holds at most one
// review per reviewing user; a later review replaces the earlier one.
type Review struct {
	ID        uuid.UUID
	AgentID   uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Performance holds the rolling invocation metrics of an agent.
//
// AvgResponseTime and SuccessRate are maintained with a two-sample merge
// (old+new)/2 rather than a true running mean, so recent samples weigh
// more heavily. That is the intended policy, not an approximation bug.
type Performance struct {
	AvgResponseTime float64
	Uptime          float64
	SuccessRate     float64
	TotalCalls      int64
	LastUpdated     *time.Time
}

// Agent represents a published agent configuration.
// Rating and ReviewCount are denormalized from the review set and are only
// ever recomputed from it, never mutated independently.
type Agent struct {
	ID          uuid.UUID
	AuthorID    uuid.UUID
	Name        string
	Category    string
	IsPublic    bool
	Status      AgentStatus
	Rating      float64
	ReviewCount int
	Performance Performance
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MergeSample applies the two-sample average policy to prev with a new
// sample. The first sample replaces the zero value outright.
func MergeSample(prev, sample float64, firstSample bool) float64 {
	if firstSample {
		return sample
	}
	return (prev + sample) / 2
}

// RoundRating rounds a mean rating to one decimal place, the precision
// stored on the agent.
func RoundRating(mean float64) float64 {
	return math.Round(mean*10) / 10
}

// MeanRating computes the denormalized rating for a review set.
// An empty set yields 0.
func MeanRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	return RoundRating(float64(sum) / float64(len(reviews)))
}

// ValidateRating checks a review or feedback rating is within [1,5].
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}
