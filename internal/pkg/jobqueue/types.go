package jobqueue

import (
	"time"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/internal/pkg/push"
)

// Job is one push delivery to one subscription endpoint.
type Job struct {
	ID           string
	StoreID      string
	Subscription models.PushSubscription
	Payload      push.Payload
	EnqueuedAt   time.Time
}

// Stats counts job outcomes since the queue started.
type Stats struct {
	Enqueued  int64 `json:"enqueued"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Rejected  int64 `json:"rejected"`
	Dropped   int64 `json:"dropped"`
}
