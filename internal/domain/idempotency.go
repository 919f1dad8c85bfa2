package domain

import "time"

// Idempotency records the diet created for a (user, Idempotency-Key) pair so
// that a retried POST can return the original result instead of creating a
// second diet. Records are documents in the idempotency_keys collection.
type Idempotency struct {
	ID        string    `json:"id"        firestore:"-"`
	UserID    string    `json:"userId"    firestore:"userId"`
	Key       string    `json:"key"       firestore:"key"`
	DietID    string    `json:"dietId"    firestore:"dietId"`
	Status    int       `json:"status"    firestore:"status"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt" firestore:"expiresAt"`
}

// Expired reports whether the record is no longer valid at now.
func (i Idempotency) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
