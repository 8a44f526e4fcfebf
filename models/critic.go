package models

// Critic pairs a commenter's email with the number of comments they have
// authored. It is produced only by the most-active-commenters aggregation
// and never persisted.
type Critic struct {
	Email string `bson:"_id"`
	Count int64  `bson:"count"`
}
