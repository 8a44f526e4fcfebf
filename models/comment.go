package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a user-submitted comment on a movie. The id is assigned by the
// store on insert; Email identifies the author and is immutable afterwards.
type Comment struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Email   string             `bson:"email"`
	MovieID primitive.ObjectID `bson:"movie_id,omitempty"`
	Text    string             `bson:"text"`
	Date    time.Time          `bson:"date"`
}
