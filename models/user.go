package models

// User is an account document in the users collection. The email is the
// natural key; HashedPassword is stored as-is and never inspected here.
type User struct {
	Name           string            `bson:"name"`
	Email          string            `bson:"email"`
	HashedPassword string            `bson:"password"`
	Preferences    map[string]string `bson:"preferences,omitempty"`
}
