package models

// Session is an authentication session document, at most one per user.
// JWT is an opaque token string; issuing and verifying it happens outside
// this layer.
type Session struct {
	UserID string `bson:"user_id"`
	JWT    string `bson:"jwt"`
}
