package models

type UserDoc struct {
	UserID       int    `json:"userId" bson:"userId"`
	Email        string `json:"email" bson:"email"`
	Username     string `json:"username,omitempty" bson:"username,omitempty"`
	FirstName    string `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty" bson:"lastName,omitempty"`
	PasswordHash string `json:"-" bson:"passwordHash"`
	Role         string `json:"role" bson:"role"`
	// true una vez materializadas las filas de scores del catálogo completo
	InitializedScores bool   `json:"initializedScores" bson:"initializedScores"`
	CreatedAt         string `json:"createdAt" bson:"createdAt"`
	UpdatedAt         string `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
