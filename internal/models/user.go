package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User struct matches the document in MongoDB
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name" json:"name"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"` // "admin", "manager" or "operator"
	Status   string             `bson:"status" json:"status"`
}
