package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Service is a treatment type with its full catalog of daily time slots.
type Service struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name  string             `bson:"name" json:"name"`
	Slots []string           `bson:"slots" json:"slots"`
}

// ServiceName is the name-only projection of a Service.
type ServiceName struct {
	ID   primitive.ObjectID `json:"_id,omitempty"`
	Name string             `json:"name"`
}
