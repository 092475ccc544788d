package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Booking is one patient's reservation of one slot of one service on one date.
// Date is compared as an opaque string; no calendar parsing happens on it.
type Booking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	TreatmentName string             `bson:"treatmentName" json:"treatmentName"`
	Date          string             `bson:"date" json:"date"`
	Slot          string             `bson:"slot" json:"slot"`
	UserEmail     string             `bson:"userEmail" json:"userEmail"`
	PatientName   string             `bson:"patientName,omitempty" json:"patientName,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
}

// BookingRequest is the POST /booking payload.
type BookingRequest struct {
	TreatmentName string `json:"treatmentName" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Slot          string `json:"slot" binding:"required"`
	UserEmail     string `json:"userEmail" binding:"required,email"`
	PatientName   string `json:"patientName"`
	Phone         string `json:"phone"`
}

func (r BookingRequest) Booking() Booking {
	return Booking{
		TreatmentName: r.TreatmentName,
		Date:          r.Date,
		Slot:          r.Slot,
		UserEmail:     r.UserEmail,
		PatientName:   r.PatientName,
		Phone:         r.Phone,
	}
}
