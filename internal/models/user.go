package models

import (
	"time"
)

// User represents a stored user record
type User struct {
	ID          string    `json:"id" db:"id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	Birthdate   string    `json:"birthdate" db:"birthdate"` // ISO date, YYYY-MM-DD
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewUser holds the fields of a record before the store assigns identity and timestamp
type NewUser struct {
	FirstName   string
	LastName    string
	Email       string
	Birthdate   string
	PhoneNumber string
}

// Field names shared by the CSV header, the JSON body and the rule table.
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldEmail       = "email"
	FieldBirthdate   = "birthdate"
	FieldPhoneNumber = "phone_number"
)

// ExportFields is the column order of the CSV export. Identity and timestamp are never exported.
var ExportFields = []string{FieldFirstName, FieldLastName, FieldEmail, FieldBirthdate, FieldPhoneNumber}

// RawRow is one decoded CSV data line or one single-record submission, keyed by field name
type RawRow map[string]string

// Get returns the value for field, or "" when absent
func (r RawRow) Get(field string) string {
	if r == nil {
		return ""
	}
	return r[field]
}

// Values returns the record's exportable fields in ExportFields order
func (u *User) Values() []string {
	return []string{u.FirstName, u.LastName, u.Email, u.Birthdate, u.PhoneNumber}
}
