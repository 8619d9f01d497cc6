package models

import "encoding/json"

// RejectedRow describes one input row that was not accepted
type RejectedRow struct {
	RowIndex int      `json:"rowIndex"` // 1-based file position, header is row 1
	Data     RawRow   `json:"data"`
	Errors   []string `json:"errors"`
}

// ImportResult is the outcome of one CSV upload, both slices in input order
type ImportResult struct {
	Accepted []*User        `json:"valid"`
	Rejected []*RejectedRow `json:"invalid"`
}

// ValidateResponse is the outcome of validating a single record
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	User   *User    `json:"user,omitempty"`
	Data   RawRow   `json:"data,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// MarshalJSON renders {valid, user} for an accepted record and {valid, data, errors}
// for a rejected one. A rejection always carries data, even when nothing was submitted.
func (r ValidateResponse) MarshalJSON() ([]byte, error) {
	if r.Valid {
		return json.Marshal(struct {
			Valid bool  `json:"valid"`
			User  *User `json:"user"`
		}{Valid: true, User: r.User})
	}

	data := r.Data
	if data == nil {
		data = RawRow{}
	}
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return json.Marshal(struct {
		Valid  bool     `json:"valid"`
		Data   RawRow   `json:"data"`
		Errors []string `json:"errors"`
	}{Valid: false, Data: data, Errors: errs})
}

// UserInput is the JSON body of a single-record submission. Any subset of fields may be present.
type UserInput struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Birthdate   *string `json:"birthdate,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// ToRawRow converts the submission to a RawRow, leaving absent fields out
func (in *UserInput) ToRawRow() RawRow {
	row := RawRow{}
	if in == nil {
		return row
	}
	set := func(field string, v *string) {
		if v != nil {
			row[field] = *v
		}
	}
	set(FieldFirstName, in.FirstName)
	set(FieldLastName, in.LastName)
	set(FieldEmail, in.Email)
	set(FieldBirthdate, in.Birthdate)
	set(FieldPhoneNumber, in.PhoneNumber)
	return row
}

// ExportFormat is an output encoding for the users export
type ExportFormat string

const (
	ExportFormatCSV    ExportFormat = "csv"
	ExportFormatJSON   ExportFormat = "json"
	ExportFormatNDJSON ExportFormat = "ndjson"
	ExportFormatXLSX   ExportFormat = "xlsx"
)

// ValidExportFormats defines accepted export formats
var ValidExportFormats = map[ExportFormat]bool{
	ExportFormatCSV:    true,
	ExportFormatJSON:   true,
	ExportFormatNDJSON: true,
	ExportFormatXLSX:   true,
}
