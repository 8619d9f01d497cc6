package validation

import (
	"reflect"
	"testing"
	"time"

	"github.com/user-import-api/internal/models"
)

func validRow() models.RawRow {
	return models.RawRow{
		"first_name":   "Jane",
		"last_name":    "Doe",
		"email":        "jane@x.com",
		"birthdate":    "2000-01-01",
		"phone_number": "+12345678",
	}
}

func withField(field, value string) models.RawRow {
	row := validRow()
	row[field] = value
	return row
}

func TestFieldValidator_Validate(t *testing.T) {
	validator := NewFieldValidator()

	tests := []struct {
		name string
		row  models.RawRow
		want []string
	}{
		{
			name: "valid row",
			row:  validRow(),
			want: nil,
		},
		{
			name: "missing first name",
			row:  withField("first_name", ""),
			want: []string{MsgFirstNameRequired},
		},
		{
			name: "whitespace-only last name",
			row:  withField("last_name", "   "),
			want: []string{MsgLastNameRequired},
		},
		{
			name: "email without at sign",
			row:  withField("email", "bad"),
			want: []string{MsgEmailInvalid},
		},
		{
			name: "email without dot in domain",
			row:  withField("email", "jane@localhost"),
			want: []string{MsgEmailInvalid},
		},
		{
			name: "impossible date",
			row:  withField("birthdate", "2023-02-30"),
			want: []string{MsgBirthdateInvalid},
		},
		{
			name: "phone with separators",
			row:  withField("phone_number", "123-4567"),
			want: []string{MsgPhoneInvalid},
		},
		{
			name: "empty first name and malformed phone keep rule order",
			row: models.RawRow{
				"first_name":   "",
				"last_name":    "Doe",
				"email":        "jane@x.com",
				"birthdate":    "2000-01-01",
				"phone_number": "12ab",
			},
			want: []string{MsgFirstNameRequired, MsgPhoneInvalid},
		},
		{
			name: "every field missing",
			row:  models.RawRow{},
			want: []string{
				MsgFirstNameRequired,
				MsgLastNameRequired,
				MsgEmailInvalid,
				MsgBirthdateInvalid,
				MsgPhoneInvalid,
			},
		},
		{
			name: "nil row",
			row:  nil,
			want: []string{
				MsgFirstNameRequired,
				MsgLastNameRequired,
				MsgEmailInvalid,
				MsgBirthdateInvalid,
				MsgPhoneInvalid,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validator.Validate(tt.row)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEmailRule(t *testing.T) {
	validator := NewFieldValidator()

	tests := []struct {
		email string
		valid bool
	}{
		{"jane@x.com", true},
		{"jane.doe+tag@mail.example.org", true},
		{"UPPER@Example.COM", true},
		{"  padded@x.com  ", true},
		{"bad", false},
		{"@x.com", false},
		{"jane@", false},
		{"jane@x", false},
		{"jane doe@x.com", false},
		{"jane@@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			errs := validator.Validate(withField("email", tt.email))
			if tt.valid && len(errs) != 0 {
				t.Errorf("Email %q should be valid, got %v", tt.email, errs)
			}
			if !tt.valid && (len(errs) != 1 || errs[0] != MsgEmailInvalid) {
				t.Errorf("Email %q should be invalid, got %v", tt.email, errs)
			}
		})
	}
}

func TestPhoneRule(t *testing.T) {
	validator := NewFieldValidator()

	tests := []struct {
		phone string
		valid bool
	}{
		{"1234567", true},
		{"+1234567", true},
		{"123456789012345", true},
		{"+123456789012345", true},
		{"123456", false},
		{"1234567890123456", false},
		{"++1234567", false},
		{"1234567+", false},
		{"+1 234 5678", false},
		{"(123)4567890", false},
		{"１２３４５６７", false}, // full-width digits
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			errs := validator.Validate(withField("phone_number", tt.phone))
			if tt.valid && len(errs) != 0 {
				t.Errorf("Phone %q should be valid, got %v", tt.phone, errs)
			}
			if !tt.valid && (len(errs) != 1 || errs[0] != MsgPhoneInvalid) {
				t.Errorf("Phone %q should be invalid, got %v", tt.phone, errs)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2000-01-01", "2000-01-01", true},
		{"2000-02-29", "2000-02-29", true},
		{"2000-01-01T10:30:00Z", "2000-01-01", true},
		{"2000-01-01T23:30:00-05:00", "2000-01-01", true},
		{"2000-01-01T10:30:00", "2000-01-01", true},
		{" 2000-01-01 ", "2000-01-01", true},
		{"2001-02-29", "", false},
		{"2023-02-30", "", false},
		{"2000-13-01", "", false},
		{"01/01/2000", "", false},
		{"not-a-date", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.ok != (err == nil) {
				t.Fatalf("ParseDate(%q) error = %v, want ok=%v", tt.input, err, tt.ok)
			}
			if tt.ok && got.Format(ISODate) != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format(ISODate), tt.want)
			}
		})
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeOn(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		today time.Time
		want  int
	}{
		{"on the birthday", date(2000, 6, 15), date(2013, 6, 15), 13},
		{"day before the birthday", date(2000, 6, 15), date(2013, 6, 14), 12},
		{"earlier month", date(2000, 6, 15), date(2013, 5, 30), 12},
		{"later month", date(2000, 6, 15), date(2013, 7, 1), 13},
		{"leap day birth before march", date(2000, 2, 29), date(2013, 2, 28), 12},
		{"leap day birth on march first", date(2000, 2, 29), date(2013, 3, 1), 13},
		{"born today", date(2020, 1, 1), date(2020, 1, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeOn(tt.birth, tt.today); got != tt.want {
				t.Errorf("AgeOn() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsOldEnough_Boundary(t *testing.T) {
	today := date(2026, 10, 18)

	if !IsOldEnough(today.AddDate(-13, 0, 0), today) {
		t.Error("Exactly 13 years old should be accepted")
	}
	if IsOldEnough(today.AddDate(-13, 0, 1), today) {
		t.Error("One day short of 13 should be rejected")
	}
}

func TestCustomRuleTable(t *testing.T) {
	validator := NewFieldValidatorWithRules([]FieldRules{
		{Field: "code", Rules: []Rule{
			{Check: notBlank, Message: "code is required"},
			{Check: func(v string) bool { return len(v) == 3 }, Message: "code must be 3 characters"},
		}},
	})

	if errs := validator.Validate(models.RawRow{"code": ""}); !reflect.DeepEqual(errs, []string{"code is required"}) {
		t.Errorf("Expected only the first failing rule per field, got %v", errs)
	}
	if errs := validator.Validate(models.RawRow{"code": "abcd"}); !reflect.DeepEqual(errs, []string{"code must be 3 characters"}) {
		t.Errorf("Unexpected errors %v", errs)
	}
}
