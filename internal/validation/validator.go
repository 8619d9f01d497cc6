package validation

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/user-import-api/internal/models"
)

// Rule messages. Wording is part of the API contract.
const (
	MsgFirstNameRequired = "First name is required"
	MsgLastNameRequired  = "Last name is required"
	MsgEmailInvalid      = "Email must be a valid email address"
	MsgBirthdateInvalid  = "Birthdate must be a valid date string"
	MsgPhoneInvalid      = "Phone number must be 7-15 digits with optional + prefix"

	MsgDuplicateInBatch = "Duplicate email in this upload"
	MsgDuplicateInStore = "Email already exists in database"
	MsgUnderage         = "User must be at least 13 years old"
	MsgUnexpected       = "Unknown validation error"
)

// MinimumAge is the youngest accepted age in whole years
const MinimumAge = 13

// ISODate is the layout birthdates are stored in
const ISODate = "2006-01-02"

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?\d{7,15}$`)

	// Accepted birthdate layouts, tried in order
	dateLayouts = []string{
		ISODate,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}

	errInvalidDate = errors.New("invalid date")
)

// Rule is a single predicate with the message reported when it fails
type Rule struct {
	Check   func(value string) bool
	Message string
}

// FieldRules binds an ordered list of rules to one field
type FieldRules struct {
	Field string
	Rules []Rule
}

// DefaultRules is the user record schema, in reporting order
var DefaultRules = []FieldRules{
	{Field: models.FieldFirstName, Rules: []Rule{{Check: notBlank, Message: MsgFirstNameRequired}}},
	{Field: models.FieldLastName, Rules: []Rule{{Check: notBlank, Message: MsgLastNameRequired}}},
	{Field: models.FieldEmail, Rules: []Rule{{Check: emailRegex.MatchString, Message: MsgEmailInvalid}}},
	{Field: models.FieldBirthdate, Rules: []Rule{{Check: isDate, Message: MsgBirthdateInvalid}}},
	{Field: models.FieldPhoneNumber, Rules: []Rule{{Check: phoneRegex.MatchString, Message: MsgPhoneInvalid}}},
}

// FieldValidator evaluates a rule table against raw rows
type FieldValidator struct {
	rules []FieldRules
}

// NewFieldValidator creates a validator for the default user schema
func NewFieldValidator() *FieldValidator {
	return NewFieldValidatorWithRules(DefaultRules)
}

// NewFieldValidatorWithRules creates a validator for a custom rule table
func NewFieldValidatorWithRules(rules []FieldRules) *FieldValidator {
	return &FieldValidator{rules: rules}
}

// Validate returns one message per failing field, in rule table order.
// An empty result means the row is structurally valid.
func (v *FieldValidator) Validate(row models.RawRow) []string {
	var errs []string
	for _, fr := range v.rules {
		value := strings.TrimSpace(row.Get(fr.Field))
		for _, rule := range fr.Rules {
			if !rule.Check(value) {
				errs = append(errs, rule.Message)
				break
			}
		}
	}
	return errs
}

// ParseDate parses a birthdate in any accepted layout.
// Impossible dates such as 2023-02-30 are rejected.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errInvalidDate
}

// AgeOn returns the number of whole years between birth and today, by calendar date.
// The birthday counts as reached on the day itself.
func AgeOn(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// IsOldEnough reports whether someone born on birth has reached MinimumAge by today
func IsOldEnough(birth, today time.Time) bool {
	return AgeOn(birth, today) >= MinimumAge
}

func notBlank(s string) bool {
	return s != ""
}

func isDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}
