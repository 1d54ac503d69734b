package httpx

import (
	"strings"
	"testing"
)

type testPayload struct {
	Email  string `validate:"required,email"`
	Name   string `validate:"required,notblank,max=10"`
	Year   int    `validate:"omitempty,gte=1450,lte=2100"`
	Author string `validate:"omitempty,min=2"`
}

func TestValidateStruct_ValidInput(t *testing.T) {
	s := testPayload{
		Email: "ada@example.com",
		Name:  "Ada",
		Year:  1843,
	}

	errors := ValidateStruct(s)
	if len(errors) != 0 {
		t.Errorf("Expected no validation errors, got %v", errors)
	}
}

func TestValidateStruct_RequiredFields(t *testing.T) {
	errors := ValidateStruct(testPayload{})
	if len(errors) == 0 {
		t.Fatal("Expected validation errors for required fields")
	}

	hasEmailError := false
	hasNameError := false
	for _, err := range errors {
		if err.Field == "email" && strings.Contains(err.Message, "required") {
			hasEmailError = true
		}
		if err.Field == "name" && strings.Contains(err.Message, "required") {
			hasNameError = true
		}
	}

	if !hasEmailError {
		t.Error("Expected email required error")
	}
	if !hasNameError {
		t.Error("Expected name required error")
	}
}

func TestValidateStruct_NotBlank(t *testing.T) {
	errors := ValidateStruct(testPayload{Email: "ada@example.com", Name: "   "})

	found := false
	for _, err := range errors {
		if err.Field == "name" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected whitespace-only name to fail, got %v", errors)
	}
}

func TestValidateStruct_EmailFormat(t *testing.T) {
	errors := ValidateStruct(testPayload{Email: "invalid-email", Name: "Ada"})

	hasEmailFormatError := false
	for _, err := range errors {
		if err.Field == "email" && strings.Contains(err.Message, "valid email") {
			hasEmailFormatError = true
		}
	}
	if !hasEmailFormatError {
		t.Error("Expected email format validation error")
	}
}

func TestValidateStruct_YearRange(t *testing.T) {
	testCases := []struct {
		year  int
		valid bool
	}{
		{0, true},
		{1450, true},
		{2024, true},
		{1200, false},
		{3000, false},
	}

	for _, tc := range testCases {
		errors := ValidateStruct(testPayload{Email: "ada@example.com", Name: "Ada", Year: tc.year})

		hasYearError := false
		for _, err := range errors {
			if err.Field == "year" {
				hasYearError = true
			}
		}

		if tc.valid && hasYearError {
			t.Errorf("Year %d should be valid but got error", tc.year)
		}
		if !tc.valid && !hasYearError {
			t.Errorf("Year %d should be invalid but no error", tc.year)
		}
	}
}

func TestValidateStruct_Length(t *testing.T) {
	errors := ValidateStruct(testPayload{Email: "ada@example.com", Name: "A very long name", Author: "X"})

	var messages []string
	for _, err := range errors {
		messages = append(messages, err.Field+": "+err.Message)
	}
	joined := strings.Join(messages, "; ")

	if !strings.Contains(joined, "name: Name must be at most 10 characters") {
		t.Errorf("Expected max length error, got %s", joined)
	}
	if !strings.Contains(joined, "author: Author must be at least 2 characters") {
		t.Errorf("Expected min length error, got %s", joined)
	}
}
