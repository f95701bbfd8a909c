package validator

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
)

type signupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=5"`
}

func TestFormatValidationErrorUsesJSONNames(t *testing.T) {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	err := v.Struct(signupInput{Email: "nope", Username: "far-too-long"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	verr := FormatValidationError(err)
	if got := verr.Fields["email"]; got != "enter a valid email address" {
		t.Errorf("email message = %q", got)
	}
	if got := verr.Fields["username"]; got != "ensure this field has no more than 5 characters" {
		t.Errorf("username message = %q", got)
	}
}

func TestFormatValidationErrorTypeMismatch(t *testing.T) {
	var body struct {
		User uint `json:"user"`
	}
	err := json.Unmarshal([]byte(`{"user":"abc"}`), &body)
	if err == nil {
		t.Fatal("expected unmarshal error")
	}

	verr := FormatValidationError(err)
	if _, ok := verr.Fields["user"]; !ok {
		t.Errorf("fields = %v, want key user", verr.Fields)
	}
}
