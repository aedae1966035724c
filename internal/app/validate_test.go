package app_test

import (
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestValidatePlayer(t *testing.T) {
	v := app.NewValidator()

	if err := v.Struct(domain.Player{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}); err != nil {
		t.Fatalf("expected valid player, got %v", err)
	}

	err := v.Struct(domain.Player{FirstName: "A", LastName: "", Email: "ada@example"})
	verr, ok := app.IsValidationError(err)
	if !ok {
		t.Fatalf("expected a validation error, got %v", err)
	}
	want := map[string]string{
		"first_name": "minimum 2 characters",
		"last_name":  "is required",
		"email":      "invalid email address",
	}
	for field, msg := range want {
		if verr.Fields[field] != msg {
			t.Fatalf("%s: expected %q, got %q", field, msg, verr.Fields[field])
		}
	}
}

func TestValidateSessionConfig(t *testing.T) {
	v := app.NewValidator()

	if err := v.Struct(mediumConfig(10)); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	err := v.Struct(domain.SessionConfig{Category: 9, Difficulty: "extreme", Type: domain.TypeBoolean, Amount: 51})
	verr, ok := app.IsValidationError(err)
	if !ok {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if _, ok := verr.Fields["difficulty"]; !ok {
		t.Fatalf("expected difficulty error, got %+v", verr.Fields)
	}
	if verr.Fields["amount"] != "must be at most 50" {
		t.Fatalf("unexpected amount error %q", verr.Fields["amount"])
	}
	if _, ok := verr.Fields["category"]; ok {
		t.Fatalf("category 9 is valid")
	}
}
