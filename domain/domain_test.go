package domain

import (
	"errors"
	"testing"
)

func TestNormalizeBoardName(t *testing.T) {
	name, err := NormalizeBoardName("  Work  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Work" {
		t.Fatalf("expected trimmed name, got %q", name)
	}
}

func TestNormalizeBoardNameEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := NormalizeBoardName(raw)
		var verr ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %q, got %v", raw, err)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	email, err := NormalizeEmail("  A@X.Com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email != "a@x.com" {
		t.Fatalf("unexpected email: %q", email)
	}
}

func TestNormalizeEmailRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "no-at-sign", "a@", "Bob <a@x.com>"} {
		if _, err := NormalizeEmail(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Fatal("expected error for short password")
	}
	if err := ValidatePassword("secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTodoPatchValidateTrims(t *testing.T) {
	title := "  Buy milk "
	desc := " note "
	p := TodoPatch{Title: &title, Description: &desc}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *p.Title != "Buy milk" {
		t.Fatalf("expected trimmed title, got %q", *p.Title)
	}
	if *p.Description != "note" {
		t.Fatalf("expected trimmed description, got %q", *p.Description)
	}
}

func TestTodoPatchValidateBlankTitle(t *testing.T) {
	title := "   "
	p := TodoPatch{Title: &title}
	var verr ValidationError
	if err := p.Validate(); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTodoPatchApplySubset(t *testing.T) {
	done := true
	todo := Todo{Title: "Buy milk", Description: "2%", Completed: false}
	p := TodoPatch{Completed: &done}
	p.Apply(&todo)
	if !todo.Completed {
		t.Fatal("expected completed to be set")
	}
	if todo.Title != "Buy milk" || todo.Description != "2%" {
		t.Fatalf("untouched fields changed: %+v", todo)
	}
}

func TestTodoPatchEmpty(t *testing.T) {
	p := TodoPatch{}
	if !p.Empty() {
		t.Fatal("expected empty patch")
	}
	done := false
	p.Completed = &done
	if p.Empty() {
		t.Fatal("patch with completed=false must not be empty")
	}
}
