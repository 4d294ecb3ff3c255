package engine

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParsePlanningOffset(t *testing.T) {
	tests := []struct {
		raw     string
		offset  float64
		filter  bool
		wantErr bool
	}{
		{"", 0, false, false},
		{"false", 0, false, false},
		{"true", 0, true, false},
		{"TRUE", 0, true, false},
		{"0", 0, true, false},
		{"5", 5, true, false},
		{" 2.5 ", 2.5, true, false},
		{"-1", 0, false, true},
		{"soon", 0, false, true},
		{"NaN", 0, false, true},
		{"Inf", 0, false, true},
		{"1e9", maxPlanningDays, true, false},
	}

	for _, tt := range tests {
		offset, filter, err := ParsePlanningOffset(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePlanningOffset(%q): expected error", tt.raw)
			} else if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParsePlanningOffset(%q): error %v is not ErrInvalidInput", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePlanningOffset(%q): unexpected error: %v", tt.raw, err)
			continue
		}
		if offset != tt.offset || filter != tt.filter {
			t.Errorf("ParsePlanningOffset(%q) = (%v, %v), want (%v, %v)", tt.raw, offset, filter, tt.offset, tt.filter)
		}
	}
}

func TestClampPoints(t *testing.T) {
	tests := []struct{ in, want int }{
		{-4, 0}, {0, 0}, {7, 7}, {10, 10}, {11, 10}, {99, 10},
	}
	for _, tt := range tests {
		if got := ClampPoints(tt.in, DefaultMaxPoints); got != tt.want {
			t.Errorf("ClampPoints(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSetInputValidate(t *testing.T) {
	in, err := SetInput{Title: "  Spanish verbs  ", Description: " irregular ones "}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Title != "Spanish verbs" || in.Description != "irregular ones" {
		t.Errorf("trimmed = %+v", in)
	}

	if _, err := (SetInput{Title: "   "}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty title: err = %v, want ErrInvalidInput", err)
	}

	long := strings.Repeat("word ", 100)
	in, err = SetInput{Title: long}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(in.Title) > maxTitleChars {
		t.Errorf("title length = %d, want ≤ %d", len(in.Title), maxTitleChars)
	}
}

func TestCardInputValidate(t *testing.T) {
	if _, err := (CardInput{Front: "hola", Back: ""}).Validate(); err == nil {
		t.Error("expected error for missing back")
	}
	if _, err := (CardInput{Front: " ", Back: "hello"}).Validate(); err == nil {
		t.Error("expected error for missing front")
	}
	in, err := CardInput{Front: " hola ", Back: " hello "}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Front != "hola" || in.Back != "hello" {
		t.Errorf("trimmed = %+v", in)
	}
}

func TestReviewInputValidate(t *testing.T) {
	if err := (ReviewInput{}).Validate(); err == nil {
		t.Error("expected error for missing correct")
	}
	no := false
	if err := (ReviewInput{Correct: &no}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTruncateClean(t *testing.T) {
	s := "hello world this is a test string"
	result := truncateClean(s, 15)
	if len(result) > 15 {
		t.Errorf("truncateClean result too long: %d", len(result))
	}
	if strings.HasSuffix(result, " ") {
		t.Error("truncated result has trailing space")
	}
}

func TestValidateMultiByteLimits(t *testing.T) {
	// 100 characters, 300 bytes: inside the limit, kept as is.
	short := strings.Repeat("漢", 100)
	in, err := SetInput{Title: short}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Title != short {
		t.Errorf("title under the character limit was changed: %d chars", utf8.RuneCountInString(in.Title))
	}

	in, err = SetInput{Title: strings.Repeat("漢", maxTitleChars+50)}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(in.Title) {
		t.Errorf("truncated title is not valid UTF-8: %q", in.Title[len(in.Title)-3:])
	}
	if n := utf8.RuneCountInString(in.Title); n != maxTitleChars {
		t.Errorf("title = %d chars, want %d", n, maxTitleChars)
	}

	card, err := CardInput{Front: strings.Repeat("é", maxCardChars+1), Back: "ok"}.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(card.Front) || utf8.RuneCountInString(card.Front) != maxCardChars {
		t.Errorf("front = %d chars, valid = %v", utf8.RuneCountInString(card.Front), utf8.ValidString(card.Front))
	}
}

func TestTruncateCleanRunes(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"ab 漢漢漢漢漢", 6, "ab 漢漢漢"},
		{"日本語 の 単語帳です", 8, "日本語 の"},
		{"ça va très bien", 9, "ça va"},
		{"naïve", 10, "naïve"},
	}
	for _, tt := range tests {
		got := truncateClean(tt.in, tt.limit)
		if got != tt.want {
			t.Errorf("truncateClean(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncateClean(%q, %d) is not valid UTF-8", tt.in, tt.limit)
		}
	}
}
