package engine

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Content size limits.
const (
	maxTitleChars       = 200
	maxDescriptionChars = 2000
	maxCardChars        = 4000
	maxPlanningDays     = 36500
)

// ErrInvalidInput marks request values rejected at the boundary.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// SetInput is the validated body of a set create or update.
type SetInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate trims the set fields and rejects an empty title.
// Oversized text is truncated rather than rejected.
func (in SetInput) Validate() (SetInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return in, invalid("title required")
	}
	if n := utf8.RuneCountInString(in.Title); n > maxTitleChars {
		log.Printf("validate: truncating title (%d → %d chars)", n, maxTitleChars)
		in.Title = truncateClean(in.Title, maxTitleChars)
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionChars {
		in.Description = truncateClean(in.Description, maxDescriptionChars)
	}
	return in, nil
}

// CardInput is the validated body of a card create or update.
type CardInput struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Validate trims both sides and rejects a card missing either.
func (in CardInput) Validate() (CardInput, error) {
	in.Front = strings.TrimSpace(in.Front)
	in.Back = strings.TrimSpace(in.Back)
	if in.Front == "" {
		return in, invalid("front required")
	}
	if in.Back == "" {
		return in, invalid("back required")
	}
	if utf8.RuneCountInString(in.Front) > maxCardChars {
		in.Front = truncateClean(in.Front, maxCardChars)
	}
	if utf8.RuneCountInString(in.Back) > maxCardChars {
		in.Back = truncateClean(in.Back, maxCardChars)
	}
	return in, nil
}

// ReviewInput is the body of a study submission. Correct is a pointer so
// a missing field is distinguishable from false.
type ReviewInput struct {
	Correct *bool `json:"correct"`
}

// Validate requires the answer outcome.
func (in ReviewInput) Validate() error {
	if in.Correct == nil {
		return invalid("correct required")
	}
	return nil
}

// ParsePlanningOffset reads the due query parameter. An empty value means
// no due filter. "true" filters with offset 0; a non-negative number
// filters with that many days of look-ahead.
func ParsePlanningOffset(raw string) (offset float64, filter bool, err error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "false":
		return 0, false, nil
	case "true":
		return 0, true, nil
	}

	offset, err = strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return 0, false, invalid("due must be true or a number of days, got %q", raw)
	}
	if offset < 0 {
		return 0, false, invalid("due offset must be non-negative, got %v", offset)
	}
	if offset > maxPlanningDays {
		offset = maxPlanningDays
	}
	return offset, true, nil
}

// ClampPoints bounds a stored mastery level to [0, limit].
func ClampPoints(points, limit int) int {
	if points < 0 {
		return 0
	}
	if points > limit {
		return limit
	}
	return points
}

// truncateClean truncates a string to maxLen characters, cutting at the last
// word boundary to avoid mid-word breaks. The cut never splits a character.
func truncateClean(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)[:maxLen]
	if idx := lastSpace(runes); idx > maxLen/2 {
		runes = runes[:idx]
	}
	return strings.TrimSpace(string(runes))
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
