// Package deck reads flashcard decks from YAML, JSONL, CSV and Excel files.
package deck

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Card is one imported front/back pair.
type Card struct {
	Front string `yaml:"front" json:"front"`
	Back  string `yaml:"back" json:"back"`
}

// Deck is a titled list of cards ready to become a set.
type Deck struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Cards       []Card `yaml:"cards"`
	Skipped     int    `yaml:"-"`
}

// ParseFile reads a deck, choosing the format from the file extension.
// Decks without a title are named after the file.
func ParseFile(path string) (*Deck, error) {
	var (
		d   *Deck
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		d, err = parseYAMLFile(path)
	case ".jsonl":
		d, err = parseJSONLFile(path)
	case ".csv":
		d, err = parseCSVFile(path)
	case ".xlsx":
		d, err = parseExcelFile(path)
	default:
		return nil, fmt.Errorf("unsupported deck format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(d.Title) == "" {
		d.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// add appends a card if both sides are present, counting it as skipped
// otherwise.
func (d *Deck) add(front, back string) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" || back == "" {
		d.Skipped++
		return
	}
	d.Cards = append(d.Cards, Card{Front: front, Back: back})
}
