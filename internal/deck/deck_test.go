package deck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	doc := `
title: Spanish verbs
description: present tense
cards:
  - front: hablar
    back: to speak
  - front: comer
    back: to eat
  - front: vivir
    back: ""
`
	d, err := ParseYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if d.Title != "Spanish verbs" || d.Description != "present tense" {
		t.Errorf("header = %q / %q", d.Title, d.Description)
	}
	if len(d.Cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(d.Cards))
	}
	if d.Cards[1] != (Card{Front: "comer", Back: "to eat"}) {
		t.Errorf("cards[1] = %+v", d.Cards[1])
	}
	if d.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", d.Skipped)
	}
}

func TestParseJSONL(t *testing.T) {
	lines := `{"front":"H","back":"Hydrogen"}

{"front":"He","back":"Helium"}
not json
{"front":"Li"}`

	d, err := ParseJSONL(strings.NewReader(lines))
	if err != nil {
		t.Fatalf("ParseJSONL: %v", err)
	}
	if len(d.Cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(d.Cards))
	}
	if d.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", d.Skipped)
	}
}

func TestParseCSVHeader(t *testing.T) {
	d, err := ParseCSV(strings.NewReader("front,back\nParis,France\nRome, Italy\nBerlin\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(d.Cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(d.Cards))
	}
	if d.Cards[1].Back != "Italy" {
		t.Errorf("cards[1].Back = %q, want Italy", d.Cards[1].Back)
	}
	if d.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", d.Skipped)
	}
}

func TestParseCSVNoHeader(t *testing.T) {
	d, err := ParseCSV(strings.NewReader("Paris,France\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(d.Cards) != 1 {
		t.Errorf("cards = %d, want 1", len(d.Cards))
	}
}

func TestParseFileTitleFromName(t *testing.T) {
	path := writeFile(t, "elements.jsonl", `{"front":"H","back":"Hydrogen"}`)
	d, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if d.Title != "elements" {
		t.Errorf("title = %q, want elements", d.Title)
	}
}

func TestParseFileUnsupported(t *testing.T) {
	path := writeFile(t, "deck.txt", "x")
	if _, err := ParseFile(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestParseFileExcel(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Capitals"); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	rows := [][]string{{"Front", "Back"}, {"Paris", "France"}, {"Madrid", "Spain"}}
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue("Capitals", cell, v); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "capitals.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	d, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if d.Title != "Capitals" {
		t.Errorf("title = %q, want Capitals", d.Title)
	}
	if len(d.Cards) != 2 || d.Cards[0].Front != "Paris" {
		t.Errorf("cards = %+v", d.Cards)
	}
}
