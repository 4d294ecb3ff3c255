package deck

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

func parseYAMLFile(path string) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()
	return ParseYAML(f)
}

// ParseYAML decodes a deck document with title, description and cards.
func ParseYAML(r io.Reader) (*Deck, error) {
	var raw Deck
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return &Deck{}, nil
		}
		return nil, fmt.Errorf("decode yaml deck: %w", err)
	}

	d := &Deck{Title: raw.Title, Description: raw.Description}
	for _, c := range raw.Cards {
		d.add(c.Front, c.Back)
	}
	return d, nil
}
