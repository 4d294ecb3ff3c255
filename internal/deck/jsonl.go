package deck

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

func parseJSONLFile(path string) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()
	return ParseJSONL(f)
}

// ParseJSONL reads one {"front": ..., "back": ...} object per line.
// Blank lines are ignored and malformed lines are counted as skipped.
func ParseJSONL(r io.Reader) (*Deck, error) {
	d := &Deck{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024) // 1MB line buffer

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var c Card
		if err := json.Unmarshal(line, &c); err != nil {
			d.Skipped++
			continue
		}
		d.add(c.Front, c.Back)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan deck: %w", err)
	}
	return d, nil
}
