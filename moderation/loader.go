package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"relay-lab/errors"
)

//go:embed words/*.txt
var wordFiles embed.FS

// Wordlist carries the merged blacklist plus metadata for logging.
type Wordlist struct {
	Words     []string
	Languages []string
}

// LoadWordlist parses the embedded per-language dictionaries (one word per
// line, "fr.txt" -> "fr") into a unique word list.
func LoadWordlist() (*Wordlist, error) {
	entries, err := fs.ReadDir(wordFiles, "words")
	if err != nil {
		return nil, err
	}

	var languages []string
	unique := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := wordFiles.ReadFile("words/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// A scanner handles both \n and \r\n line endings.
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			unique[line] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(unique) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(unique))
	for word := range unique {
		words = append(words, word)
	}
	return &Wordlist{Words: words, Languages: languages}, nil
}
