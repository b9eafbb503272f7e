// Package dataset loads the reference corpus of known game titles used
// by the similarity matcher. The corpus is a CSV export of a games
// catalog; only the title column is of interest, and its header name
// varies by source.
package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// Candidate header names for the game title column, in priority order.
var nameColumns = []string{"name", "title", "game_title", "game_name", "product_name"}

// fallbackTitles keeps the matcher functional when no dataset is
// available.
var fallbackTitles = []string{
	"Counter-Strike: Global Offensive",
	"Dota 2",
	"The Witcher 3: Wild Hunt",
	"Cyberpunk 2077",
	"Half-Life 2",
	"Portal 2",
	"Stardew Valley",
	"Terraria",
	"Hades",
	"Celeste",
}

type record struct {
	Name        string `csv:"name"`
	Title       string `csv:"title"`
	GameTitle   string `csv:"game_title"`
	GameName    string `csv:"game_name"`
	ProductName string `csv:"product_name"`
}

func (r record) title() string {
	for _, v := range []string{r.Name, r.Title, r.GameTitle, r.GameName, r.ProductName} {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

// Load reads game titles from the CSV at path. A missing, empty or
// unreadable dataset degrades to the built-in fallback titles rather
// than failing startup.
func Load(path string) []string {
	titles, err := load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("game dataset unavailable, using fallback titles")
		return fallbackTitles
	}
	if len(titles) == 0 {
		log.Warn().Str("path", path).Msg("game dataset has no usable titles, using fallback titles")
		return fallbackTitles
	}
	log.Info().Int("titles", len(titles)).Str("path", path).Msg("loaded game dataset")
	return titles
}

func load(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("load: no dataset path configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	// Header casing varies between catalog exports; gocsv matches tags
	// exactly, so lowercase the header line before unmarshalling.
	lines := strings.SplitN(string(data), "\n", 2)
	if len(lines) == 2 {
		data = []byte(strings.ToLower(lines[0]) + "\n" + lines[1])
	}

	var records []record
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	titles := make([]string, 0, len(records))
	for _, r := range records {
		t := r.title()
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
	}
	return titles, nil
}
