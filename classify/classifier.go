// Package classify decides whether an executable is a game. Two
// signals feed the decision: fuzzy title similarity against a corpus
// of known game names, and a heuristic score over runtime resource
// usage. The heuristic verdict is authoritative; similarity alone
// never marks something as a game.
package classify

import (
	"errors"
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/generalpy101/fix-life/query"
	"github.com/generalpy101/fix-life/snapshot"
)

// ErrNotAProcess is returned by IsGame when handed something that is
// not a resolvable process handle. This is a programmer error, not a
// transient access failure.
var ErrNotAProcess = errors.New("classify: not a valid process handle")

// MatchThreshold is the minimum normalized similarity for a title match.
const MatchThreshold = 0.75

// gameKeywords hint that an exe name belongs to a game even without a
// corpus match.
var gameKeywords = []string{"game", "steam", "crack", "repack", "gog", "epic", "valve", "launcher"}

// Build-artifact tokens that pollute exe names and never appear in
// titles.
var noiseTokens = regexp.MustCompile(`\b(win64|shipping|x64|x86|release|debug)\b`)

var separators = strings.NewReplacer("_", " ", "-", " ", ".", " ")

var spaces = regexp.MustCompile(`\s+`)

type matchKind int

const (
	matchNone matchKind = iota
	matchTitle
	matchKeyword
)

// Classifier classifies executables and records the verdicts in the
// ledger.
type Classifier struct {
	db       *query.Database
	sampler  Sampler
	excluded map[string]struct{}
	titles   []string
	log      zerolog.Logger
}

// NewClassifier builds a classifier over the given title corpus.
// Titles are normalized once here so matching does not re-do it per
// process. An empty excluded list falls back to DefaultExcluded.
func NewClassifier(db *query.Database, titles []string, sampler Sampler, excluded []string) *Classifier {
	if len(excluded) == 0 {
		excluded = DefaultExcluded
	}
	excludedSet := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		excludedSet[strings.ToLower(name)] = struct{}{}
	}

	normalized := make([]string, 0, len(titles))
	for _, title := range titles {
		if t := normalizeExeName(title); t != "" {
			normalized = append(normalized, t)
		}
	}

	return &Classifier{
		db:       db,
		sampler:  sampler,
		excluded: excludedSet,
		titles:   normalized,
		log:      log.With().Str("component", "classifier").Logger(),
	}
}

// Classify evaluates every executable not yet present in the ledger
// and upserts its verdict with user_marked=false. Already-classified
// executables are skipped without re-evaluation; per-process failures
// are logged and the loop continues.
func (c *Classifier) Classify(procs []snapshot.Process) {
	for _, p := range procs {
		if p == nil {
			continue
		}
		name := p.Name()
		if name == "" {
			continue
		}

		classified, err := c.db.IsClassified(name)
		if err != nil {
			c.log.Error().Err(err).Str("exe", name).Msg("classification lookup failed")
			continue
		}
		if classified {
			c.log.Debug().Str("exe", name).Msg("already classified, skipping")
			continue
		}

		kind, match, score := c.similarTitle(name)
		switch kind {
		case matchTitle:
			c.log.Info().Str("exe", name).Str("match", match).Float64("score", score).
				Msg("title match")
		case matchKeyword:
			c.log.Info().Str("exe", name).Float64("score", score).
				Msg("keyword hint, might be a game")
		}

		// The heuristic verdict is final: a title match without
		// heuristic confirmation stays non-game.
		label, heuristicScore := c.classifyProcess(p)
		isGame := label == LabelGame
		c.log.Info().Str("exe", name).Str("label", label).
			Float64("heuristic_score", heuristicScore).Bool("is_game", isGame).
			Msg("classified")

		if err := c.db.UpsertClassification(name, isGame, false); err != nil {
			c.log.Error().Err(err).Str("exe", name).Msg("failed to store classification")
		}
	}
}

// classifyProcess runs the heuristic scorer. Excluded processes and
// processes that vanish mid-scoring come back as non-game with score
// zero, never as errors.
func (c *Classifier) classifyProcess(p snapshot.Process) (string, float64) {
	if _, excluded := c.excluded[strings.ToLower(p.Name())]; excluded {
		return LabelNonGame, 0
	}
	sample, err := c.sampler.Sample(p)
	if err != nil {
		return LabelNonGame, 0
	}
	score := Score(sample)
	return Label(score), score
}

// similarTitle finds the best corpus match for an exe name. It returns
// matchTitle above the threshold, matchKeyword when only a name
// keyword hints at a game, matchNone otherwise.
func (c *Classifier) similarTitle(exeName string) (matchKind, string, float64) {
	clean := normalizeExeName(exeName)
	if clean == "" {
		return matchNone, "", 0
	}

	best := ""
	bestScore := 0.0
	for _, title := range c.titles {
		score := float64(edlib.JaroWinklerSimilarity(clean, title))
		if score > bestScore {
			best = title
			bestScore = score
		}
	}

	if bestScore >= MatchThreshold {
		return matchTitle, best, bestScore
	}
	for _, kw := range gameKeywords {
		if strings.Contains(clean, kw) {
			return matchKeyword, "", bestScore
		}
	}
	return matchNone, "", bestScore
}

// IsGame is a pure ledger lookup for the exe name behind a process
// handle. A nil handle is a programmer error and fails loudly.
func (c *Classifier) IsGame(p snapshot.Process) (bool, error) {
	if p == nil {
		return false, ErrNotAProcess
	}
	name := p.Name()
	if name == "" {
		return false, nil
	}
	return c.db.GetIsGame(name)
}

// normalizeExeName lowercases, strips the executable extension, turns
// separator characters into spaces and drops build-artifact tokens.
func normalizeExeName(name string) string {
	clean := strings.ToLower(name)
	for _, ext := range []string{".exe", ".app", ".bin"} {
		clean = strings.TrimSuffix(clean, ext)
	}
	clean = separators.Replace(clean)
	clean = noiseTokens.ReplaceAllString(clean, "")
	clean = spaces.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}
