// Package match scores an uploaded file against existing documents to decide whether
// it is a new version of one of them.
package match

import (
	"context"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"policytrack/internal/model"
)

// numberScanChars bounds how much leading text is searched for a document number.
const numberScanChars = 2000

// Config carries signal weights, firing floors and tier cutoffs.
type Config struct {
	SupersedesWeight     int
	DocumentNumberWeight int
	FilenameWeight       int
	TitleWeight          int
	FilenameFloor        int
	TitleFloor           int
	HighCutoff           int
	MediumCutoff         int
	LowCutoff            int
	Limit                int
}

// DefaultConfig returns the stock weights and cutoffs.
func DefaultConfig() Config {
	return Config{
		SupersedesWeight:     60,
		DocumentNumberWeight: 50,
		FilenameWeight:       40,
		TitleWeight:          30,
		FilenameFloor:        8,
		TitleFloor:           6,
		HighCutoff:           70,
		MediumCutoff:         40,
		LowCutoff:            20,
		Limit:                3,
	}
}

// Upload is the file being matched. Text may be empty when extraction failed.
type Upload struct {
	Filename string
	Text     string
}

// Scorer computes match scores. It holds no state beyond its configuration and is
// safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer.
func NewScorer(cfg Config) *Scorer {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	return &Scorer{cfg: cfg}
}

// Score evaluates every signal of the upload against one candidate. It returns nil
// when the summed score falls below the low tier.
func (s *Scorer) Score(up Upload, candidate model.Document) *model.MatchResult {
	var signals []model.MatchSignal

	if sig, ok := s.supersedesSignal(up, candidate); ok {
		signals = append(signals, sig)
	}
	if sig, ok := s.documentNumberSignal(up, candidate); ok {
		signals = append(signals, sig)
	}
	if sig, ok := s.filenameSignal(up, candidate); ok {
		signals = append(signals, sig)
	}
	if sig, ok := s.titleSignal(up, candidate); ok {
		signals = append(signals, sig)
	}

	score := 0
	for _, sig := range signals {
		score += sig.Weight
	}
	conf, ok := s.tier(score)
	if !ok {
		return nil
	}
	return &model.MatchResult{
		Document: model.MatchTarget{
			ID:        candidate.ID,
			Name:      candidate.Name,
			ShortCode: candidate.ShortCode,
		},
		Score:      score,
		Confidence: conf,
		Signals:    signals,
	}
}

// Rank scores all candidates in parallel and returns the best matches, highest score
// first, ties broken by document name.
func (s *Scorer) Rank(ctx context.Context, up Upload, candidates []model.Document) ([]model.MatchResult, error) {
	scored := make([]*model.MatchResult, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scored[i] = s.Score(up, candidates[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	results := make([]model.MatchResult, 0, len(candidates))
	for _, r := range scored {
		if r != nil {
			results = append(results, *r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.Name < results[j].Document.Name
	})
	if len(results) > s.cfg.Limit {
		results = results[:s.cfg.Limit]
	}
	return results, nil
}

func (s *Scorer) tier(score int) (model.Confidence, bool) {
	switch {
	case score >= s.cfg.HighCutoff:
		return model.ConfidenceHigh, true
	case score >= s.cfg.MediumCutoff:
		return model.ConfidenceMedium, true
	case score >= s.cfg.LowCutoff:
		return model.ConfidenceLow, true
	}
	return "", false
}

func (s *Scorer) supersedesSignal(up Upload, c model.Document) (model.MatchSignal, bool) {
	if up.Text == "" || c.ShortCode == "" {
		return model.MatchSignal{}, false
	}
	named, ok := ExtractSupersedes(up.Text)
	if !ok {
		return model.MatchSignal{}, false
	}
	own, ok := ExtractDocumentNumber(c.ShortCode)
	if !ok || !named.Equal(own) {
		return model.MatchSignal{}, false
	}
	return model.MatchSignal{
		Type:   model.SignalSupersedes,
		Weight: s.cfg.SupersedesWeight,
		Detail: fmt.Sprintf("upload supersedes %s", named.Raw),
	}, true
}

func (s *Scorer) documentNumberSignal(up Upload, c model.Document) (model.MatchSignal, bool) {
	num, ok := ExtractDocumentNumber(stripTimestamp(up.Filename))
	if !ok {
		num, ok = ExtractDocumentNumber(leading(up.Text, numberScanChars))
	}
	if !ok {
		return model.MatchSignal{}, false
	}

	own, ok := ExtractDocumentNumber(c.ShortCode)
	if !ok {
		own, ok = ExtractDocumentNumber(c.Name)
	}
	if !ok || !num.Equal(own) {
		return model.MatchSignal{}, false
	}
	return model.MatchSignal{
		Type:   model.SignalDocumentNumber,
		Weight: s.cfg.DocumentNumberWeight,
		Detail: fmt.Sprintf("document number %s", num.Raw),
	}, true
}

func (s *Scorer) filenameSignal(up Upload, c model.Document) (model.MatchSignal, bool) {
	theirs := candidateFilename(c)
	if up.Filename == "" || theirs == "" {
		return model.MatchSignal{}, false
	}
	sim := Similarity(NormalizeFilename(up.Filename), NormalizeFilename(theirs))
	w := weigh(sim, s.cfg.FilenameWeight)
	if w <= s.cfg.FilenameFloor {
		return model.MatchSignal{}, false
	}
	return model.MatchSignal{
		Type:   model.SignalFilename,
		Weight: w,
		Detail: fmt.Sprintf("filename %d%% similar to %s", percent(sim), theirs),
	}, true
}

func (s *Scorer) titleSignal(up Upload, c model.Document) (model.MatchSignal, bool) {
	title, ok := ExtractTitle(up.Text)
	if !ok {
		title = NormalizeFilename(up.Filename)
	}
	if title == "" || c.Name == "" {
		return model.MatchSignal{}, false
	}
	sim := Similarity(normalizeTitle(title), normalizeTitle(c.Name))
	w := weigh(sim, s.cfg.TitleWeight)
	if w <= s.cfg.TitleFloor {
		return model.MatchSignal{}, false
	}
	return model.MatchSignal{
		Type:   model.SignalTitle,
		Weight: w,
		Detail: fmt.Sprintf("title %q %d%% similar", title, percent(sim)),
	}, true
}

// candidateFilename is the upload name of the candidate's current version, falling
// back to its newest version.
func candidateFilename(c model.Document) string {
	if v, ok := c.Current(); ok && v.Filename != "" {
		return v.Filename
	}
	sorted := c.SortedVersions()
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Filename != "" {
			return sorted[i].Filename
		}
	}
	return ""
}

func stripTimestamp(name string) string {
	return timestampPrefix.ReplaceAllString(name, "")
}

func leading(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func weigh(sim float64, max int) int {
	return int(math.Round(sim * float64(max)))
}

func percent(sim float64) int {
	return int(math.Round(sim * 100))
}
