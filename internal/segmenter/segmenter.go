package segmenter

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"clauselens/internal/domain"
)

// Config holds the segmentation thresholds. The values are hand-tuned;
// DefaultConfig matches the behavior the rest of the system is calibrated
// against.
type Config struct {
	// MinClauseLen is the minimum text length for an unnumbered clause
	// candidate; shorter ones are dropped as headers/artifacts.
	MinClauseLen int
	// NumberedMinLen is the lower floor applied to candidates that opened
	// with an explicit numbering pattern.
	NumberedMinLen int
	// MergeThreshold: clauses shorter than this merge into a same-type
	// immediate predecessor.
	MergeThreshold int
	// MaxClauses caps the total clause count; beyond it, clauses are
	// greedily merged into buckets of at least BucketSize characters.
	MaxClauses int
	// BucketSize is the minimum bucket length for the cap merge pass.
	BucketSize int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinClauseLen:   50,
		NumberedMinLen: 20,
		MergeThreshold: 200,
		MaxClauses:     50,
		BucketSize:     500,
	}
}

// Segmenter splits raw document text into ordered, typed clauses.
type Segmenter struct {
	cfg Config
}

// New creates a Segmenter. Zero-valued config fields fall back to defaults.
func New(cfg Config) *Segmenter {
	def := DefaultConfig()
	if cfg.MinClauseLen == 0 {
		cfg.MinClauseLen = def.MinClauseLen
	}
	if cfg.NumberedMinLen == 0 {
		cfg.NumberedMinLen = def.NumberedMinLen
	}
	if cfg.MergeThreshold == 0 {
		cfg.MergeThreshold = def.MergeThreshold
	}
	if cfg.MaxClauses == 0 {
		cfg.MaxClauses = def.MaxClauses
	}
	if cfg.BucketSize == 0 {
		cfg.BucketSize = def.BucketSize
	}
	return &Segmenter{cfg: cfg}
}

// paragraph is a contiguous slice of the source text with character offsets.
type paragraph struct {
	text  string
	start int
	end   int
}

// candidate is a grouped clause before post-processing.
type candidate struct {
	text     string
	title    string
	ctype    domain.ClauseType
	start    int
	end      int
	numbered bool
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// Segment splits text into 1-indexed Clause records for the given document.
// It returns domain.ErrNoClauses when the text yields nothing usable.
func (s *Segmenter) Segment(text string, docID uuid.UUID) ([]domain.Clause, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("segmenter.Segment: %w", domain.ErrNoClauses)
	}

	paras := splitParagraphs(text)
	cands := s.group(paras)
	cands = s.postProcess(cands)

	// Guaranteed survivor: if everything was discarded as noise, treat the
	// whole document as a single clause.
	if len(cands) == 0 {
		whole := strings.TrimSpace(text)
		cands = []candidate{{
			text:  whole,
			title: extractTitle(whole),
			ctype: classify(whole),
			start: 0,
			end:   len(text),
		}}
	}

	now := time.Now().UTC()
	clauses := make([]domain.Clause, 0, len(cands))
	for i, c := range cands {
		seq := i + 1
		clauses = append(clauses, domain.Clause{
			ID:              fmt.Sprintf("clause_%s_%03d", docID, seq),
			DocumentID:      docID,
			SequenceNumber:  seq,
			Title:           c.title,
			Text:            c.text,
			Type:            c.ctype,
			StartOffset:     c.start,
			EndOffset:       c.end,
			SeverityLevel:   3,
			SeverityColor:   domain.SeverityColor(3),
			RiskFactors:     domain.StringList{},
			ComplianceFlags: domain.StringList{},
			Recommendations: domain.StringList{},
			RelatedClauses:  domain.StringList{},
			ConfidenceScore: 0.5,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	log.Printf("segmenter.Segment: extracted %d clauses from document %s", len(clauses), docID)
	return clauses, nil
}

// splitParagraphs breaks text on blank-line boundaries, tracking each
// paragraph's offsets via first-occurrence search from a moving cursor.
// Duplicate paragraphs can make the search land on an earlier copy; the
// cursor fallback keeps offsets monotonic at the cost of exactness.
func splitParagraphs(text string) []paragraph {
	var paras []paragraph
	cursor := 0
	for _, raw := range paragraphSplit.Split(text, -1) {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		start := strings.Index(text[cursor:], p)
		if start == -1 {
			start = cursor
		} else {
			start += cursor
		}
		paras = append(paras, paragraph{text: p, start: start, end: start + len(p)})
		cursor = start + len(p)
	}
	return paras
}

// group walks paragraphs in order, opening a new clause at every detected
// clause start (the first paragraph always opens one) and appending the rest
// to the open clause.
func (s *Segmenter) group(paras []paragraph) []candidate {
	var cands []candidate
	var cur *candidate

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.text) != "" {
			if c, ok := s.finishCandidate(*cur); ok {
				cands = append(cands, c)
			}
		}
		cur = nil
	}

	for i, p := range paras {
		if i == 0 || isClauseStart(p.text) {
			flush()
			title, numbered := matchNumbering(p.text)
			cur = &candidate{
				text:     p.text,
				title:    title,
				start:    p.start,
				end:      p.end,
				numbered: numbered,
			}
			continue
		}
		cur.text += "\n\n" + p.text
		cur.end = p.end
	}
	flush()
	return cands
}

// finishCandidate applies the creation-time floor and resolves the title.
func (s *Segmenter) finishCandidate(c candidate) (candidate, bool) {
	c.text = strings.TrimSpace(c.text)
	if len(c.text) < s.cfg.NumberedMinLen {
		return candidate{}, false
	}
	if c.title == "" || len(c.title) > 100 {
		c.title = extractTitle(c.text)
	}
	c.ctype = classify(c.text)
	return c, true
}

// postProcess drops noise, merges over-fragmented neighbours and bounds the
// total clause count.
func (s *Segmenter) postProcess(cands []candidate) []candidate {
	var out []candidate
	for _, c := range cands {
		// Headers and artifacts are short and unnumbered. A numbered clause
		// is real even when terse, so it survives at the creation floor.
		if len(c.text) < s.cfg.MinClauseLen && !c.numbered {
			continue
		}
		if len(out) > 0 && len(c.text) < s.cfg.MergeThreshold &&
			out[len(out)-1].ctype == c.ctype {
			last := &out[len(out)-1]
			last.text += "\n\n" + c.text
			last.end = c.end
			continue
		}
		out = append(out, c)
	}

	if len(out) > s.cfg.MaxClauses {
		out = s.mergeIntoBuckets(out)
	}
	return out
}

// mergeIntoBuckets greedily accumulates clauses until each bucket reaches
// BucketSize characters, trading granularity for a bounded count.
func (s *Segmenter) mergeIntoBuckets(cands []candidate) []candidate {
	var merged []candidate
	var cur *candidate
	for _, c := range cands {
		c := c
		switch {
		case cur == nil:
			cur = &c
		case len(cur.text) < s.cfg.BucketSize:
			cur.text += "\n\n" + c.text
			cur.end = c.end
		default:
			merged = append(merged, *cur)
			cur = &c
		}
	}
	if cur != nil {
		merged = append(merged, *cur)
	}
	return merged
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// extractTitle falls back from the numbering-pattern title to the first
// short sentence, then to a 50-character prefix.
func extractTitle(text string) string {
	text = strings.TrimSpace(text)
	if title, ok := matchNumbering(text); ok {
		if len(title) > 100 {
			title = truncate(title, 100)
		}
		return title
	}
	sentences := sentenceSplit.Split(text, -1)
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	for _, sent := range sentences {
		sent = strings.TrimSpace(sent)
		if len(sent) >= 10 && len(sent) <= 100 {
			return sent
		}
	}
	if len(text) > 50 {
		text = truncate(text, 50)
	}
	return strings.TrimSpace(text)
}

// truncate cuts s to at most max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
