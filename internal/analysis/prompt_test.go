package analysis_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"clauselens/internal/analysis"
)

func TestBuildClausePrompt_ContainsClauseContext(t *testing.T) {
	prompt := analysis.BuildClausePrompt("Tenant pays $500 per month.", "payment", "rental_agreement")

	assert.Contains(t, prompt, "Document Type: rental_agreement")
	assert.Contains(t, prompt, "Clause Type: payment")
	assert.Contains(t, prompt, "Tenant pays $500 per month.")
	assert.Contains(t, prompt, "severity_level")
}

func TestBuildClausePrompt_TruncatesLongTextOnRuneBoundary(t *testing.T) {
	// 300 three-byte runes exceed the embedded-text bound, which is not a
	// multiple of three; the cut must not leave a partial rune behind.
	prompt := analysis.BuildClausePrompt(strings.Repeat("…", 300), "general", "contract")

	assert.True(t, utf8.ValidString(prompt))
}
