// Package assembler builds the bounded context window passed to the answer
// generator. It concatenates retrieved passages in rank order, tags each with
// its source title for provenance, and enforces a total character budget.
package assembler

import (
	"fmt"
	"strings"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/budget"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/rag"
)

// NoInformationText is the assembled text used when retrieval produced no
// matches. It is an explicit signal, never an empty string, so the generator
// can be instructed to say so instead of hallucinating.
const NoInformationText = "Bağlamda bu soruyla ilgili bilgi bulunamadı."

const (
	// defaultMaxChars is the default total context budget in characters.
	defaultMaxChars = 4000

	// defaultMinFragmentChars is the smallest truncated passage fragment
	// still worth including. Anything shorter is dropped wholesale.
	defaultMinFragmentChars = 120
)

// Config holds the assembly limits.
type Config struct {
	// MaxChars is the total character budget for the assembled text.
	// Defaults to 4000 if zero.
	MaxChars int

	// MinFragmentChars is the minimum usable fragment length when the last
	// passage must be truncated to fit. Defaults to 120 if zero.
	MinFragmentChars int
}

// QueryContext is the per-query assembly result handed to the generator.
// Transient, one per query.
type QueryContext struct {
	// Question is the user's question, verbatim.
	Question string

	// Matches are the retrieved passages that contributed to Text,
	// in rank order.
	Matches []rag.Match

	// Text is the bounded context window.
	Text string

	// NoInformation is true when retrieval produced nothing and Text holds
	// the explicit no-information marker.
	NoInformation bool

	// EstimatedTokens is the rough token cost of Text, for logging.
	EstimatedTokens int
}

// Assembler builds QueryContexts within a configured budget.
type Assembler struct {
	cfg Config
}

// New constructs an Assembler, applying defaults for zero config values.
func New(cfg Config) *Assembler {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = defaultMaxChars
	}
	if cfg.MinFragmentChars <= 0 {
		cfg.MinFragmentChars = defaultMinFragmentChars
	}
	return &Assembler{cfg: cfg}
}

// Assemble concatenates match contents in rank order, each tagged with its
// source title, stopping before the character budget is exceeded. The last
// passage that does not fully fit is truncated rather than dropped, unless
// the surviving fragment would be shorter than MinFragmentChars, in which
// case it is dropped wholesale. Matches that did not contribute text are
// removed from the returned context so citations stay honest. When no match
// contributes at all, the context carries the no-information marker exactly
// as if retrieval had found nothing.
func (a *Assembler) Assemble(question string, matches []rag.Match) QueryContext {
	qc := QueryContext{Question: question}

	if len(matches) == 0 {
		qc.Text = NoInformationText
		qc.NoInformation = true
		qc.EstimatedTokens = budget.Estimate(qc.Text)
		return qc
	}

	var b strings.Builder
	used := 0
	for _, m := range matches {
		block := passageBlock(m.Document)
		if used+len(block) <= a.cfg.MaxChars {
			b.WriteString(block)
			used += len(block)
			qc.Matches = append(qc.Matches, m)
			continue
		}

		// Budget exceeded: try to fit a truncated tail.
		remaining := a.cfg.MaxChars - used
		header := passageHeader(m.Document)
		fragment := remaining - len(header)
		if fragment >= a.cfg.MinFragmentChars {
			b.WriteString(header)
			b.WriteString(truncateRunes(m.Document.Content, fragment))
			b.WriteString("\n\n")
			qc.Matches = append(qc.Matches, m)
		}
		break
	}

	if len(qc.Matches) == 0 {
		// Nothing fit the budget. Use the same explicit marker as the
		// empty-match case so the generator is never handed an empty
		// context.
		qc.Text = NoInformationText
		qc.NoInformation = true
		qc.EstimatedTokens = budget.Estimate(qc.Text)
		return qc
	}

	qc.Text = strings.TrimRight(b.String(), "\n")
	qc.EstimatedTokens = budget.Estimate(qc.Text)
	return qc
}

// passageHeader renders the provenance tag for a passage.
func passageHeader(doc rag.Document) string {
	return fmt.Sprintf("### %s\n", doc.Title)
}

// passageBlock renders a full passage: provenance header, content, separator.
func passageBlock(doc rag.Document) string {
	return passageHeader(doc) + doc.Content + "\n\n"
}

// truncateRunes cuts s to at most n bytes without splitting a UTF-8 rune,
// which matters for Turkish characters.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// isRuneStart reports whether b is the first byte of a UTF-8 sequence.
func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
