// Package detectors implements the universal, reusable detection
// building blocks gates consult: PII, readability, and bias/toxicity.
// Every detector here is pure and deterministic and shares the Finding
// package's Span contract, so a gate can fold a detector's spans
// straight into its own Finding.
package detectors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ukcompliance/complianceengine/internal/finding"
)

// PIIMatch is a single detected personal-data occurrence.
type PIIMatch struct {
	Subtype string // e.g. "email", "ni_number", "phone", "postcode", "bank_account"
	Span    finding.Span
}

var (
	emailRe      = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	niNumberRe   = regexp.MustCompile(`(?i)\b[A-CEGHJ-PR-TW-Z]{2}\s?\d{2}\s?\d{2}\s?\d{2}\s?[A-D]\b`)
	ukPhoneRe    = regexp.MustCompile(`\b(?:0|\+44\s?)(?:\d\s?){9,10}\b`)
	postcodeRe   = regexp.MustCompile(`(?i)\b[A-Z]{1,2}\d[A-Z\d]?\s?\d[A-Z]{2}\b`)
	sortCodeRe   = regexp.MustCompile(`\b\d{2}-\d{2}-\d{2}\b`)
	accountNumRe = regexp.MustCompile(`\b\d{8}\b`)
	vatNumberRe  = regexp.MustCompile(`(?i)\bGB\s?\d{3}\s?\d{4}\s?\d{2}(?:\s?\d{3})?\b`)
)

// VATNumberPattern matches a UK VAT registration number (the "GB"
// prefix followed by 9 or 12 digits, per HMRC's published format).
// Exported separately from DetectPII since VAT numbers are a
// tax-document structural detail, not personal data.
var VATNumberPattern = vatNumberRe

// DetectPII scans text for UK personal-data patterns: emails, National
// Insurance numbers, phone numbers, postcodes, and sort-code/account
// number pairs. Each match carries a byte-offset span tagged
// "pii:<subtype>".
func DetectPII(text string) []PIIMatch {
	var out []PIIMatch

	add := func(subtype string, re *regexp.Regexp) {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			out = append(out, PIIMatch{
				Subtype: subtype,
				Span:    finding.Span{Start: loc[0], End: loc[1], Kind: "pii:" + subtype},
			})
		}
	}

	add("email", emailRe)
	add("ni_number", niNumberRe)
	add("phone", ukPhoneRe)
	add("postcode", postcodeRe)

	for _, loc := range sortCodeRe.FindAllStringIndex(text, -1) {
		out = append(out, PIIMatch{
			Subtype: "bank_sort_code",
			Span:    finding.Span{Start: loc[0], End: loc[1], Kind: "pii:bank_sort_code"},
		})
	}
	for _, loc := range accountNumRe.FindAllStringIndex(text, -1) {
		out = append(out, PIIMatch{
			Subtype: "bank_account",
			Span:    finding.Span{Start: loc[0], End: loc[1], Kind: "pii:bank_account"},
		})
	}

	return out
}

// ReadabilityScore summarizes a text's estimated reading difficulty.
type ReadabilityScore struct {
	// Score is a Flesch-style reading-ease estimate: higher is easier
	// to read. Typical English prose scores 0-100.
	Score float64
	// AvgSentenceLength is the mean word count per sentence.
	AvgSentenceLength float64
	// AvgSyllablesPerWord is the mean estimated syllable count per word.
	AvgSyllablesPerWord float64
}

// Readability estimates reading difficulty using sentence length and a
// syllable-count heuristic (vowel-group counting), the same
// approximation used by standard Flesch reading-ease scoring. It is
// deterministic: no dictionary lookups, no locale state.
func Readability(text string) ReadabilityScore {
	sentences := splitSentences(text)
	words := strings.Fields(text)

	if len(sentences) == 0 || len(words) == 0 {
		return ReadabilityScore{}
	}

	totalSyllables := 0
	for _, w := range words {
		totalSyllables += countSyllables(w)
	}

	avgSentenceLen := float64(len(words)) / float64(len(sentences))
	avgSyllablesPerWord := float64(totalSyllables) / float64(len(words))

	score := 206.835 - 1.015*avgSentenceLen - 84.6*avgSyllablesPerWord

	return ReadabilityScore{
		Score:               score,
		AvgSentenceLength:   avgSentenceLen,
		AvgSyllablesPerWord: avgSyllablesPerWord,
	}
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func countSyllables(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 0
	}

	count := 0
	wasVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !wasVowel {
			count++
		}
		wasVowel = isVowel
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// BiasResult summarizes detected biased or toxic language.
type BiasResult struct {
	// Score is the fraction of scanned words that matched a bias or
	// toxicity keyword, in [0, 1].
	Score float64
	Spans []finding.Span
}

// defaultBiasTerms is a small, illustrative keyword list; production
// callers are expected to register domain-specific lists via
// DetectBiasWithTerms.
var defaultBiasTerms = []string{
	"guaranteed", "risk-free", "obviously", "everyone knows", "no-brainer",
}

// DetectBias scans text against the built-in keyword list. Gates
// needing a domain-specific list should call DetectBiasWithTerms.
func DetectBias(text string) BiasResult {
	return DetectBiasWithTerms(text, defaultBiasTerms)
}

// DetectBiasWithTerms scans text for occurrences (case-insensitive) of
// any term in terms, returning a span per match tagged "bias" and a
// scalar score normalized by word count.
func DetectBiasWithTerms(text string, terms []string) BiasResult {
	lower := strings.ToLower(text)
	var spans []finding.Span
	matchCount := 0

	for _, term := range terms {
		termLower := strings.ToLower(term)
		offset := 0
		for {
			idx := strings.Index(lower[offset:], termLower)
			if idx < 0 {
				break
			}
			start := offset + idx
			end := start + len(termLower)
			spans = append(spans, finding.Span{Start: start, End: end, Kind: "bias"})
			matchCount++
			offset = end
		}
	}

	words := strings.Fields(text)
	score := 0.0
	if len(words) > 0 {
		score = float64(matchCount) / float64(len(words))
	}

	return BiasResult{Score: score, Spans: spans}
}
