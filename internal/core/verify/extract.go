// Package verify implements the verifier agent: deterministic claim
// extraction from generated documents, evidence collection against the
// knowledge sources, and confidence scoring.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/agenthands/blueprint/internal/core/model"
)

// Extractor decomposes a document into atomic claims. It is pure and
// deterministic: the same document always yields the same claims with the
// same IDs, so repeated verification runs are reproducible.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

var (
	fileRefPattern = regexp.MustCompile(`\b[\w-]+(?:/[\w.-]+)*\.(?:go|py|java|ts|js|rb|cs|sql|proto|toml|ya?ml|json|md)\b`)

	// "X depends on Y", "X uses Y", "X calls Y", "X imports Y"
	dependencyPattern = regexp.MustCompile(`\b([A-Za-z][\w.-]*)\s+(?:depends on|uses|calls into|calls|imports|requires)\s+(?:the\s+)?([A-Za-z][\w.-]*)`)

	// "the X service", "X component exists", "X exposes ...", "X provides ..."
	existencePattern = regexp.MustCompile(`\b([A-Z][\w-]*[a-z][\w-]*)\s+(?:component|service|module|package)\b|\b(?:the\s+)?([A-Z][A-Za-z0-9]*(?:[A-Z][a-z0-9]+)+)\s+(?:exists|exposes|provides|implements|handles|manages)\b`)

	behavioralPattern = regexp.MustCompile(`(?i)\b(?:must|shall|should|will|retries|retry|validates?|returns?|rejects?|accepts?|sends?|emits?|stores?|caches?|logs?|notifies|triggers?|encrypts?|times? out)\b`)

	sentenceSplit = regexp.MustCompile(`[.!?]\s+|\n`)
)

// ExtractClaims parses the document's sections into atomic claims. A clause
// stating two independently falsifiable facts is split into two claims.
func (e *Extractor) ExtractClaims(doc *model.Document) []model.Claim {
	var claims []model.Claim

	for _, section := range doc.Sections {
		ordinal := 0
		for _, sentence := range splitSentences(section.Content) {
			for _, clause := range splitClauses(sentence) {
				claim, ok := classify(clause, section.Name)
				if !ok {
					continue
				}
				claim.ID = claimID(section.Name, ordinal, claim.Text)
				claims = append(claims, claim)
				ordinal++
			}
		}
	}

	return claims
}

// claimID is content-addressed: identical section, position, and text always
// produce the same id.
func claimID(section string, ordinal int, text string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", section, ordinal, text)))
	return "CLM-" + hex.EncodeToString(h[:6])
}

func splitSentences(content string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(content, -1) {
		s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "-*• \t"))
		if len(s) >= 8 {
			out = append(out, s)
		}
	}
	return out
}

// splitClauses breaks "X depends on Y and exposes endpoint Z" into two
// clauses, propagating the first clause's subject into a clause that starts
// with a bare verb.
func splitClauses(sentence string) []string {
	parts := strings.Split(sentence, " and ")
	if len(parts) == 1 {
		return parts
	}

	subject := clauseSubject(parts[0])
	out := []string{strings.TrimSpace(parts[0])}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		// Only treat the fragment as a separate claim when it is
		// independently checkable: it matches a claim pattern on its
		// own, or it starts with a bare verb and inherits the first
		// clause's subject. Otherwise glue it back on.
		independent := behavioralPattern.MatchString(part) ||
			dependencyPattern.MatchString(part) ||
			fileRefPattern.MatchString(part) ||
			existencePattern.MatchString(part) ||
			(subject != "" && startsWithVerb(part))
		if !independent {
			out[len(out)-1] += " and " + part
			continue
		}
		if subject != "" && startsWithVerb(part) {
			part = subject + " " + part
		}
		out = append(out, part)
	}
	return out
}

func clauseSubject(clause string) string {
	fields := strings.Fields(strings.TrimSpace(clause))
	if len(fields) == 0 {
		return ""
	}
	first := fields[0]
	if strings.EqualFold(first, "the") && len(fields) > 1 {
		first = fields[1]
	}
	if first == "" || !isUpper(rune(first[0])) {
		return ""
	}
	return strings.Trim(first, ".,:;")
}

func startsWithVerb(clause string) bool {
	fields := strings.Fields(clause)
	if len(fields) == 0 {
		return false
	}
	return behavioralPattern.MatchString(fields[0]) || dependencyVerb(fields[0])
}

func dependencyVerb(word string) bool {
	switch strings.ToLower(strings.Trim(word, ".,:;")) {
	case "depends", "uses", "calls", "imports", "requires", "exposes":
		return true
	}
	return false
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func determiner(word string) bool {
	switch strings.ToLower(word) {
	case "the", "this", "that", "a", "an", "each", "every", "any", "our":
		return true
	}
	return false
}

// classify maps a clause to a typed claim. Clauses matching no pattern are
// not claims and are dropped.
func classify(clause, section string) (model.Claim, bool) {
	claim := model.Claim{Text: clause, Section: section}

	if m := dependencyPattern.FindStringSubmatch(clause); m != nil {
		claim.Type = model.ClaimDependency
		// The object class admits dots for qualified names, so a
		// sentence-final match drags the period along. Strip it.
		claim.Subject = strings.Trim(m[1], ".,:;")
		claim.Object = strings.Trim(m[2], ".,:;")
		return claim, true
	}

	if path := fileRefPattern.FindString(clause); path != "" {
		claim.Type = model.ClaimFileReference
		claim.Subject = path
		return claim, true
	}

	if m := existencePattern.FindStringSubmatch(clause); m != nil {
		subject := m[1]
		if subject == "" {
			subject = m[2]
		}
		// A determiner in subject position means the match hit "the
		// service does X" prose, not a named component.
		if !determiner(subject) {
			claim.Type = model.ClaimComponentExistence
			claim.Subject = subject
			return claim, true
		}
	}

	if behavioralPattern.MatchString(clause) {
		if strings.Contains(strings.ToLower(section), "requirement") {
			claim.Type = model.ClaimRequirementDerivation
		} else {
			claim.Type = model.ClaimBehavioral
		}
		claim.Subject = clauseSubject(clause)
		return claim, true
	}

	return model.Claim{}, false
}
