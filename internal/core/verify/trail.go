package verify

import (
	"fmt"
	"strings"

	"github.com/agenthands/blueprint/internal/core/model"
)

// EvidenceTrail renders a verification result as a readable audit trail,
// one block per section with the code references behind each claim.
func EvidenceTrail(result model.VerificationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Verification: %d/%d claims verified, confidence %.2f, risk %s\n",
		result.VerifiedClaims, result.TotalClaims, result.ConfidenceScore, result.Risk)

	for _, section := range result.Sections {
		fmt.Fprintf(&b, "\n## %s [%s, %.2f]\n", section.Section, section.Status, section.Confidence)
		for _, claim := range section.Claims {
			fmt.Fprintf(&b, "- [%s] %s (%.2f)\n", claim.Status, claim.Claim.Text, claim.Confidence)
			for _, ref := range claim.Supporting {
				fmt.Fprintf(&b, "    supports: %s\n", ref.String())
			}
			for _, ref := range claim.Contradicting {
				fmt.Fprintf(&b, "    contradicts: %s\n", ref.String())
			}
			if claim.Issue != "" {
				fmt.Fprintf(&b, "    issue: %s\n", claim.Issue)
			}
		}
	}

	return b.String()
}
