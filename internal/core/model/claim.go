package model

type ClaimType string

const (
	ClaimComponentExistence    ClaimType = "component_existence"
	ClaimDependency            ClaimType = "dependency_relationship"
	ClaimFileReference         ClaimType = "file_reference"
	ClaimBehavioral            ClaimType = "behavioral_assertion"
	ClaimRequirementDerivation ClaimType = "requirement_derivation"
)

// Claim is the smallest unit of verification: one independently falsifiable
// statement lifted out of a generated document. Claims are created by the
// extractor only and never mutated afterwards.
type Claim struct {
	ID      string    `json:"id"`
	Type    ClaimType `json:"type"`
	Text    string    `json:"text"`
	Section string    `json:"section"`

	// Subject/Object carry what the claim is about, so evidence collection
	// can dispatch without re-parsing the text. For a dependency claim the
	// subject depends on the object; for a file claim the subject is a path.
	Subject string `json:"subject,omitempty"`
	Object  string `json:"object,omitempty"`
}
