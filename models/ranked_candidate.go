package models

// RankedCandidate is a transient projection of a candidate profile plus its
// compatibility data, living only for the duration of a discovery session.
// It is never persisted; only the act of liking/passing is stored as an
// Interaction.
type RankedCandidate struct {
	UserID                   string   `json:"userId"`
	Name                     string   `json:"name"`
	Age                      int      `json:"age"`
	Bio                      string   `json:"bio"`
	CurrentCity              string   `json:"currentCity"`
	SexualOrientation        string   `json:"sexualOrientation"`
	DatingPreference         string   `json:"datingPreference"`
	ProfileImages            []string `json:"profileImages"`
	CompatibilityScore       int      `json:"compatibilityScore"`
	CompatibilityDescription string   `json:"compatibilityDescription"`
}
