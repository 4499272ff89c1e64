package models

// Interaction is an append-only record of a user acting on a candidate profile.
// Rows are never mutated or deleted; they both exclude already-seen candidates
// from discovery and, for "liked", drive match creation.
type Interaction struct {
	UserID          string `dynamodbav:"userId" json:"userId"`
	TargetUserID    string `dynamodbav:"targetUserId" json:"targetUserId"`
	InteractionType string `dynamodbav:"interactionType" json:"interactionType"`
	CreatedAt       string `dynamodbav:"createdAt" json:"createdAt"`
}

// InteractionsTable is the DynamoDB table name for profile interactions
const InteractionsTable = "ProfileInteractions"
