package models

// Match pairs two users with their stored compatibility data. One row is written
// per direction so each user can query their own matches.
type Match struct {
	MatchID                  string `dynamodbav:"matchId" json:"matchId"`
	UserID                   string `dynamodbav:"userId" json:"userId"`
	TargetUserID             string `dynamodbav:"targetUserId" json:"targetUserId"`
	MatchScore               int    `dynamodbav:"matchScore" json:"matchScore"`
	CompatibilityDescription string `dynamodbav:"compatibilityDescription" json:"compatibilityDescription"`
	Status                   string `dynamodbav:"status" json:"status"`
	CreatedAt                string `dynamodbav:"createdAt" json:"createdAt"`
}

// MatchesTable is the DynamoDB table name for matches
const MatchesTable = "ProfileMatches"

// MatchWithProfile enriches a match with the counterpart's profile data and the
// chat room it opened, for the matches list screen.
type MatchWithProfile struct {
	Match
	Name          string   `json:"name"`
	Age           int      `json:"age"`
	Bio           string   `json:"bio"`
	ProfileImages []string `json:"profileImages"`
	ChatRoomID    string   `json:"chatRoomId,omitempty"`
	LastMessageAt string   `json:"lastMessageAt,omitempty"`
}
