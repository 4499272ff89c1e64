package models

// ChatRoom is the 1:1 conversation opened for an active match
type ChatRoom struct {
	ChatRoomID    string `dynamodbav:"chatRoomId" json:"chatRoomId"`
	MatchID       string `dynamodbav:"matchId" json:"matchId"`
	User1ID       string `dynamodbav:"user1Id" json:"user1Id"`
	User2ID       string `dynamodbav:"user2Id" json:"user2Id"`
	IsActive      bool   `dynamodbav:"isActive" json:"isActive"`
	LastMessageAt string `dynamodbav:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	CreatedAt     string `dynamodbav:"createdAt" json:"createdAt"`
}

// ChatRoomsTable is the DynamoDB table name for chat rooms
const ChatRoomsTable = "ChatRooms"

// HasParticipant reports whether userID is one of the two room members
func (c *ChatRoom) HasParticipant(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// CounterpartOf returns the other participant's id, or "" if userID is not a member
func (c *ChatRoom) CounterpartOf(userID string) string {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return ""
}
