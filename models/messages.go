package models

// Message is a single chat message. Messages are never physically deleted;
// isDeleted rows are filtered out at query time.
type Message struct {
	ChatRoomID  string `dynamodbav:"chatRoomId" json:"chatRoomId"`
	MessageID   string `dynamodbav:"messageId" json:"messageId"`
	SenderID    string `dynamodbav:"senderId" json:"senderId"`
	Content     string `dynamodbav:"content" json:"content"`
	MessageType string `dynamodbav:"messageType" json:"messageType"`
	IsRead      bool   `dynamodbav:"isRead" json:"isRead"`
	IsDeleted   bool   `dynamodbav:"isDeleted" json:"isDeleted"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
}

// MessageTypeText is the only message type currently sent by clients
const MessageTypeText = "text"

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "ChatMessages"
