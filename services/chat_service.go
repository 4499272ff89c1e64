package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"astromatch_server/hub"
	"astromatch_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ChatService is the store behind chat sessions: chat rooms, messages and the
// live event hub that mirrors row inserts/updates to subscribers.
type ChatService struct {
	Dynamo *DynamoService
	Hub    *hub.Hub
}

// GetChatRoom fetches a chat room by id
func (s *ChatService) GetChatRoom(ctx context.Context, chatRoomID string) (*models.ChatRoom, error) {
	key := map[string]types.AttributeValue{
		"chatRoomId": &types.AttributeValueMemberS{Value: chatRoomID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.ChatRoomsTable, key)
	if err != nil {
		return nil, fmt.Errorf("chat room not found: %w", err)
	}

	var room models.ChatRoom
	if err := attributevalue.UnmarshalMap(item, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat room: %w", err)
	}
	return &room, nil
}

// GetMatch fetches the match metadata behind a chat room
func (s *ChatService) GetMatch(ctx context.Context, matchID, userID string) (*models.Match, error) {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
		"userId":  &types.AttributeValueMemberS{Value: userID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, key)
	if err != nil {
		return nil, fmt.Errorf("match not found: %w", err)
	}

	var match models.Match
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return &match, nil
}

// GetMessages returns the room's non-deleted messages ordered by creation time
// ascending. Soft-deleted rows are filtered here, never surfaced.
func (s *ChatService) GetMessages(ctx context.Context, chatRoomID string) ([]models.Message, error) {
	keyCondition := "chatRoomId = :chatRoomId"
	expressionValues := map[string]types.AttributeValue{
		":chatRoomId": &types.AttributeValueMemberS{Value: chatRoomID},
	}

	items, err := s.Dynamo.QueryAllItems(ctx, models.MessagesTable, keyCondition, expressionValues, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var all []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &all); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	messages := make([]models.Message, 0, len(all))
	for _, m := range all {
		if m.IsDeleted {
			continue
		}
		messages = append(messages, m)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt < messages[j].CreatedAt
	})
	return messages, nil
}

// InsertMessage stores a new text message, stamps the room's lastMessageAt and
// publishes an insert event to the hub.
func (s *ChatService) InsertMessage(ctx context.Context, chatRoomID, senderID, content string) (*models.Message, error) {
	message := models.Message{
		ChatRoomID:  chatRoomID,
		MessageID:   uuid.NewString(),
		SenderID:    senderID,
		Content:     strings.TrimSpace(content),
		MessageType: models.MessageTypeText,
		IsRead:      false,
		IsDeleted:   false,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	key := map[string]types.AttributeValue{
		"chatRoomId": &types.AttributeValueMemberS{Value: chatRoomID},
	}
	updateExpression := "SET lastMessageAt = :at"
	expressionValues := map[string]types.AttributeValue{
		":at": &types.AttributeValueMemberS{Value: message.CreatedAt},
	}
	if _, err := s.Dynamo.UpdateItem(ctx, models.ChatRoomsTable, updateExpression, key, expressionValues, nil); err != nil {
		log.Printf("Failed to stamp lastMessageAt on room %s: %v", chatRoomID, err)
	}

	if s.Hub != nil {
		s.Hub.Publish(hub.MessageEvent{Type: hub.EventMessageInserted, Message: message})
	}
	return &message, nil
}

// MarkMessagesRead flips the read flag on every unread message in the room not
// authored by userID, publishing an update event per flipped row.
func (s *ChatService) MarkMessagesRead(ctx context.Context, chatRoomID, userID string) error {
	messages, err := s.GetMessages(ctx, chatRoomID)
	if err != nil {
		return err
	}

	for _, m := range messages {
		if m.IsRead || m.SenderID == userID {
			continue
		}
		if err := s.MarkMessageRead(ctx, chatRoomID, m.MessageID); err != nil {
			log.Printf("Failed to mark message %s as read: %v", m.MessageID, err)
		}
	}
	return nil
}

// MarkMessageRead flips the read flag on a single message
func (s *ChatService) MarkMessageRead(ctx context.Context, chatRoomID, messageID string) error {
	key := map[string]types.AttributeValue{
		"chatRoomId": &types.AttributeValueMemberS{Value: chatRoomID},
		"messageId":  &types.AttributeValueMemberS{Value: messageID},
	}
	updateExpression := "SET isRead = :true"
	expressionValues := map[string]types.AttributeValue{
		":true": &types.AttributeValueMemberBOOL{Value: true},
	}

	updated, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable, updateExpression, key, expressionValues, nil)
	if err != nil {
		return fmt.Errorf("failed to mark message as read: %w", err)
	}

	if s.Hub != nil {
		var message models.Message
		if err := attributevalue.UnmarshalMap(updated, &message); err == nil && message.MessageID != "" {
			s.Hub.Publish(hub.MessageEvent{Type: hub.EventMessageUpdated, Message: message})
		}
	}
	return nil
}
