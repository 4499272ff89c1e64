package services

import (
	"context"
	"fmt"
	"log"

	"astromatch_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type MatchService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
}

// GetMatchesForUser returns the user's active matches enriched with the
// counterpart's profile and the chat room opened for the pair.
func (ms *MatchService) GetMatchesForUser(ctx context.Context, userID string) ([]models.MatchWithProfile, error) {
	keyCondition := "userId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := ms.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, "userId-index", keyCondition, expressionValues, nil, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}

	var matches []models.Match
	if err := attributevalue.UnmarshalListOfMaps(items, &matches); err != nil {
		return nil, fmt.Errorf("failed to parse matches: %w", err)
	}

	enriched := make([]models.MatchWithProfile, 0, len(matches))
	for _, match := range matches {
		if match.Status != models.MatchStatusActive {
			continue
		}

		profile, err := ms.Profiles.GetUserProfile(ctx, match.TargetUserID)
		if err != nil {
			log.Printf("Skipping match %s, counterpart profile missing: %v", match.MatchID, err)
			continue
		}

		entry := models.MatchWithProfile{
			Match:         match,
			Name:          profile.Name,
			Age:           profile.Age(),
			Bio:           profile.Bio,
			ProfileImages: profile.ProfileImages,
		}

		if room, err := ms.findChatRoom(ctx, match.MatchID); err == nil && room != nil {
			entry.ChatRoomID = room.ChatRoomID
			entry.LastMessageAt = room.LastMessageAt
		}

		enriched = append(enriched, entry)
	}

	return enriched, nil
}

func (ms *MatchService) findChatRoom(ctx context.Context, matchID string) (*models.ChatRoom, error) {
	keyCondition := "matchId = :matchId"
	expressionValues := map[string]types.AttributeValue{
		":matchId": &types.AttributeValueMemberS{Value: matchID},
	}

	items, err := ms.Dynamo.QueryItemsWithIndex(ctx, models.ChatRoomsTable, "matchId-index", keyCondition, expressionValues, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	var room models.ChatRoom
	if err := attributevalue.UnmarshalMap(items[0], &room); err != nil {
		return nil, err
	}
	return &room, nil
}
