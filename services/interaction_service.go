package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"astromatch_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type InteractionService struct {
	Dynamo        *DynamoService
	Profiles      *UserProfileService
	Compatibility *CompatibilityService
}

// RecordInteraction appends a viewed/liked/passed row. Interactions are
// append-only; nothing ever updates or deletes them.
func (s *InteractionService) RecordInteraction(ctx context.Context, userID, targetUserID, interactionType string) error {
	interaction := models.Interaction{
		UserID:          userID,
		TargetUserID:    targetUserID,
		InteractionType: interactionType,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.Dynamo.PutItem(ctx, models.InteractionsTable, interaction); err != nil {
		log.Printf("Failed to save interaction %s -> %s (%s): %v", userID, targetUserID, interactionType, err)
		return err
	}
	return nil
}

// RecordSwipe persists a liked/passed interaction and, for a mutual like,
// creates the match and its chat room. The interaction write is the durable
// part of the swipe: if it fails the caller must not advance past the
// candidate. Match creation failures after a persisted like are logged only.
func (s *InteractionService) RecordSwipe(ctx context.Context, userID, targetUserID, interactionType string, score int, description string) error {
	if err := s.RecordInteraction(ctx, userID, targetUserID, interactionType); err != nil {
		return err
	}

	if interactionType != models.InteractionTypeLiked {
		return nil
	}

	mutual, err := s.HasUserLiked(ctx, targetUserID, userID)
	if err != nil {
		log.Printf("Failed to check mutual like for %s and %s: %v", userID, targetUserID, err)
		return nil
	}
	if !mutual {
		return nil
	}

	if err := s.CreateMatch(ctx, userID, targetUserID, score, description); err != nil {
		log.Printf("Failed to create match for %s and %s: %v", userID, targetUserID, err)
	}
	return nil
}

// HasUserLiked reports whether userID has a recorded "liked" interaction on
// targetUserID.
func (s *InteractionService) HasUserLiked(ctx context.Context, userID, targetUserID string) (bool, error) {
	keyCondition := "userId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := s.Dynamo.QueryAllItemsWithIndex(ctx, models.InteractionsTable, "userId-index", keyCondition, expressionValues, nil)
	if err != nil {
		return false, fmt.Errorf("failed to fetch interactions for %s: %w", userID, err)
	}

	for _, item := range items {
		var interaction models.Interaction
		if err := attributevalue.UnmarshalMap(item, &interaction); err != nil {
			continue
		}
		if interaction.TargetUserID == targetUserID && interaction.InteractionType == models.InteractionTypeLiked {
			return true, nil
		}
	}
	return false, nil
}

// GetInteractedUserIDs returns every target the user has a recorded interaction
// with, of any kind. Discovery excludes all of them.
func (s *InteractionService) GetInteractedUserIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	keyCondition := "userId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := s.Dynamo.QueryAllItemsWithIndex(ctx, models.InteractionsTable, "userId-index", keyCondition, expressionValues, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		var interaction models.Interaction
		if err := attributevalue.UnmarshalMap(item, &interaction); err != nil {
			continue
		}
		seen[interaction.TargetUserID] = struct{}{}
	}
	return seen, nil
}

// CreateMatch writes one match row per direction and opens the chat room. When
// the caller has no ranked score for the pair (score == 0) the compatibility
// data is backfilled with a fresh single scoring call, defaulting on failure.
func (s *InteractionService) CreateMatch(ctx context.Context, userID, targetUserID string, score int, description string) error {
	if score == 0 {
		score, description = s.backfillCompatibility(ctx, userID, targetUserID)
	}

	matchID := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	for _, pair := range [][2]string{{userID, targetUserID}, {targetUserID, userID}} {
		match := models.Match{
			MatchID:                  matchID,
			UserID:                   pair[0],
			TargetUserID:             pair[1],
			MatchScore:               score,
			CompatibilityDescription: description,
			Status:                   models.MatchStatusActive,
			CreatedAt:                createdAt,
		}
		if err := s.Dynamo.PutItem(ctx, models.MatchesTable, match); err != nil {
			return fmt.Errorf("failed to create match row: %w", err)
		}
	}

	chatRoom := models.ChatRoom{
		ChatRoomID: uuid.NewString(),
		MatchID:    matchID,
		User1ID:    userID,
		User2ID:    targetUserID,
		IsActive:   true,
		CreatedAt:  createdAt,
	}
	if err := s.Dynamo.PutItem(ctx, models.ChatRoomsTable, chatRoom); err != nil {
		return fmt.Errorf("failed to create chat room: %w", err)
	}

	log.Printf("Match created: %s and %s (score %d)", userID, targetUserID, score)
	return nil
}

func (s *InteractionService) backfillCompatibility(ctx context.Context, userID, targetUserID string) (int, string) {
	userProfile, err := s.Profiles.GetUserProfile(ctx, userID)
	if err != nil {
		return DefaultCompatibilityScore, DefaultCompatibilityDescription
	}
	targetProfile, err := s.Profiles.GetUserProfile(ctx, targetUserID)
	if err != nil {
		return DefaultCompatibilityScore, DefaultCompatibilityDescription
	}

	result, err := s.Compatibility.Calculate(ctx, BirthDataFromProfile(userProfile), BirthDataFromProfile(targetProfile))
	if err != nil {
		log.Printf("Compatibility backfill failed for %s and %s: %v", userID, targetUserID, err)
		return DefaultCompatibilityScore, DefaultCompatibilityDescription
	}
	return result.Score, result.Description
}
