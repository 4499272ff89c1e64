package services

import (
	"context"
	"fmt"
	"log"

	"astromatch_server/models"
	"astromatch_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type UserProfileService struct {
	Dynamo *DynamoService
}

// AddUserProfile adds a new user profile to DynamoDB
func (ups *UserProfileService) AddUserProfile(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	if len(profile.ProfileImages) > models.MaxProfileImages {
		profile.ProfileImages = profile.ProfileImages[:models.MaxProfileImages]
	}
	err := ups.Dynamo.PutItem(ctx, models.UserProfilesTable, profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetUserProfile retrieves a user profile by ID
func (ups *UserProfileService) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := ups.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// UpdateUserProfile updates profile fields (birth data, location, preferences,
// bio, onboarding flag). Only the owning user goes through this path.
func (ups *UserProfileService) UpdateUserProfile(ctx context.Context, userID string, updates map[string]interface{}) (*models.UserProfile, error) {
	if len(updates) == 0 {
		return ups.GetUserProfile(ctx, userID)
	}

	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	updateExpression := "SET"
	expressionAttributeValues := make(map[string]types.AttributeValue)
	expressionAttributeNames := make(map[string]string)

	for k, v := range updates {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal update value for '%s': %w", k, err)
		}
		updateExpression += " #" + k + " = :" + k + ","
		expressionAttributeValues[":"+k] = av
		expressionAttributeNames["#"+k] = k
	}
	updateExpression = updateExpression[:len(updateExpression)-1]

	updatedItem, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable, updateExpression, key, expressionAttributeValues, expressionAttributeNames)
	if err != nil {
		return nil, err
	}

	var updatedProfile models.UserProfile
	if err := attributevalue.UnmarshalMap(updatedItem, &updatedProfile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated profile: %w", err)
	}

	return &updatedProfile, nil
}

// AddProfileImage appends an image URL to the profile's ordered image list,
// enforcing the five-image cap.
func (ups *UserProfileService) AddProfileImage(ctx context.Context, userID, imageURL string) (*models.UserProfile, error) {
	profile, err := ups.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(profile.ProfileImages) >= models.MaxProfileImages {
		return nil, fmt.Errorf("profile already has the maximum of %d images", models.MaxProfileImages)
	}
	images := append(profile.ProfileImages, imageURL)
	return ups.UpdateUserProfile(ctx, userID, map[string]interface{}{"profileImages": images})
}

// RemoveProfileImage removes an image URL from the profile's image list
func (ups *UserProfileService) RemoveProfileImage(ctx context.Context, userID, imageURL string) (*models.UserProfile, error) {
	profile, err := ups.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	images := make([]string, 0, len(profile.ProfileImages))
	for _, img := range profile.ProfileImages {
		if img != imageURL {
			images = append(images, img)
		}
	}
	return ups.UpdateUserProfile(ctx, userID, map[string]interface{}{"profileImages": images})
}

// DeleteUserProfile removes a user profile from DynamoDB
func (ups *UserProfileService) DeleteUserProfile(ctx context.Context, userID string) error {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	return ups.Dynamo.DeleteItem(ctx, models.UserProfilesTable, key)
}

// CountCityUsers counts onboarded users in the given city, excluding the
// requester. Discovery needs at least ten before it shows anything.
func (ups *UserProfileService) CountCityUsers(ctx context.Context, userID, city string) (int, error) {
	var profiles []models.UserProfile
	err := ups.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, func(item map[string]types.AttributeValue) bool {
		if utils.ExtractString(item, "userId") == userID {
			return false
		}
		if utils.ExtractString(item, "currentCity") != city {
			return false
		}
		return utils.ExtractBool(item, "isOnboardingComplete")
	}, nil, &profiles)
	if err != nil {
		return 0, fmt.Errorf("failed to count city users: %w", err)
	}
	return len(profiles), nil
}

// GetUnseenProfiles returns up to limit onboarded profiles in the city that the
// requester has no recorded interaction with. exclude carries the requester's
// own id plus every already-interacted target.
func (ups *UserProfileService) GetUnseenProfiles(ctx context.Context, city string, exclude map[string]struct{}, limit int) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := ups.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, func(item map[string]types.AttributeValue) bool {
		if _, seen := exclude[utils.ExtractString(item, "userId")]; seen {
			return false
		}
		if utils.ExtractString(item, "currentCity") != city {
			return false
		}
		return utils.ExtractBool(item, "isOnboardingComplete")
	}, nil, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unseen profiles: %w", err)
	}

	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	log.Printf("Found %d unseen profiles in %s", len(profiles), city)
	return profiles, nil
}
