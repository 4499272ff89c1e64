package models

import "time"

// UserProfile defines the structure for user profiles
type UserProfile struct {
	UserID               string   `dynamodbav:"userId" json:"userId"`
	Name                 string   `dynamodbav:"name" json:"name"`
	EmailID              string   `dynamodbav:"emailId,omitempty" json:"emailId,omitempty"`
	Bio                  string   `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	DateOfBirth          string   `dynamodbav:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	TimeOfBirth          string   `dynamodbav:"timeOfBirth,omitempty" json:"timeOfBirth,omitempty"`
	PlaceOfBirth         string   `dynamodbav:"placeOfBirth,omitempty" json:"placeOfBirth,omitempty"`
	CurrentCity          string   `dynamodbav:"currentCity,omitempty" json:"currentCity,omitempty"`
	Latitude             float64  `dynamodbav:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude            float64  `dynamodbav:"longitude,omitempty" json:"longitude,omitempty"`
	SexualOrientation    string   `dynamodbav:"sexualOrientation,omitempty" json:"sexualOrientation,omitempty"`
	DatingPreference     string   `dynamodbav:"datingPreference,omitempty" json:"datingPreference,omitempty"`
	ProfileImages        []string `dynamodbav:"profileImages,omitempty" json:"profileImages,omitempty"`
	IsOnboardingComplete bool     `dynamodbav:"isOnboardingComplete" json:"isOnboardingComplete"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"

// HasCompleteBirthData reports whether all three birth fields are present and not
// equal to the onboarding sentinels. Entry into matching is gated on this.
func (p *UserProfile) HasCompleteBirthData() bool {
	return p.Name != "" &&
		p.DateOfBirth != "" && p.DateOfBirth != DefaultDateOfBirth &&
		p.TimeOfBirth != "" && p.TimeOfBirth != DefaultTimeOfBirth &&
		p.PlaceOfBirth != "" && p.PlaceOfBirth != DefaultPlaceOfBirth
}

// Age derives the user's age from dateOfBirth (YYYY-MM-DD). Returns 0 when the
// date is missing or unparsable.
func (p *UserProfile) Age() int {
	if p.DateOfBirth == "" {
		return 0
	}
	birth, err := time.Parse("2006-01-02", p.DateOfBirth)
	if err != nil {
		return 0
	}
	now := time.Now()
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
