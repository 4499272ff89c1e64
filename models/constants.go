package models

// Interaction types recorded when a user acts on a candidate
const (
	InteractionTypeViewed = "viewed"
	InteractionTypeLiked  = "liked"
	InteractionTypePassed = "passed"
)

// Match statuses
const (
	MatchStatusActive   = "active"
	MatchStatusPending  = "pending"
	MatchStatusRejected = "rejected"
)

// Sexual orientations
const (
	OrientationStraight  = "straight"
	OrientationGay       = "gay"
	OrientationLesbian   = "lesbian"
	OrientationBisexual  = "bisexual"
	OrientationPansexual = "pansexual"
	OrientationOther     = "other"
)

// Dating preferences
const (
	PreferenceMen      = "men"
	PreferenceWomen    = "women"
	PreferenceEveryone = "everyone"
)

// Sentinel values written by onboarding before the user fills in real birth data.
// A profile still carrying any of these is not eligible for astrological matching.
const (
	DefaultDateOfBirth  = "1990-01-01"
	DefaultTimeOfBirth  = "12:00:00"
	DefaultPlaceOfBirth = "Unknown"
)

// MaxProfileImages caps the ordered image list on a profile
const MaxProfileImages = 5
