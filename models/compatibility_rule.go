package models

// IsCompatibleOrientation decides whether a candidate may be shown to a user
// based on both parties' orientation and dating preference. The rule is a
// heuristic, not a strict bidirectional orientation check: a preference of
// "everyone" on either side short-circuits to compatible, and the "men"/"women"
// branches test the candidate's orientation against the user's preference only.
// It is kept as the literal product contract.
func IsCompatibleOrientation(userOrientation, userPreference, targetOrientation, targetPreference string) bool {
	if userPreference == PreferenceEveryone || targetPreference == PreferenceEveryone {
		return true
	}

	if userPreference == PreferenceMen &&
		(targetOrientation == OrientationStraight || targetOrientation == OrientationGay ||
			targetOrientation == OrientationBisexual || targetOrientation == OrientationPansexual) {
		return targetPreference == PreferenceMen || targetPreference == PreferenceEveryone
	}

	if userPreference == PreferenceWomen &&
		(targetOrientation == OrientationStraight || targetOrientation == OrientationLesbian ||
			targetOrientation == OrientationBisexual || targetOrientation == OrientationPansexual) {
		return targetPreference == PreferenceWomen || targetPreference == PreferenceEveryone
	}

	return false
}
