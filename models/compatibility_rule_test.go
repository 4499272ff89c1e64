package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCompatibleOrientation(t *testing.T) {
	cases := []struct {
		name              string
		userOrientation   string
		userPreference    string
		targetOrientation string
		targetPreference  string
		expected          bool
	}{
		{"user open to everyone", OrientationStraight, PreferenceEveryone, OrientationLesbian, PreferenceWomen, true},
		{"target open to everyone", OrientationStraight, PreferenceMen, OrientationStraight, PreferenceEveryone, true},
		{"straight pair seeking men", OrientationStraight, PreferenceMen, OrientationStraight, PreferenceMen, true},
		{"gay pair seeking men", OrientationGay, PreferenceMen, OrientationGay, PreferenceMen, true},
		{"women seeking women", OrientationLesbian, PreferenceWomen, OrientationLesbian, PreferenceWomen, true},
		{"bisexual target in women branch", OrientationStraight, PreferenceWomen, OrientationBisexual, PreferenceWomen, true},
		{"lesbian target fails men branch", OrientationStraight, PreferenceMen, OrientationLesbian, PreferenceMen, false},
		{"gay target fails women branch", OrientationStraight, PreferenceWomen, OrientationGay, PreferenceWomen, false},
		{"mismatched preferences", OrientationStraight, PreferenceMen, OrientationStraight, PreferenceWomen, false},
		{"other orientation never matches branches", OrientationOther, PreferenceMen, OrientationOther, PreferenceMen, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsCompatibleOrientation(tc.userOrientation, tc.userPreference, tc.targetOrientation, tc.targetPreference)
			assert.Equal(t, tc.expected, got)
		})
	}
}
