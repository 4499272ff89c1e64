package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompatibilityFixture(t *testing.T, handler http.HandlerFunc) *CompatibilityService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &CompatibilityService{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// modelReply wraps text in the messages API response shape
func modelReply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := map[string]interface{}{
		"content": []map[string]string{{"type": "text", "text": text}},
	}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func testBirthData(name string) BirthData {
	return BirthData{
		Name:         name,
		DateOfBirth:  "1995-04-12",
		TimeOfBirth:  "08:30:00",
		PlaceOfBirth: "Jaipur",
	}
}

func TestCalculateParsesJSONBlock(t *testing.T) {
	service := newCompatibilityFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		modelReply(t, w, "Here is my reading:\n{\"score\": 88, \"description\": \"A strong bond with shared fire signs.\"}\nBest of luck.")
	})

	result, err := service.Calculate(context.Background(), testBirthData("Priya"), testBirthData("Arjun"))
	require.NoError(t, err)
	assert.Equal(t, 88, result.Score)
	assert.Equal(t, "A strong bond with shared fire signs.", result.Description)
}

func TestCalculateClampsScores(t *testing.T) {
	cases := []struct {
		name     string
		raw      int
		expected int
	}{
		{"above band", 99, MaxCompatibilityScore},
		{"below band", 3, MinCompatibilityScore},
		{"within band", 61, 61},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := newCompatibilityFixture(t, func(w http.ResponseWriter, r *http.Request) {
				reply := map[string]interface{}{"score": tc.raw, "description": "reading"}
				body, _ := json.Marshal(reply)
				modelReply(t, w, string(body))
			})
			result, err := service.Calculate(context.Background(), testBirthData("Priya"), testBirthData("Arjun"))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result.Score)
		})
	}
}

func TestCalculateScoreRegexFallback(t *testing.T) {
	service := newCompatibilityFixture(t, func(w http.ResponseWriter, r *http.Request) {
		modelReply(t, w, "The stars align well. Score: 72 overall, with Venus favoring this pair.")
	})

	result, err := service.Calculate(context.Background(), testBirthData("Priya"), testBirthData("Arjun"))
	require.NoError(t, err)
	assert.Equal(t, 72, result.Score)
	assert.Contains(t, result.Description, "Venus")
}

func TestCalculateServerError(t *testing.T) {
	service := newCompatibilityFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	})

	_, err := service.Calculate(context.Background(), testBirthData("Priya"), testBirthData("Arjun"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestCalculateBatchMatchesByName(t *testing.T) {
	service := newCompatibilityFixture(t, func(w http.ResponseWriter, r *http.Request) {
		modelReply(t, w, `Readings below.
{"results": [
  {"targetName": "Meera", "score": 81, "description": "Water and earth in harmony."},
  {"targetName": "Asha", "score": 64, "description": "Some friction from Mars."}
]}`)
	})

	results, err := service.CalculateBatch(context.Background(), testBirthData("Priya"), []BirthData{
		testBirthData("Asha"), testBirthData("Meera"),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Meera", results[0].TargetName)
	assert.Equal(t, 81, results[0].Score)
}

func TestScoreCandidatesFillsDefaults(t *testing.T) {
	service := newCompatibilityFixture(t, func(w http.ResponseWriter, r *http.Request) {
		modelReply(t, w, `{"results": [{"targetName": "Asha", "score": 77, "description": "Promising."}]}`)
	})

	targets := []BirthData{testBirthData("Asha"), testBirthData("Ravi")}
	results := service.ScoreCandidates(context.Background(), testBirthData("Priya"), targets)

	require.Len(t, results, 2)
	assert.Equal(t, 77, results[0].Score)
	assert.Equal(t, DefaultCompatibilityScore, results[1].Score)
	assert.Equal(t, DefaultCompatibilityDescription, results[1].Description)
}

func TestScoreCandidatesDegradesWithoutAPIKey(t *testing.T) {
	service := &CompatibilityService{
		BaseURL: "http://127.0.0.1:0",
		Model:   "test-model",
		Client:  &http.Client{Timeout: time.Second},
	}

	targets := []BirthData{testBirthData("Asha"), testBirthData("Ravi"), testBirthData("Meera")}
	results := service.ScoreCandidates(context.Background(), testBirthData("Priya"), targets)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, DefaultCompatibilityScore, r.Score)
		assert.Equal(t, DefaultCompatibilityDescription, r.Description)
	}
}
