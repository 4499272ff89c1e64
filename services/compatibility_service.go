package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"astromatch_server/models"
)

// Compatibility scores are clamped server-side to this band; anything that
// fails to score falls back to the midpoint.
const (
	MinCompatibilityScore     = 15
	MaxCompatibilityScore     = 95
	DefaultCompatibilityScore = 50

	// DefaultCompatibilityDescription is the fallback text when scoring fails
	DefaultCompatibilityDescription = "Compatibility analysis unavailable"
)

const (
	anthropicVersion   = "2023-06-01"
	compatibilityModel = "claude-3-5-haiku-20241022"
)

var (
	jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)
	scoreRe     = regexp.MustCompile(`(?i)score["\s]*:\s*(\d+)`)
)

// BirthData is the slice of a profile the compatibility engine reads
type BirthData struct {
	Name         string `json:"name"`
	DateOfBirth  string `json:"dateOfBirth"`
	TimeOfBirth  string `json:"timeOfBirth"`
	PlaceOfBirth string `json:"placeOfBirth"`
}

// BirthDataFromProfile projects a profile down to its birth fields
func BirthDataFromProfile(p *models.UserProfile) BirthData {
	return BirthData{
		Name:         p.Name,
		DateOfBirth:  p.DateOfBirth,
		TimeOfBirth:  p.TimeOfBirth,
		PlaceOfBirth: p.PlaceOfBirth,
	}
}

// CompatibilityResult is the per-pair scoring outcome
type CompatibilityResult struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// BatchCompatibilityResult carries the target's name so batch responses can be
// matched back to candidates.
type BatchCompatibilityResult struct {
	TargetName  string `json:"targetName"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// CompatibilityService scores pairs of birth profiles through the Anthropic
// messages API.
type CompatibilityService struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

// NewCompatibilityService builds a service configured from the environment
func NewCompatibilityService() *CompatibilityService {
	return &CompatibilityService{
		APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		BaseURL: "https://api.anthropic.com",
		Model:   compatibilityModel,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Calculate scores a single pair. Transport and parse failures are returned as
// errors; callers absorb them into the default score.
func (cs *CompatibilityService) Calculate(ctx context.Context, user, target BirthData) (CompatibilityResult, error) {
	prompt := buildPairPrompt(user, target)

	content, err := cs.complete(ctx, prompt)
	if err != nil {
		return CompatibilityResult{}, err
	}

	result := parseCompatibility(content)
	result.Score = clampScore(result.Score)
	return result, nil
}

// CalculateBatch scores one user against many targets in a single model call.
// The response is matched back to targets by name; unmatched targets are simply
// absent from the returned slice.
func (cs *CompatibilityService) CalculateBatch(ctx context.Context, user BirthData, targets []BirthData) ([]BatchCompatibilityResult, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	prompt := buildBatchPrompt(user, targets)

	content, err := cs.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Results []BatchCompatibilityResult `json:"results"`
	}
	jsonBlock := jsonBlockRe.FindString(content)
	if jsonBlock == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}
	if err := json.Unmarshal([]byte(jsonBlock), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse batch response: %w", err)
	}

	for i := range parsed.Results {
		parsed.Results[i].Score = clampScore(parsed.Results[i].Score)
	}
	return parsed.Results, nil
}

// ScoreCandidates is the degradation wrapper discovery uses: it always returns
// one result per target, in target order, filling the default score and
// description wherever the batch call failed or omitted a candidate.
func (cs *CompatibilityService) ScoreCandidates(ctx context.Context, user BirthData, targets []BirthData) []CompatibilityResult {
	results := make([]CompatibilityResult, len(targets))
	for i := range results {
		results[i] = CompatibilityResult{
			Score:       DefaultCompatibilityScore,
			Description: DefaultCompatibilityDescription,
		}
	}

	batch, err := cs.CalculateBatch(ctx, user, targets)
	if err != nil {
		log.Printf("Compatibility batch failed, using default scores: %v", err)
		return results
	}

	byName := make(map[string]BatchCompatibilityResult, len(batch))
	for _, r := range batch {
		byName[r.TargetName] = r
	}
	for i, t := range targets {
		if r, ok := byName[t.Name]; ok {
			results[i] = CompatibilityResult{Score: r.Score, Description: r.Description}
		}
	}
	return results
}

// complete sends one prompt to the messages API and returns the reply text
func (cs *CompatibilityService) complete(ctx context.Context, prompt string) (string, error) {
	if cs.APIKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not configured")
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":      cs.Model,
		"max_tokens": 2000,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cs.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", cs.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := cs.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("compatibility request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("compatibility API returned %d: %s", resp.StatusCode, string(errText))
	}

	var reply struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("failed to decode API response: %w", err)
	}
	if len(reply.Content) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return reply.Content[0].Text, nil
}

// parseCompatibility pulls a {score, description} object out of the reply,
// falling back to a score regex over the raw text when the JSON is mangled.
func parseCompatibility(content string) CompatibilityResult {
	jsonBlock := jsonBlockRe.FindString(content)
	if jsonBlock != "" {
		var result CompatibilityResult
		if err := json.Unmarshal([]byte(jsonBlock), &result); err == nil && result.Description != "" {
			return result
		}
	}

	score := DefaultCompatibilityScore
	if m := scoreRe.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			score = n
		}
	}

	description := content
	if len(description) > 500 {
		description = description[:500] + "..."
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultCompatibilityDescription
	}
	return CompatibilityResult{Score: score, Description: description}
}

func clampScore(score int) int {
	if score < MinCompatibilityScore {
		return MinCompatibilityScore
	}
	if score > MaxCompatibilityScore {
		return MaxCompatibilityScore
	}
	return score
}

func buildPairPrompt(user, target BirthData) string {
	var b strings.Builder
	b.WriteString("Act as an Indian astrologer, and read the kundli's of both partners:\n\n")
	writePartner(&b, "Partner 1", user)
	b.WriteString("\n")
	writePartner(&b, "Partner 2", target)
	b.WriteString("\nIf these partners were to start dating with the intent to marry, how good would be a match? ")
	b.WriteString("Generate a score from 15-95. Also, write 4-5 lines of how the relationship might go. ")
	b.WriteString(`Return this as a JSON object response with keys "score" and "description".`)
	return b.String()
}

func buildBatchPrompt(user BirthData, targets []BirthData) string {
	var b strings.Builder
	b.WriteString("Act as an Indian astrologer. Read the kundli of the user and of each candidate partner:\n\n")
	writePartner(&b, "User", user)
	for i, t := range targets {
		b.WriteString("\n")
		writePartner(&b, fmt.Sprintf("Candidate %d", i+1), t)
	}
	b.WriteString("\nFor each candidate, if the user and the candidate were to start dating with the intent to marry, ")
	b.WriteString("how good would be a match? Generate a score from 15-95 and 4-5 lines of how the relationship might go. ")
	b.WriteString(`Return a JSON object with a "results" array, one entry per candidate, each with keys `)
	b.WriteString(`"targetName" (the candidate's name exactly as given), "score" and "description".`)
	return b.String()
}

func writePartner(b *strings.Builder, label string, d BirthData) {
	fmt.Fprintf(b, "%s:\n- Name: %s\n- Date of Birth: %s\n- Time of Birth: %s\n- Place of Birth: %s\n",
		label, d.Name, d.DateOfBirth, d.TimeOfBirth, d.PlaceOfBirth)
}
