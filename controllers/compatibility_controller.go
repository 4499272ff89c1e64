package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"astromatch_server/services"
)

// CompatibilityController exposes the astrological scoring function over HTTP,
// for single pairs and for batches.
type CompatibilityController struct {
	CompatibilityService *services.CompatibilityService
}

// NewCompatibilityController initializes the compatibility controller
func NewCompatibilityController(service *services.CompatibilityService) *CompatibilityController {
	return &CompatibilityController{CompatibilityService: service}
}

type compatibilityRequest struct {
	UserProfile    *services.BirthData  `json:"userProfile"`
	TargetProfile  *services.BirthData  `json:"targetProfile"`
	TargetProfiles []services.BirthData `json:"targetProfiles"`
}

// Calculate scores one pair or a batch depending on the request shape. Scoring
// failures degrade to the default score rather than erroring the call.
func (c *CompatibilityController) Calculate(w http.ResponseWriter, r *http.Request) {
	var req compatibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.UserProfile == nil || !validBirthData(*req.UserProfile) {
		http.Error(w, `{"error": "userProfile with name, dateOfBirth, timeOfBirth and placeOfBirth is required"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if len(req.TargetProfiles) > 0 {
		results := c.CompatibilityService.ScoreCandidates(r.Context(), *req.UserProfile, req.TargetProfiles)
		batch := make([]services.BatchCompatibilityResult, len(results))
		for i, res := range results {
			batch[i] = services.BatchCompatibilityResult{
				TargetName:  req.TargetProfiles[i].Name,
				Score:       res.Score,
				Description: res.Description,
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"results": batch})
		return
	}

	if req.TargetProfile == nil || !validBirthData(*req.TargetProfile) {
		http.Error(w, `{"error": "targetProfile or targetProfiles is required"}`, http.StatusBadRequest)
		return
	}

	result, err := c.CompatibilityService.Calculate(r.Context(), *req.UserProfile, *req.TargetProfile)
	if err != nil {
		log.Printf("Compatibility calculation failed: %v", err)
		result = services.CompatibilityResult{
			Score:       services.DefaultCompatibilityScore,
			Description: services.DefaultCompatibilityDescription,
		}
	}
	json.NewEncoder(w).Encode(result)
}

func validBirthData(d services.BirthData) bool {
	return d.Name != "" && d.DateOfBirth != "" && d.TimeOfBirth != "" && d.PlaceOfBirth != ""
}
