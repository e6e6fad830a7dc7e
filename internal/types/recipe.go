package types

import (
	"errors"
	"fmt"
)

// RecipeRecord represents a single recipe returned by the recommendation service.
// Field names follow the service's JSON document so records can be stored and
// replayed without translation.
type RecipeRecord struct {
	RecipeID                   int64    `json:"RecipeId" bson:"RecipeId"`
	Name                       string   `json:"Name" bson:"Name"`
	Description                string   `json:"Description,omitempty" bson:"Description,omitempty"`
	RecipeCategory             string   `json:"RecipeCategory" bson:"RecipeCategory"`
	RecipeIngredientParts      []string `json:"RecipeIngredientParts" bson:"RecipeIngredientParts"`
	RecipeIngredientQuantities []string `json:"RecipeIngredientQuantities,omitempty" bson:"RecipeIngredientQuantities,omitempty"`
	Keywords                   []string `json:"Keywords" bson:"Keywords"`
	KeywordsName               []string `json:"keywords_name,omitempty" bson:"keywords_name,omitempty"`
	Calories                   float64  `json:"Calories" bson:"Calories"`
	TotalTimeMinutes           int      `json:"TotalTime_minutes" bson:"TotalTime_minutes"`
	AggregatedRating           float64  `json:"AggregatedRating" bson:"AggregatedRating"`
	ReviewCount                int      `json:"ReviewCount" bson:"ReviewCount"`
	RecipeInstructions         []string `json:"RecipeInstructions,omitempty" bson:"RecipeInstructions,omitempty"`
	Images                     []string `json:"Images,omitempty" bson:"Images,omitempty"`
	Similarity                 float64  `json:"Similarity,omitempty" bson:"Similarity,omitempty"`
}

// Validate checks the record invariants.
func (r RecipeRecord) Validate() error {
	var errs []error
	if len(r.RecipeIngredientQuantities) > 0 && len(r.RecipeIngredientQuantities) != len(r.RecipeIngredientParts) {
		errs = append(errs, fmt.Errorf("recipe %d: %d ingredient parts but %d quantities",
			r.RecipeID, len(r.RecipeIngredientParts), len(r.RecipeIngredientQuantities)))
	}
	if r.Calories < 0 {
		errs = append(errs, fmt.Errorf("recipe %d: negative calories", r.RecipeID))
	}
	if r.TotalTimeMinutes < 0 {
		errs = append(errs, fmt.Errorf("recipe %d: negative total time", r.RecipeID))
	}
	if r.AggregatedRating < 0 || r.AggregatedRating > 5 {
		errs = append(errs, fmt.Errorf("recipe %d: rating %.2f out of range", r.RecipeID, r.AggregatedRating))
	}
	if r.ReviewCount < 0 {
		errs = append(errs, fmt.Errorf("recipe %d: negative review count", r.RecipeID))
	}
	if r.Similarity < 0 || r.Similarity > 1 {
		errs = append(errs, fmt.Errorf("recipe %d: similarity %.4f out of range", r.RecipeID, r.Similarity))
	}
	return errors.Join(errs...)
}

// IngredientLine pairs an ingredient with its quantity.
type IngredientLine struct {
	Part     string `json:"part"`
	Quantity string `json:"quantity,omitempty"`
}

// IngredientLines zips parts and quantities. Missing quantities are left empty.
func (r RecipeRecord) IngredientLines() []IngredientLine {
	lines := make([]IngredientLine, 0, len(r.RecipeIngredientParts))
	for i, part := range r.RecipeIngredientParts {
		line := IngredientLine{Part: part}
		if i < len(r.RecipeIngredientQuantities) {
			line.Quantity = r.RecipeIngredientQuantities[i]
		}
		lines = append(lines, line)
	}
	return lines
}
