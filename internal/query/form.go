package query

import (
	"slices"

	"github.com/pageza/recipefinder/backend/internal/types"
)

// Form holds the cascading selections of the structured filter form.
// Choosing a category resets everything below it; choosing preferences
// resets the ingredient selection and its option set.
type Form struct {
	meta *types.FormMetadata

	Category           string      `json:"category"`
	DietaryPreferences []string    `json:"dietaryPreferences"`
	Ingredients        []string    `json:"ingredients"`
	Calories           int         `json:"calories"`
	Time               int         `json:"time"`
	PreferenceOptions  []string    `json:"preferenceOptions"`
	IngredientOptions  []string    `json:"ingredientOptions"`
	CalorieRange       types.Range `json:"calorieRange"`
	TimeRange          types.Range `json:"timeRange"`
}

// NewForm starts an empty form over meta.
func NewForm(meta *types.FormMetadata) *Form {
	return &Form{
		meta:         meta,
		CalorieRange: DefaultCalorieRange,
		TimeRange:    DefaultTimeRange,
		Calories:     DefaultCalorieRange.Min,
		Time:         DefaultTimeRange.Min,
	}
}

// SelectCategory sets the category and resets the dependent selections to
// the category's defaults.
func (f *Form) SelectCategory(category string) {
	f.Category = category
	f.DietaryPreferences = nil
	f.Ingredients = nil
	f.IngredientOptions = nil
	f.PreferenceOptions = slices.Clone(f.meta.DietaryPreferences[category])
	f.CalorieRange, f.TimeRange = CategoryRanges(f.meta, category)
	f.Calories = f.CalorieRange.Min
	f.Time = f.TimeRange.Min
}

// SelectPreferences replaces the preference selection, repopulates the
// ingredient options and clears checked ingredients.
func (f *Form) SelectPreferences(preferences ...string) {
	f.DietaryPreferences = dedupe(preferences)
	f.IngredientOptions = IngredientOptions(f.meta, f.Category, f.DietaryPreferences)
	f.Ingredients = nil
}

// ToggleIngredient checks or unchecks an offered ingredient. Ingredients not
// in the option set are ignored.
func (f *Form) ToggleIngredient(ingredient string) {
	if !slices.Contains(f.IngredientOptions, ingredient) {
		return
	}
	if i := slices.Index(f.Ingredients, ingredient); i >= 0 {
		f.Ingredients = slices.Delete(f.Ingredients, i, i+1)
		return
	}
	f.Ingredients = append(f.Ingredients, ingredient)
}

func (f *Form) SetCalories(n int) { f.Calories = n }

func (f *Form) SetTime(n int) { f.Time = n }

// Query returns the current selections as a StructuredQuery.
func (f *Form) Query() types.StructuredQuery {
	return types.StructuredQuery{
		Category:           f.Category,
		DietaryPreferences: slices.Clone(f.DietaryPreferences),
		Ingredients:        slices.Clone(f.Ingredients),
		CalorieTarget:      f.Calories,
		TimeLimitMinutes:   f.Time,
	}
}

// Build validates the current selections with b.
func (f *Form) Build(b *Builder) (types.SearchRequest, error) {
	return b.BuildStructured(f.meta, f.Query())
}
