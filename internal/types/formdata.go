package types

// Range is an inclusive numeric bound used by the filter form.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// FormMetadata is the option catalogue served by the recommendation service.
type FormMetadata struct {
	Categories         []string                       `json:"categories"`
	DietaryPreferences map[string][]string            `json:"dietary_preferences"`
	Ingredients        map[string]map[string][]string `json:"ingredients"`
	CalorieRanges      map[string]Range               `json:"calorie_ranges"`
	TimeRanges         map[string]Range               `json:"time_ranges"`
}

// HasCategory reports whether c is one of the offered categories.
func (m *FormMetadata) HasCategory(c string) bool {
	for _, category := range m.Categories {
		if category == c {
			return true
		}
	}
	return false
}
