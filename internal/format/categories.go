package format

import "github.com/Joseda-hg/supertask/internal/model"

// DefaultCategories returns the fixed categories every user starts with.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Trabalho", Color: "#3b82f6"},
		{ID: 2, Name: "Estudos", Color: "#10b981"},
		{ID: 3, Name: "Lazer", Color: "#f59e0b"},
		{ID: 4, Name: "Pessoal", Color: "#ef4444"},
	}
}

// MergeCategories lists the defaults first, then every server category whose
// name is not a default. Appended entries are renumbered after the defaults.
func MergeCategories(defaults, server []model.Category) []model.Category {
	merged := make([]model.Category, 0, len(defaults)+len(server))
	merged = append(merged, defaults...)

	nextID := int64(len(defaults) + 1)
	for _, category := range server {
		if _, ok := FindCategory(defaults, category.Name); ok {
			continue
		}
		category.ID = nextID
		nextID++
		merged = append(merged, category)
	}
	return merged
}
