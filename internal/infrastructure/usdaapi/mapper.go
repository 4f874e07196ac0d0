package usdaapi

import (
	"math"
	"strconv"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// USDA nutrient IDs for the macro block.
const (
	nutrientIDEnergy       = 1008 // kcal
	nutrientIDProtein      = 1003 // g
	nutrientIDCarbohydrate = 1005 // g
	nutrientIDTotalFat     = 1004 // g
	nutrientIDFiber        = 1079 // g
	nutrientIDSugars       = 2000 // g
	nutrientIDSodium       = 1093 // mg
)

// mapFood converts a USDA food into the canonical record shape with the
// shared data-quality rubric. USDA reports nutrients per 100g.
func mapFood(f food) domain.FoodRecord {
	values := make(map[int]float64, len(f.Nutrients))
	present := make(map[int]bool, len(f.Nutrients))
	for _, n := range f.Nutrients {
		values[n.NutrientID] = n.Value
		present[n.NutrientID] = true
	}

	name := domain.CleanName(f.Description)

	quality := domain.QualityScore(
		name != "",
		f.BrandOwner != "",
		f.FoodCategory != "",
		present[nutrientIDEnergy],
		present[nutrientIDProtein],
		present[nutrientIDCarbohydrate],
		present[nutrientIDTotalFat],
		present[nutrientIDFiber],
		present[nutrientIDSugars],
	)

	return domain.FoodRecord{
		FoodID:      strconv.Itoa(f.FdcID),
		Name:        name,
		Brand:       f.BrandOwner,
		Category:    f.FoodCategory,
		Calories:    int(math.Round(values[nutrientIDEnergy])),
		Protein:     values[nutrientIDProtein],
		Carbs:       values[nutrientIDCarbohydrate],
		Fat:         values[nutrientIDTotalFat],
		Fiber:       values[nutrientIDFiber],
		Sugar:       values[nutrientIDSugars],
		Sodium:      values[nutrientIDSodium],
		ServingSize: 100,
		ServingUnit: "g",
		DataSource:  domain.SourceUSDA,
		DataQuality: quality,
		SearchTerms: domain.BuildSearchTerms(name, f.BrandOwner, f.FoodCategory),
	}
}
