package offapi

import (
	"math"
	"strconv"
	"strings"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// kJPerKcal converts kilojoules to kilocalories when the provider omits a
// dedicated kcal field.
const kJPerKcal = 4.184

// product is the wire shape of a single OFF product. Nutriment values may
// arrive as numbers or strings, so the block is decoded loosely.
type product struct {
	Code            string                 `json:"code"`
	ID              string                 `json:"id"`
	ProductName     string                 `json:"product_name"`
	Brands          string                 `json:"brands"`
	Categories      string                 `json:"categories"`
	Nutriments      map[string]interface{} `json:"nutriments"`
	ServingSize     string                 `json:"serving_size"`
	ServingQuantity interface{}            `json:"serving_quantity"`
}

// mapProducts converts a page of products, dropping entries without a name
// or nutriment block.
func mapProducts(products []product) []domain.FoodRecord {
	records := make([]domain.FoodRecord, 0, len(products))
	for _, p := range products {
		if p.ProductName == "" || p.Nutriments == nil {
			continue
		}
		if r := mapProduct(p); r != nil {
			records = append(records, *r)
		}
	}
	return records
}

// mapProduct converts one provider product into the canonical food record,
// computing the data-quality rubric. Returns nil for unusable entries.
func mapProduct(p product) *domain.FoodRecord {
	name := domain.CleanName(p.ProductName)
	if name == "" {
		return nil
	}

	foodID := p.Code
	if foodID == "" {
		foodID = p.ID
	}
	if foodID == "" {
		return nil
	}

	brand := firstSegment(p.Brands)
	category := firstSegment(p.Categories)

	// OFF reports nutrition per 100g; energy may only be present as kJ.
	calories := nutriment(p.Nutriments, "energy-kcal_100g", "energy-kcal")
	if calories == 0 {
		calories = nutriment(p.Nutriments, "energy_100g", "energy") / kJPerKcal
	}

	servingSize := servingQuantity(p.ServingQuantity)
	if servingSize <= 0 {
		servingSize = 100
	}
	servingUnit := p.ServingSize
	if servingUnit == "" {
		servingUnit = "g"
	}

	quality := domain.QualityScore(
		p.ProductName != "",
		p.Brands != "",
		p.Categories != "",
		hasNutriment(p.Nutriments, "energy-kcal_100g", "energy-kcal", "energy_100g", "energy"),
		hasNutriment(p.Nutriments, "proteins_100g", "proteins"),
		hasNutriment(p.Nutriments, "carbohydrates_100g", "carbohydrates"),
		hasNutriment(p.Nutriments, "fat_100g", "fat"),
		hasNutriment(p.Nutriments, "fiber_100g", "fiber"),
		hasNutriment(p.Nutriments, "sugars_100g", "sugars"),
	)

	return &domain.FoodRecord{
		FoodID:      foodID,
		Barcode:     p.Code,
		Name:        name,
		Brand:       brand,
		Category:    category,
		Calories:    int(math.Round(calories)),
		Protein:     nutriment(p.Nutriments, "proteins_100g", "proteins"),
		Carbs:       nutriment(p.Nutriments, "carbohydrates_100g", "carbohydrates"),
		Fat:         nutriment(p.Nutriments, "fat_100g", "fat"),
		Fiber:       nutriment(p.Nutriments, "fiber_100g", "fiber"),
		Sugar:       nutriment(p.Nutriments, "sugars_100g", "sugars"),
		Sodium:      nutriment(p.Nutriments, "sodium_100g", "sodium") * 1000, // g -> mg
		ServingSize: servingSize,
		ServingUnit: servingUnit,
		DataSource:  domain.SourceOpenFoodFacts,
		DataQuality: quality,
		SearchTerms: domain.BuildSearchTerms(name, brand, category),
	}
}

// nutriment returns the first present numeric value among keys, or 0.
func nutriment(nutriments map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := toFloat(nutriments[key]); ok {
			return v
		}
	}
	return 0
}

// hasNutriment reports whether any of the keys carries a usable value.
func hasNutriment(nutriments map[string]interface{}, keys ...string) bool {
	for _, key := range keys {
		if _, ok := toFloat(nutriments[key]); ok {
			return true
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case string:
		if value == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func servingQuantity(v interface{}) float64 {
	quantity, _ := toFloat(v)
	return quantity
}

// firstSegment takes the first comma-separated entry of a provider list
// field ("Brand A, Brand B" -> "Brand A").
func firstSegment(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strings.SplitN(s, ",", 2)[0])
}
