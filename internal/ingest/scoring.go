package ingest

import "strings"

// Whole foods that should always rank well in the cache.
var priorityWholeFoods = []string{
	"apple", "banana", "orange", "strawberry", "blueberry", "grape", "avocado",
	"broccoli", "spinach", "carrot", "tomato", "potato", "onion", "garlic",
	"chicken breast", "salmon", "tuna", "ground beef", "eggs", "tofu",
	"milk", "cheese", "yogurt", "butter", "olive oil",
	"rice", "oats", "quinoa", "bread", "pasta",
	"almonds", "walnuts", "peanuts", "black beans", "lentils",
}

// Categories that indicate minimally processed food.
var goodCategories = []string{
	"fruits", "vegetables", "meat", "fish", "seafood", "poultry",
	"dairy", "eggs", "grains", "cereals", "nuts", "legumes", "oils",
}

// Categories that indicate heavily processed food.
var avoidCategories = []string{
	"sodas", "candy", "cookies", "chips", "ice-cream", "chocolate",
	"frozen-meals", "ready-meals", "fast-food",
}

// wholeFoodScore is the selection heuristic favoring minimally processed
// foods. The constants encode product policy and are carried over as-is.
// The score never goes below zero.
func wholeFoodScore(name, categories, ingredients string) int {
	score := 0
	nameLower := strings.ToLower(name)
	categoriesLower := strings.ToLower(categories)

	for _, food := range priorityWholeFoods {
		if strings.Contains(nameLower, food) {
			score += 10
			break
		}
	}

	for _, cat := range goodCategories {
		if strings.Contains(categoriesLower, cat) {
			score += 5
			break
		}
	}

	for _, cat := range avoidCategories {
		if strings.Contains(categoriesLower, cat) {
			score -= 8
			break
		}
	}

	// Short names and short ingredient lists suggest whole foods.
	switch wordCount := len(strings.Fields(name)); {
	case wordCount <= 2:
		score += 3
	case wordCount <= 4:
		score++
	default:
		score -= 2
	}

	if ingredients != "" {
		switch ingredientCount := len(strings.Split(ingredients, ",")); {
		case ingredientCount == 1:
			score += 5
		case ingredientCount <= 3:
			score += 2
		case ingredientCount <= 5:
			// neutral
		default:
			score -= 3
		}
	}

	if !strings.ContainsAny(name, "®™©") {
		score += 2
	}

	if score < 0 {
		score = 0
	}
	return score
}
