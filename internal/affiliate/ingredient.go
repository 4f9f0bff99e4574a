package affiliate

import (
	"regexp"
	"strings"
)

// Category buckets an ingredient for provider routing.
type Category string

const (
	CategorySupplement Category = "supplement"
	CategoryProduce    Category = "produce"
	CategoryDairy      Category = "dairy"
	CategoryMeat       Category = "meat"
	CategoryFrozen     Category = "frozen"
	CategoryCondiment  Category = "condiment"
	CategoryOrganic    Category = "organic"
	CategoryPantry     Category = "pantry"
	CategoryOther      Category = "other"
)

// Keyword-based classification (fast, no ML needed). Order inside each list
// matters only for readability; the category check order in Classify is the
// contract.
var categoryKeywords = map[Category][]string{
	CategorySupplement: {
		"protein powder", "whey", "casein", "creatine", "bcaa", "pre-workout",
		"collagen", "fish oil", "omega", "multivitamin", "vitamin", "probiotic",
		"greens powder", "electrolyte", "amino acid", "glutamine",
	},
	CategoryProduce: {
		"lettuce", "spinach", "kale", "arugula", "tomato", "onion", "garlic",
		"pepper", "cucumber", "avocado", "banana", "apple", "berry", "berries",
		"strawberry", "blueberry", "raspberry", "lemon", "lime", "orange",
		"broccoli", "cauliflower", "zucchini", "carrot", "celery", "mushroom",
		"sweet potato", "potato", "corn", "asparagus", "green bean", "edamame",
		"mango", "pineapple", "ginger root", "fresh",
	},
	CategoryDairy: {
		"yogurt", "greek yogurt", "cottage cheese", "cheese", "milk", "cream",
		"butter", "sour cream", "cream cheese", "mozzarella", "parmesan",
		"cheddar", "feta", "ricotta", "whipped cream", "half and half",
	},
	CategoryMeat: {
		"chicken", "turkey", "beef", "steak", "salmon", "tuna", "shrimp",
		"pork", "bacon", "sausage", "ground beef", "ground turkey", "fish",
		"tilapia", "cod", "egg", "eggs", "egg white",
	},
	CategoryFrozen: {
		"frozen banana", "frozen berry", "frozen berries", "frozen fruit",
		"frozen vegetable", "frozen spinach", "frozen mango",
	},
	CategoryCondiment: {
		"sriracha", "soy sauce", "hot sauce", "ketchup", "mustard", "mayo",
		"mayonnaise", "vinegar", "sesame oil", "teriyaki", "salsa", "bbq sauce",
		"worcestershire", "fish sauce", "oyster sauce", "tahini", "hummus",
	},
	CategoryOrganic: {
		"organic", "grass-fed", "pasture-raised", "non-gmo", "raw honey",
		"sprouted", "cold-pressed",
	},
	CategoryPantry: {
		"rice", "quinoa", "oats", "oatmeal", "flour", "sugar", "salt",
		"pepper", "olive oil", "coconut oil", "avocado oil", "peanut butter",
		"almond butter", "honey", "maple syrup", "cocoa powder", "stevia",
		"baking powder", "baking soda", "vanilla extract", "cinnamon",
		"cumin", "paprika", "turmeric", "chili powder", "oregano", "basil",
		"thyme", "rosemary", "chia seeds", "flax seeds", "hemp seeds",
		"sesame seeds", "almonds", "walnuts", "cashews", "peanuts",
		"coconut flakes", "dark chocolate", "granola", "bread", "tortilla",
		"pasta", "noodles", "taco seasoning", "broth", "stock",
		"almond milk", "oat milk", "coconut milk", "almond flour",
	},
}

// classifyOrder is the tie-break priority for the non-modifier categories.
// Frozen and organic are cross-cutting modifiers and are checked before
// these (a frozen berry must not fall through to produce).
var classifyOrder = []Category{
	CategorySupplement,
	CategoryDairy,
	CategoryMeat,
	CategoryProduce,
	CategoryCondiment,
	CategoryPantry,
}

// Classify maps a normalized ingredient name to a category.
func Classify(name string) Category {
	lower := strings.ToLower(name)

	for _, kw := range categoryKeywords[CategoryFrozen] {
		if strings.Contains(lower, kw) {
			return CategoryFrozen
		}
	}
	for _, kw := range categoryKeywords[CategoryOrganic] {
		if strings.Contains(lower, kw) {
			return CategoryOrganic
		}
	}
	for _, cat := range classifyOrder {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return CategoryOther
}

var quantityRE = regexp.MustCompile(
	`(?i)^[\d¼½¾⅓⅔⅛/.\s-]+` +
		`(?:cups?|tbsps?|tsps?|tablespoons?|teaspoons?|oz|ounces?|lbs?|pounds?` +
		`|g|grams?|kg|ml|liters?|pieces?|cloves?|slices?|pinch(?:es)?|dash(?:es)?|bunch(?:es)?|cans?|packages?|scoops?|servings?|sprigs?|heads?|stalks?)` +
		`\s*`)

var parentheticalRE = regexp.MustCompile(`\(.*?\)`)

var spacesRE = regexp.MustCompile(`\s+`)

// ParseIngredient splits a raw ingredient string into (amount, normalized name).
//
//	"2 cups greek yogurt (0% fat)" → ("2 cups", "greek yogurt")
//	"1 scoop protein powder"       → ("1 scoop", "protein powder")
//	"honey"                        → ("", "honey")
func ParseIngredient(raw string) (amount, name string) {
	text := strings.TrimSpace(raw)

	if m := quantityRE.FindString(text); m != "" {
		amount = strings.TrimSpace(text[:len(m)])
		name = text[len(m):]
	} else {
		name = text
	}

	name = parentheticalRE.ReplaceAllString(name, "")
	name = spacesRE.ReplaceAllString(name, " ")
	name = strings.ToLower(strings.Trim(name, ",. "))
	return amount, name
}
