package affiliate

import (
	"fmt"
	"net/url"
)

// Provider identifies an affiliate partner.
type Provider string

const (
	ProviderAmazon    Provider = "amazon"
	ProviderIHerb     Provider = "iherb"
	ProviderInstacart Provider = "instacart"
	ProviderThrive    Provider = "thrive"
)

// AmazonTag is the Amazon Associates tracking tag appended to every link.
const AmazonTag = "83apps01-20"

// Known Amazon product ASINs for direct product links. Search fallback is
// used for everything else.
var amazonASINs = map[string]string{
	"whey protein":    "B0015R36SK",
	"protein powder":  "B0015R36SK",
	"greek yogurt":    "B07YZLQ2YZ",
	"chicken breast":  "B08FCKM12C",
	"olive oil":       "B004ULUVU4",
	"avocado oil":     "B01CCOXRLY",
	"almond flour":    "B00CLTGQIG",
	"oat flour":       "B00DQZM86A",
	"coconut oil":     "B00DS842HS",
	"peanut butter":   "B0019GZ7BE",
	"almond butter":   "B001HTIYDI",
	"rice":            "B00JQYQQHG",
	"quinoa":          "B008HQLLAG",
	"oats":            "B07G5SJDN9",
	"rolled oats":     "B07G5SJDN9",
	"honey":           "B003WKAB4S",
	"maple syrup":     "B072JBGVJT",
	"cocoa powder":    "B001E5E0Y2",
	"stevia":          "B001F0RAMG",
	"creatine":        "B000GIQS02",
	"chia seeds":      "B00K4VSN84",
	"flax seeds":      "B007YYHHX0",
	"dark chocolate":  "B003VXHGKC",
	"sriracha":        "B07BNNKVNL",
	"soy sauce":       "B0049YQAX2",
	"sesame oil":      "B0001DMTPM",
	"coconut milk":    "B074MFRVKJ",
	"almond milk":     "B07TF1JTM9",
	"taco seasoning":  "B000W9RAFY",
	"cinnamon":        "B001PQHG5U",
	"turmeric":        "B01LZJ0TBA",
	"vanilla extract": "B0011BQERW",
	"collagen":        "B00NLR1PX0",
	"fish oil":        "B002VLZHLS",
	"granola":         "B01M0YWT0O",
}

// Known iHerb product IDs for direct product links.
var iherbProducts = map[string]string{
	"whey protein":   "27509",
	"protein powder": "27509",
	"creatine":       "22067",
	"collagen":       "64903",
	"fish oil":       "16536",
	"multivitamin":   "18915",
	"probiotic":      "7574",
	"vitamin d":      "36051",
	"vitamin c":      "19380",
	"magnesium":      "6235",
	"zinc":           "694",
	"bcaa":           "62716",
	"greens powder":  "64556",
	"electrolyte":    "85771",
	"ashwagandha":    "72strp",
	"melatonin":      "2064",
	"psyllium husk":  "17617",
	"stevia":         "34498",
	"coconut oil":    "37627",
	"chia seeds":     "62218",
	"flax seeds":     "59987",
	"hemp seeds":     "54914",
	"cocoa powder":   "32727",
	"almond butter":  "31191",
	"peanut butter":  "68499",
}

func amazonProductURL(asin string) string {
	return fmt.Sprintf("https://www.amazon.com/dp/%s?tag=%s", asin, AmazonTag)
}

func amazonSearchURL(query string) string {
	return fmt.Sprintf("https://www.amazon.com/s?k=%s&tag=%s", url.QueryEscape(query), AmazonTag)
}

func iherbProductURL(productID string) string {
	return fmt.Sprintf("https://www.iherb.com/pr/p/%s", productID)
}

func iherbSearchURL(query string) string {
	return fmt.Sprintf("https://www.iherb.com/search?kw=%s", url.QueryEscape(query))
}

func instacartSearchURL(query string) string {
	return fmt.Sprintf("https://www.instacart.com/store/search/%s", url.QueryEscape(query))
}

func thriveSearchURL(query string) string {
	return fmt.Sprintf("https://thrivemarket.com/search?search=%s", url.QueryEscape(query))
}
