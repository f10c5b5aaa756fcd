package services

// The category rule set. Rules are evaluated independently; the rule whose
// computed score is highest wins, with ties broken by declaration order
// (first wins). New rule shapes are additive: a rule may carry any
// combination of keywords, an amount range, merchant patterns, and
// time-of-week patterns.

// Score contributions per matched signal. The rule's base confidence is
// multiplied by the accumulated score and capped at maxConfidence.
const (
	scoreKeywordMatch  = 0.4
	scoreAmountInRange = 0.2
	scoreMerchantMatch = 0.3
	scoreTimePattern   = 0.1

	// Profile frequency bias contributes at most this much.
	maxProfileBias = 0.2

	maxConfidence   = 0.95
	floorConfidence = 0.1
)

// Default category when no rule clears the floor.
const (
	categoryOther      = "Other"
	subcategoryGeneral = "General"
	categoryIncome     = "Income"
)

// Time-of-week patterns a rule may require.
const (
	timeWeekend = "weekend"
	timeWeekday = "weekday"
	timeEvening = "evening"
)

type amountRange struct {
	Min float64
	Max float64 // 0 means unbounded above
}

type categoryRule struct {
	Keywords         []string
	Category         string
	Subcategory      string
	BaseConfidence   float64
	AmountRange      *amountRange
	MerchantPatterns []string
	TimePatterns     []string
}

var defaultRules = []categoryRule{
	// Food & Dining
	{
		Keywords:         []string{"starbucks", "coffee", "cafe", "espresso", "latte"},
		Category:         "Food & Dining",
		Subcategory:      "Coffee Shops",
		BaseConfidence:   0.95,
		AmountRange:      &amountRange{Min: 1, Max: 20},
		MerchantPatterns: []string{"starbucks", "dunkin", "peets"},
	},
	{
		Keywords:       []string{"restaurant", "pizza", "burger", "sushi", "diner", "bistro"},
		Category:       "Food & Dining",
		Subcategory:    "Restaurants",
		BaseConfidence: 0.9,
		AmountRange:    &amountRange{Min: 10, Max: 200},
	},
	{
		Keywords:         []string{"grocery", "supermarket", "walmart", "target", "safeway", "kroger", "whole foods", "trader joe"},
		Category:         "Food & Dining",
		Subcategory:      "Groceries",
		BaseConfidence:   0.95,
		AmountRange:      &amountRange{Min: 20, Max: 500},
		MerchantPatterns: []string{"whole foods", "trader joe", "safeway", "kroger"},
	},
	{
		Keywords:       []string{"bar", "brewery", "liquor", "wine", "beer", "pub"},
		Category:       "Food & Dining",
		Subcategory:    "Alcohol & Bars",
		BaseConfidence: 0.9,
		TimePatterns:   []string{timeEvening, timeWeekend},
	},

	// Transportation
	{
		Keywords:         []string{"uber", "lyft", "taxi", "rideshare"},
		Category:         "Transportation",
		Subcategory:      "Rideshare",
		BaseConfidence:   0.95,
		AmountRange:      &amountRange{Min: 5, Max: 100},
		MerchantPatterns: []string{"uber", "lyft"},
	},
	{
		Keywords:       []string{"gas", "shell", "exxon", "chevron", "bp", "mobil", "fuel"},
		Category:       "Transportation",
		Subcategory:    "Gas & Fuel",
		BaseConfidence: 0.95,
		AmountRange:    &amountRange{Min: 20, Max: 150},
	},
	{
		Keywords:       []string{"parking", "meter", "garage"},
		Category:       "Transportation",
		Subcategory:    "Parking",
		BaseConfidence: 0.9,
		AmountRange:    &amountRange{Min: 1, Max: 50},
	},

	// Shopping
	{
		Keywords:       []string{"amazon", "amzn"},
		Category:       "Shopping",
		Subcategory:    "Online Shopping",
		BaseConfidence: 0.95,
	},
	{
		Keywords:       []string{"apple store", "best buy", "electronics"},
		Category:       "Shopping",
		Subcategory:    "Electronics",
		BaseConfidence: 0.9,
		AmountRange:    &amountRange{Min: 50, Max: 5000},
	},
	{
		Keywords:       []string{"clothing", "fashion", "h&m", "zara", "nike", "adidas"},
		Category:       "Shopping",
		Subcategory:    "Clothing",
		BaseConfidence: 0.85,
	},

	// Entertainment
	{
		Keywords:         []string{"netflix", "spotify", "hulu", "disney", "streaming"},
		Category:         "Entertainment",
		Subcategory:      "Streaming",
		BaseConfidence:   0.95,
		AmountRange:      &amountRange{Min: 5, Max: 50},
		MerchantPatterns: []string{"netflix", "spotify", "hulu"},
	},
	{
		Keywords:       []string{"cinema", "theater", "amc", "movie"},
		Category:       "Entertainment",
		Subcategory:    "Movies",
		BaseConfidence: 0.9,
		TimePatterns:   []string{timeEvening, timeWeekend},
	},

	// Housing
	{
		Keywords:       []string{"rent", "mortgage", "apartment", "landlord", "lease"},
		Category:       "Housing",
		Subcategory:    "Rent & Mortgage",
		BaseConfidence: 0.95,
	},

	// Bills & Utilities
	{
		Keywords:       []string{"electric", "electricity", "power", "pge", "edison"},
		Category:       "Bills & Utilities",
		Subcategory:    "Electricity",
		BaseConfidence: 0.95,
		AmountRange:    &amountRange{Min: 50, Max: 500},
	},
	{
		Keywords:       []string{"internet", "wifi", "comcast", "verizon", "att"},
		Category:       "Bills & Utilities",
		Subcategory:    "Internet",
		BaseConfidence: 0.95,
	},
	{
		Keywords:       []string{"phone", "cell", "mobile", "tmobile", "sprint"},
		Category:       "Bills & Utilities",
		Subcategory:    "Phone",
		BaseConfidence: 0.9,
	},

	// Healthcare
	{
		Keywords:       []string{"doctor", "medical", "hospital", "clinic"},
		Category:       "Healthcare",
		Subcategory:    "Medical Services",
		BaseConfidence: 0.9,
	},
	{
		Keywords:         []string{"pharmacy", "cvs", "walgreens", "prescription"},
		Category:         "Healthcare",
		Subcategory:      "Pharmacy",
		BaseConfidence:   0.95,
		MerchantPatterns: []string{"cvs", "walgreens"},
	},

	// Income. The first Income rule doubles as the short-circuit target when
	// a credit transaction carries income keywords.
	{
		Keywords:       []string{"salary", "payroll", "wages", "direct deposit", "paycheck"},
		Category:       categoryIncome,
		Subcategory:    "Salary",
		BaseConfidence: 0.95,
	},
	{
		Keywords:       []string{"freelance", "contractor", "consulting"},
		Category:       categoryIncome,
		Subcategory:    "Freelance",
		BaseConfidence: 0.85,
	},
}

// incomeKeywords trigger the income short-circuit for credit transactions.
var incomeKeywords = []string{
	"salary", "payroll", "wages", "direct deposit", "income",
	"payment", "refund", "cashback", "rebate", "dividend",
	"interest", "bonus", "commission", "freelance",
}
