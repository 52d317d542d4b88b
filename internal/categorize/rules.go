package categorize

// Category labels produced by the default rule table.
const (
	Groceries          = "Groceries"
	Travel             = "Travel"
	Subscriptions      = "Subscriptions"
	Bills              = "Bills"
	TakeAway           = "Take-Away"
	Haircut            = "Haircut"
	DirectDebitPayment = "Direct Debit Payment"
	OnlineShopping     = "Online Shopping"
	Miscellaneous      = "Miscellaneous"
)

// Rule maps a set of lower-case keywords to a category. A description
// matches when it contains any of the keywords.
type Rule struct {
	Keywords []string `json:"keywords"`
	Category string   `json:"category"`
}

// Order matters: the first matching rule wins.
var defaultRules = []Rule{
	{Keywords: []string{"lidl", "tesco", "sainsbury", "aldi"}, Category: Groceries},
	{Keywords: []string{"tfl travel", "uber", "trainline"}, Category: Travel},
	{Keywords: []string{"spotify", "energie", "vision"}, Category: Subscriptions},
	{Keywords: []string{"with energy", "virgin media"}, Category: Bills},
	{Keywords: []string{"deliveroo"}, Category: TakeAway},
	{Keywords: []string{"pele barbers"}, Category: Haircut},
	{Keywords: []string{"payment received - thank you"}, Category: DirectDebitPayment},
	{Keywords: []string{"amznmktplace"}, Category: OnlineShopping},
}
