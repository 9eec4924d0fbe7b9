package auction

// Increment is a bid increment step, Increment applies to prices below
// Threshold. A negative Threshold marks the default above all thresholds.
type Increment struct {
	Threshold float64
	Increment float64
}

// Epsilon absorbs floating point rounding when comparing prices.
const Epsilon = 0.0001

var usIncrements = []Increment{
	{1.00, 0.05},
	{5.00, 0.25},
	{25.00, 0.50},
	{100.00, 1.00},
	{250.00, 2.50},
	{500.00, 5.00},
	{1000.00, 10.00},
	{2500.00, 25.00},
	{5000.00, 50.00},
	{-1, 100.00},
}

var eurIncrements = []Increment{
	{50.00, 0.50},
	{500.00, 1.00},
	{1000.00, 5.00},
	{5000.00, 10.00},
	{-1, 50.00},
}

var cadIncrements = []Increment{
	{1.00, 0.05},
	{5.00, 0.25},
	{25.00, 0.50},
	{100.00, 1.00},
	{-1, 2.50},
}

var gbpIncrements = []Increment{
	{1.01, 0.05},
	{5.01, 0.20},
	{15.01, 0.50},
	{60.01, 1.00},
	{150.01, 2.00},
	{300.01, 5.00},
	{600.01, 10.00},
	{1500.01, 20.00},
	{3000.01, 50.00},
	{-1, 100.00},
}

var ntIncrements = []Increment{
	{501.00, 15.00},
	{2501.00, 30.00},
	{5001.00, 50.00},
	{25001.00, 100.00},
	{-1, 200.00},
}

// no published table, the smallest unit is used
var defaultIncrements = []Increment{
	{-1, 0.01},
}

var incrementTables = map[string][]Increment{
	"AU":  usIncrements,
	"US":  usIncrements,
	"EUR": eurIncrements,
	"CHF": eurIncrements,
	"C":   cadIncrements,
	"GBP": gbpIncrements,
	"RMB": gbpIncrements,
	"NT":  ntIncrements,
	"HKD": defaultIncrements,
	"SGD": defaultIncrements,
}

// Increments returns the increment table for a currency code, an empty
// code is treated as US.
func Increments(currency string) []Increment {
	if currency == "" {
		return usIncrements
	}
	table, ok := incrementTables[currency]
	if !ok {
		return defaultIncrements
	}
	return table
}

// LookupIncrement returns the increment of the first threshold strictly
// greater than price.
func LookupIncrement(currency string, price float64) float64 {
	table := Increments(currency)
	for _, step := range table {
		if step.Threshold < 0 || price < step.Threshold {
			return step.Increment
		}
	}
	return table[len(table)-1].Increment
}

// IsValidBidPrice reports whether the bid price beats the current price.
// The increment only applies when every item has been bid on and the
// user is not already winning.
func (a *Auction) IsValidBidPrice() bool {
	increment := 0.0
	if a.QuantityBid == a.Quantity && a.Winning == 0 {
		increment = LookupIncrement(a.Currency, a.Price)
	}
	return a.BidPrice >= a.Price+increment-Epsilon
}
