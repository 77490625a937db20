package services

// ModelPrice is dollars per million tokens.
type ModelPrice struct {
	Input  float64
	Output float64
}

const DefaultModel = "gemini-3.0-flash"

var priceTable = map[string]ModelPrice{
	"gemini-3.0-flash": {Input: 0.10, Output: 0.40},
	"gemini-3.0-pro":   {Input: 1.25, Output: 5.00},
	"gemini-2.5-flash": {Input: 0.075, Output: 0.30},
	"gemini-2.0-flash": {Input: 0.10, Output: 0.40},
}

// defaultPrice is the tier applied to unknown model ids, so a newly offered
// model never breaks cost reporting.
var defaultPrice = ModelPrice{Input: 0.10, Output: 0.40}

func PriceFor(model string) ModelPrice {
	if p, ok := priceTable[model]; ok {
		return p
	}
	return defaultPrice
}

// EstimateCost converts token counts to an estimated dollar cost for the
// given model.
func EstimateCost(model string, tokensInput, tokensOutput int) float64 {
	p := PriceFor(model)
	return (float64(tokensInput)*p.Input + float64(tokensOutput)*p.Output) / 1_000_000
}
