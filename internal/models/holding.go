package models

// Position is an open brokerage position normalised to a plain ticker.
type Position struct {
	Ticker       string  `json:"ticker"`
	TickerFull   string  `json:"ticker_full"`
	CompanyName  string  `json:"company_name"`
	Currency     string  `json:"currency"`
	Quantity     float64 `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
	CurrentPrice float64 `json:"current_price"`
	TotalValue   float64 `json:"total_value"`
}

// AccountCash is a brokerage account balance. Total includes holdings and cash;
// Free is cash available to invest.
type AccountCash struct {
	Free     float64 `json:"free"`
	Total    float64 `json:"total"`
	Invested float64 `json:"invested"`
	PPL      float64 `json:"ppl"`
	Result   float64 `json:"result"`
	Blocked  float64 `json:"blocked"`
}
