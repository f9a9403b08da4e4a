package entities

// TokenPrice is a fiat quote for one token symbol. Change24h is the
// 24-hour movement in percent, used to compute the snapshot delta.
type TokenPrice struct {
	USD       float64 `json:"usd"`
	Change24h float64 `json:"change_24h"`
}
