package stocks

import "errors"

var (
	// ErrSymbolNotRecognized is returned when no resolution stage could
	// map the query to a ticker symbol.
	ErrSymbolNotRecognized = errors.New("stocks: symbol not recognized")

	// ErrNoPriceData is returned when the provider answered but carried
	// no closing prices for the requested window.
	ErrNoPriceData = errors.New("stocks: no price data")
)
