package domain

import "errors"

var (
	// ErrEmptyData means there are no usable rows left to compute on
	ErrEmptyData = errors.New("empty data")
	// ErrInvalidDateFormat means a date could not be parsed or the
	// dates are not strictly increasing
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrInvalidWeights means the weight vector does not match the
	// symbols or does not sum to 1
	ErrInvalidWeights = errors.New("invalid weights")
	// ErrProvider means the upstream price history fetch failed or
	// returned nothing
	ErrProvider = errors.New("price provider error")
	// ErrDuplicateSymbol means a table names the same symbol in two columns
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	// ErrZeroVolatility means the sharpe ratio is undefined
	ErrZeroVolatility = errors.New("zero volatility: sharpe ratio undefined")
)
