package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetPrice is a single daily bar for a symbol
type AssetPrice struct {
	Symbol   string
	Date     time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	AdjClose decimal.Decimal
	Volume   int64
}

// ClosingPrice prefers the split/dividend adjusted close and falls
// back to the raw close when the provider did not send one
func (p AssetPrice) ClosingPrice() float64 {
	if p.AdjClose.IsZero() {
		return p.Close.InexactFloat64()
	}
	return p.AdjClose.InexactFloat64()
}

// PriceRecord is the wire shape of a daily bar served by the data
// service
type PriceRecord struct {
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
	Volume   int64   `json:"volume"`
}

func NewPriceRecord(p AssetPrice) PriceRecord {
	return PriceRecord{
		Date:     p.Date.Format(time.DateOnly),
		Open:     p.Open.InexactFloat64(),
		High:     p.High.InexactFloat64(),
		Low:      p.Low.InexactFloat64(),
		Close:    p.Close.InexactFloat64(),
		AdjClose: p.AdjClose.InexactFloat64(),
		Volume:   p.Volume,
	}
}

func (r PriceRecord) ToAssetPrice(symbol string) (AssetPrice, error) {
	date, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return AssetPrice{}, fmt.Errorf("%w: %s", ErrInvalidDateFormat, err.Error())
	}
	return AssetPrice{
		Symbol:   symbol,
		Date:     date,
		Open:     decimal.NewFromFloat(r.Open),
		High:     decimal.NewFromFloat(r.High),
		Low:      decimal.NewFromFloat(r.Low),
		Close:    decimal.NewFromFloat(r.Close),
		AdjClose: decimal.NewFromFloat(r.AdjClose),
		Volume:   r.Volume,
	}, nil
}
