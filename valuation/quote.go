package valuation

import (
	"strings"

	"github.com/etnz/screener"
)

// Quote is one contract of an options chain, with the chain level values
// (underlying price, rate, volatility) copied in.
type Quote struct {
	CompanySymbol    string
	PutCall          string // CALL or PUT
	Description      string
	Symbol           string
	DaysToExpiration float64
	UnderlyingPrice  float64
	StrikePrice      float64
	InterestRate     float64 // percent
	Volatility       float64 // percent
	TheoreticalValue float64 // NaN or Unknown when missing
	Ask              float64
}

// Skip reports whether the quote cannot be priced: already expired or no underlying price.
func (q Quote) Skip() bool { return q.DaysToExpiration <= 0 || q.UnderlyingPrice == 0 }

// Inputs converts the quote percents and days to model inputs.
func (q Quote) Inputs() Inputs {
	return Inputs{
		S: q.UnderlyingPrice,
		X: q.StrikePrice,
		R: q.InterestRate / 100,
		T: q.DaysToExpiration / 365,
		O: q.Volatility / 100,
	}
}

// Evaluate prices and rates the quote. It returns the option record and whether
// it is valuable.
func Evaluate(q Quote) (*screener.Option, bool, error) {
	var bs float64
	var err error
	if strings.EqualFold(q.PutCall, "PUT") {
		bs, err = Put(q.Inputs())
	} else {
		bs, err = Call(q.Inputs())
	}
	if err != nil {
		return nil, false, err
	}
	o := &screener.Option{
		CompanySymbol:      q.CompanySymbol,
		Type:               strings.ToUpper(q.PutCall),
		Description:        q.Description,
		Symbol:             q.Symbol,
		BlackScholesValue:  bs,
		ExternalModelValue: q.TheoreticalValue,
		Premium:            q.Ask,
		ContractRating:     Rating(bs, q.TheoreticalValue, q.Ask),
	}
	return o, Valuable(bs, q.TheoreticalValue, q.Ask), nil
}
