package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Option identifies an option contract.
type Option struct {
	// Underlying is the ticker of the underlying security.
	Underlying string
	// Expiry is the expiration date.
	Expiry time.Time
	// Strike is the strike price.
	Strike decimal.Decimal
	// Put is true for puts and false for calls.
	Put bool
}

var thousand = decimal.NewFromInt(1000)

// Symbol returns the OCC symbol of the contract, like TSLA240119C00250000.
// The strike is in thousandths of a dollar, padded to eight digits.
func (o Option) Symbol() string {
	kind := 'C'
	if o.Put {
		kind = 'P'
	}
	milli := o.Strike.Mul(thousand).Round(0).IntPart()
	return fmt.Sprintf("%s%s%c%08d", strings.ToUpper(o.Underlying), o.Expiry.Format("060102"), kind, milli)
}

// String describes the contract for people, like TSLA 2024-01-19 250 call.
func (o Option) String() string {
	kind := "call"
	if o.Put {
		kind = "put"
	}
	return fmt.Sprintf("%s %s %s %s", strings.ToUpper(o.Underlying), o.Expiry.Format(time.DateOnly), o.Strike.String(), kind)
}
