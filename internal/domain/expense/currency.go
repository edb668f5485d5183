package expense

import (
	"sort"
	"strings"
)

// Currency is an ISO 4217 code from the closed set the service accepts.
type Currency string

const DefaultCurrency Currency = "GBP"

var currencies = map[Currency]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "JPY": {}, "AUD": {},
	"CAD": {}, "CHF": {}, "CNY": {}, "INR": {}, "NZD": {},
	"MXN": {}, "SGD": {}, "HKD": {}, "SEK": {}, "NOK": {},
	"DKK": {}, "KRW": {}, "BRL": {}, "BWP": {}, "BDT": {},
	"BGN": {}, "BHD": {}, "BIF": {}, "BOB": {}, "CVE": {},
	"CZK": {}, "DOP": {}, "EGP": {}, "ETB": {}, "FJD": {},
	"GHS": {}, "GIP": {}, "GMD": {}, "GNF": {}, "GTQ": {},
	"HUF": {}, "IDR": {}, "ISK": {}, "JOD": {}, "KES": {},
	"KWD": {}, "LAK": {}, "LKR": {}, "MAD": {}, "MGA": {},
	"MWK": {}, "MYR": {}, "MZN": {}, "NGN": {}, "NPR": {},
	"OMR": {}, "PEN": {}, "PHP": {}, "PKR": {}, "PLN": {},
	"PYG": {}, "QAR": {}, "RON": {}, "RWF": {}, "SAR": {},
	"SLE": {}, "SRD": {}, "THB": {}, "TND": {}, "TRY": {},
	"TWD": {}, "TZS": {}, "UGX": {}, "VND": {}, "XAF": {},
	"XCD": {}, "XOF": {}, "ZAR": {}, "ZMW": {},
}

// ParseCurrency normalises s to upper case and checks it against the
// accepted codes. Anything that is not a known three letter code is rejected
// with ErrInvalidCurrency.
func ParseCurrency(s string) (Currency, error) {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return "", ErrInvalidCurrency
	}
	c := Currency(strings.ToUpper(s))
	if _, ok := currencies[c]; !ok {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

// Currencies returns the accepted codes in lexical order.
func Currencies() []Currency {
	out := make([]Currency, 0, len(currencies))
	for c := range currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c Currency) String() string {
	return string(c)
}
