package formulas

import "github.com/shopspring/decimal"

// Round rounds half to even at the given number of decimal places.
func Round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).RoundBank(places).InexactFloat64()
}

// RoundInt rounds half to even to the nearest integer.
func RoundInt(value float64) int64 {
	return decimal.NewFromFloat(value).RoundBank(0).IntPart()
}
