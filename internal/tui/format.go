package tui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	rupee       = "₹"
	missingText = "n/a"
)

// formatter renders card values with locale thousands separators.
type formatter struct {
	p *message.Printer
}

func newFormatter(tag language.Tag) formatter {
	return formatter{p: message.NewPrinter(tag)}
}

func (f formatter) count(v *int64) string {
	if v == nil {
		return missingText
	}
	return f.p.Sprintf("%v", number.Decimal(*v))
}

func (f formatter) decimal(v float64) string {
	return f.p.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

func (f formatter) lakhs(v *float64) string {
	if v == nil {
		return missingText
	}
	return rupee + f.decimal(*v) + " lakhs"
}

func (f formatter) perDay(v *float64) string {
	if v == nil {
		return missingText
	}
	return rupee + f.decimal(*v) + " per day"
}
