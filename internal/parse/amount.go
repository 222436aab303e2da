// Package parse turns free-form spreadsheet and form text into numbers and
// unit tokens. It accepts French and English number formats, currency
// decorations and the usual "no value" placeholders.
package parse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrInvalidNumber = errors.New("invalid number")

var placeholders = map[string]struct{}{
	"-": {}, "—": {}, "na": {}, "n/a": {}, "nd": {},
	"s/o": {}, "s.o.": {}, "null": {}, "none": {},
}

var currencySuffixes = []string{"cad", "usd", "eur"}

// Amount parses text into a number. ok is false when the text holds no value
// (empty, placeholder, lone sign); err is only set when something that looks
// like a value cannot be read as a number.
func Amount(text string) (value float64, ok bool, err error) {
	s, ok, err := normalize(text)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	return v, true, nil
}

// Price is Amount for money: the normalised text goes straight into a
// decimal.
func Price(text string) (decimal.Decimal, bool, error) {
	s, ok, err := normalize(text)
	if err != nil || !ok {
		return decimal.Zero, false, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	return d, true, nil
}

// normalize returns a string accepted by strconv.ParseFloat.
func normalize(text string) (string, bool, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", false, nil
	}
	if _, ok := placeholders[strings.ToLower(s)]; ok {
		return "", false, nil
	}

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '$', r == '€', r == '£', r == '%':
			return -1
		}
		return r
	}, s)
	lower := strings.ToLower(s)
	for _, suf := range currencySuffixes {
		if strings.HasSuffix(lower, suf) {
			s = s[:len(s)-len(suf)]
			break
		}
	}

	s = fixSeparators(s)
	if isEmptyNumber(s) {
		return "", false, nil
	}
	if plainDecimal(s) {
		v, err := strconv.ParseFloat(s, 64)
		if errors.Is(err, strconv.ErrRange) || math.IsInf(v, 0) {
			return "", false, fmt.Errorf("%w: %q out of range", ErrInvalidNumber, text)
		}
		if err == nil {
			return s, true, nil
		}
	}

	residual := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' {
			return r
		}
		return -1
	}, s)
	if isEmptyNumber(residual) {
		return "", false, nil
	}
	if !isFinite(residual) {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidNumber, text)
	}
	return residual, true, nil
}

// fixSeparators resolves ',' and '.': when both appear the rightmost one is
// the decimal point and the other is dropped; a lone ',' is a decimal comma;
// a separator repeated on its own is a thousands separator.
func fixSeparators(s string) string {
	comma := strings.LastIndexByte(s, ',')
	dot := strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case dot >= 0:
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// plainDecimal accepts [+-]digits[.digits][e[+-]digits], the grammar both
// strconv.ParseFloat and decimal.NewFromString read the same way. Go-only
// spellings ("1_000", hex floats, "Inf") go through the residual path.
func plainDecimal(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isEmptyNumber(s string) bool {
	switch s {
	case "", ".", "-", "+", "-.", "+.":
		return true
	}
	return false
}

func isFinite(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}
