package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// amountFlag is a pflag.Value for byte-count flags that accept a K/M/G
// binary suffix, e.g. "64M" for 64*1024*1024. Grounded on parse_amount in
// _examples/original_source/tutte/tutte.cpp: strtol over the leading
// digits, then a single-character multiplier lookup on whatever strtol
// left unconsumed.
type amountFlag struct {
	value int
}

func (a *amountFlag) String() string {
	return strconv.Itoa(a.value)
}

func (a *amountFlag) Type() string {
	return "bytes[K|M|G]"
}

func (a *amountFlag) Set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("amount: empty value")
	}
	mult := 1
	suffix := s[len(s)-1]
	switch suffix {
	case 'K', 'k':
		mult = 1024
		s = s[:len(s)-1]
	case 'M', 'm':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'G', 'g':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.Wrapf(err, "amount: invalid value %q", s)
	}
	a.value = n * mult
	return nil
}
