package domain

import (
	"fmt"
	"time"
)

// Date is a UTC calendar date. Wire transfers are bucketed per Date when the
// daily limit is evaluated.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalJSON renders the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a "2006-01-02" date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	t, err := time.ParseInLocation(time.DateOnly, s[1:len(s)-1], time.UTC)
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}
