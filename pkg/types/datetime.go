package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/spf13/cast"
)

// isoLayout matches what browsers produce for Date.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// ParseDateTime parses the textual date forms the backend and users produce:
// RFC 3339 timestamps, bare dates and the other layouts spf13/cast accepts.
// Inputs without a zone are read as UTC.
func ParseDateTime(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, errors.New(ErrInvalidDate, "empty date")
	}
	t, err := cast.ToTimeE(trimmed)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidDate, err, "invalid date %q", s).AddContext("value", s)
	}
	return t.UTC(), nil
}

// FormatDateTime renders t in UTC with millisecond precision.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// DateBound is a DateTime range bound. Raw holds the text received on the
// wire; Time is set once the bound is hydrated.
type DateBound struct {
	Raw  string
	Time time.Time
}

// NewDateBound returns an already hydrated bound.
func NewDateBound(t time.Time) *DateBound {
	return &DateBound{Time: t.UTC()}
}

// RawDateBound returns a bound holding unparsed text.
func RawDateBound(raw string) *DateBound {
	return &DateBound{Raw: raw}
}

func (b DateBound) IsHydrated() bool {
	return !b.Time.IsZero()
}

func (b DateBound) MarshalJSON() ([]byte, error) {
	if b.IsHydrated() {
		return json.Marshal(FormatDateTime(b.Time))
	}
	return json.Marshal(b.Raw)
}

func (b *DateBound) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(ErrInvalidDate, err, "date bound must be a string")
	}
	*b = DateBound{Raw: raw}
	return nil
}

// hydrate returns a parsed copy of b. A bound built from a time.Time has no
// text and is kept as is.
func (b DateBound) hydrate() (*DateBound, error) {
	if b.Raw == "" && b.IsHydrated() {
		return &DateBound{Time: b.Time}, nil
	}
	t, err := ParseDateTime(b.Raw)
	if err != nil {
		return nil, err
	}
	return &DateBound{Raw: b.Raw, Time: t}, nil
}
