package doctors

import (
	"strconv"
	"strings"
)

// Ledger maps a date key (day_month_year, unpadded) to the time labels
// already booked that day. Absence of a key means no bookings. Iteration
// order of a day's labels carries no meaning.
type Ledger map[string][]string

// ValidateDateKey checks the day_month_year shape: three positive integers
// joined by underscores, no zero padding.
func ValidateDateKey(key string) error {
	parts := strings.Split(key, "_")
	if len(parts) != 3 {
		return ErrBadDateKey
	}
	for _, p := range parts {
		if p == "" || (len(p) > 1 && p[0] == '0') {
			return ErrBadDateKey
		}
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return ErrBadDateKey
		}
	}
	return nil
}

// ValidateTimeLabel rejects empty display strings.
func ValidateTimeLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return ErrBadTimeLabel
	}
	return nil
}

// Reserve books timeLabel under dateKey. It fails with ErrSlotTaken when the
// label is already present for that date.
func (l Ledger) Reserve(dateKey, timeLabel string) error {
	if err := ValidateDateKey(dateKey); err != nil {
		return err
	}
	if err := ValidateTimeLabel(timeLabel); err != nil {
		return err
	}
	for _, booked := range l[dateKey] {
		if booked == timeLabel {
			return ErrSlotTaken
		}
	}
	l[dateKey] = append(l[dateKey], timeLabel)
	return nil
}

// Release removes timeLabel from dateKey's entry. Releasing an absent label
// or date is a no-op, so the operation is idempotent.
func (l Ledger) Release(dateKey, timeLabel string) {
	booked, ok := l[dateKey]
	if !ok {
		return
	}
	remaining := booked[:0]
	for _, b := range booked {
		if b != timeLabel {
			remaining = append(remaining, b)
		}
	}
	if len(remaining) == 0 {
		delete(l, dateKey)
		return
	}
	l[dateKey] = remaining
}

// Clone returns an independent copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = append([]string(nil), v...)
	}
	return out
}
