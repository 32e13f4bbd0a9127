package identity

import "time"

// QuarterStart returns midnight of the first day of the fiscal quarter that
// contains t, for a fiscal year beginning in fiscalStart.
func QuarterStart(t time.Time, fiscalStart time.Month) time.Time {
	if fiscalStart < time.January || fiscalStart > time.December {
		fiscalStart = time.January
	}
	offset := (int(t.Month()) - int(fiscalStart) + 12) % 12
	return time.Date(t.Year(), t.Month()-time.Month(offset%3), 1, 0, 0, 0, 0, t.Location())
}

// QuarterEnd returns midnight of the last day of that quarter.
func QuarterEnd(t time.Time, fiscalStart time.Month) time.Time {
	return QuarterStart(t, fiscalStart).AddDate(0, 3, -1)
}
