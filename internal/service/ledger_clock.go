package service

import "time"

// ledgerClock answers "which calendar month is it" in the ledger timezone.
type ledgerClock struct {
	loc *time.Location
	now func() time.Time
}

func newLedgerClock(loc *time.Location) ledgerClock {
	if loc == nil {
		loc = time.UTC
	}
	return ledgerClock{loc: loc, now: time.Now}
}

func (c ledgerClock) Now() time.Time {
	return c.now().In(c.loc)
}

// CurrentMonth returns the year and month of now in the ledger timezone.
func (c ledgerClock) CurrentMonth() (int, int) {
	now := c.Now()
	return now.Year(), int(now.Month())
}

// Today is midnight of the current ledger day.
func (c ledgerClock) Today() time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
}

// MonthStart is midnight on the first of the month containing t, in the ledger timezone.
func (c ledgerClock) MonthStart(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc)
}
