package world

// Clock converts the tick counter into game time of day and supplies the
// need-decay multiplier for the current hour. Both configured windows may
// wrap midnight.
type Clock struct {
	StartHour    int
	TicksPerHour int64

	NightStart int
	NightEnd   int
	SleepStart int
	SleepEnd   int
	NightRate  float64
	SleepRate  float64
}

// HourAt returns the hour of day, 0 to 23, at the given tick.
func (c *Clock) HourAt(tick int64) int {
	if c.TicksPerHour <= 0 {
		return c.StartHour % 24
	}
	h := (int64(c.StartHour) + tick/c.TicksPerHour) % 24
	return int(h)
}

// DayAt returns the day number at the given tick, starting from 0.
func (c *Clock) DayAt(tick int64) int64 {
	if c.TicksPerHour <= 0 {
		return 0
	}
	return (int64(c.StartHour) + tick/c.TicksPerHour) / 24
}

// DecayMultiplier returns the need-decay factor for the given tick. The
// sleep window wins over the plain night window.
func (c *Clock) DecayMultiplier(tick int64) float64 {
	h := c.HourAt(tick)
	if hourInWindow(h, c.SleepStart, c.SleepEnd) {
		return c.SleepRate
	}
	if hourInWindow(h, c.NightStart, c.NightEnd) {
		return c.NightRate
	}
	return 1.0
}

// IsSleepHour reports whether the tick falls inside the sleep window.
func (c *Clock) IsSleepHour(tick int64) bool {
	return hourInWindow(c.HourAt(tick), c.SleepStart, c.SleepEnd)
}

// IsNightHour reports whether the tick falls inside the night window.
func (c *Clock) IsNightHour(tick int64) bool {
	return hourInWindow(c.HourAt(tick), c.NightStart, c.NightEnd)
}

// hourInWindow reports whether h lies in [start, end), wrapping midnight
// when start >= end. An equal start and end is an empty window.
func hourInWindow(h, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}
