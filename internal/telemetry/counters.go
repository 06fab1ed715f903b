package telemetry

// DeriveMissingCounters fills in color or bw by subtraction when total and
// exactly one of the two is known. Results are floored at zero; a negative
// difference means the counters disagree and deriving would lie.
func DeriveMissingCounters(c Counters) Counters {
	if c.Total <= 0 {
		return c
	}
	if c.Color > 0 && c.BW <= 0 {
		c.BW = c.Total - c.Color
		if c.BW < 0 {
			c.BW = 0
		}
	} else if c.BW > 0 && c.Color <= 0 {
		c.Color = c.Total - c.BW
		if c.Color < 0 {
			c.Color = 0
		}
	}
	return c
}

// UptimeSeconds converts a sysUpTime timeticks value (centiseconds) to
// seconds.
func UptimeSeconds(timeticks int64) int64 {
	if timeticks <= 0 {
		return 0
	}
	return timeticks / 100
}
