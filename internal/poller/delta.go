package poller

import (
	"math"

	"printer-fleet-backend/internal/model"
)

// Reasons a snapshot pair yields no print log. These end up in cycle logs,
// never in user-facing state.
const (
	SkipNoBaseline     = "no_baseline"
	SkipNoActivity     = "no_activity"
	SkipCounterReset   = "counter_reset"
	SkipCounterAnomaly = "counter_anomaly"
)

// maxPlausibleDelta caps how many pages a printer can believably produce
// within one polling interval. Anything above it is firmware garbage.
const maxPlausibleDelta = 10000

// ComputeDelta derives the usage record between two consecutive snapshots of
// the same printer. Returns (nil, reason) when the pair cannot produce a
// trustworthy delta: missing baseline, a counter reset, or an implausible
// jump. The emitted log always satisfies ColorPrints+BWPrints == TotalPrints.
func ComputeDelta(previous, current *model.StatusSnapshot) (*model.PrintLog, string) {
	if previous == nil {
		return nil, SkipNoBaseline
	}
	if current.CounterTotal < previous.CounterTotal {
		return nil, SkipCounterReset
	}

	totalDelta := current.CounterTotal - previous.CounterTotal
	if totalDelta == 0 {
		return nil, SkipNoActivity
	}
	if totalDelta > maxPlausibleDelta {
		return nil, SkipCounterAnomaly
	}

	rawColor := current.CounterColor - previous.CounterColor
	rawBW := current.CounterBW - previous.CounterBW

	// A per-channel decrease is that channel's partial reset: it contributes
	// zero, never a negative, and disqualifies the raw ratio below.
	channelReset := rawColor < 0 || rawBW < 0
	if rawColor < 0 {
		rawColor = 0
	}
	if rawBW < 0 {
		rawBW = 0
	}

	colorPrints, bwPrints := rawColor, rawBW
	reconciled := false
	if rawColor+rawBW != totalDelta {
		reconciled = true
		colorPrints = reconcileColor(totalDelta, rawColor, rawBW, channelReset, previous)
		bwPrints = totalDelta - colorPrints
	}

	log := &model.PrintLog{
		PrinterID:         current.PrinterID,
		StartCounter:      previous.CounterTotal,
		EndCounter:        current.CounterTotal,
		ColorCounterTotal: current.CounterColor,
		BWCounterTotal:    current.CounterBW,
		TotalPrints:       totalDelta,
		ColorPrints:       colorPrints,
		BWPrints:          bwPrints,
		StartedAt:         previous.CapturedAt,
		EndedAt:           current.CapturedAt,
		Source:            "snmp",
	}
	if reconciled {
		log.Metadata = map[string]any{
			"reconciled":      true,
			"raw_color_delta": rawColor,
			"raw_bw_delta":    rawBW,
		}
	}
	return log, ""
}

// reconcileColor picks the color share of totalDelta when the raw channel
// deltas do not add up. The raw ratio is used only when neither channel was
// reset; otherwise the historical color/bw mix of the previous snapshot
// decides, with 50/50 as the no-history fallback.
func reconcileColor(totalDelta, rawColor, rawBW int64, channelReset bool, previous *model.StatusSnapshot) int64 {
	if !channelReset && rawColor+rawBW > 0 {
		return distribute(totalDelta, rawColor, rawColor+rawBW)
	}
	if mix := previous.CounterColor + previous.CounterBW; mix > 0 {
		return distribute(totalDelta, previous.CounterColor, mix)
	}
	return totalDelta / 2
}

func distribute(total, share, of int64) int64 {
	v := int64(math.Round(float64(total) * float64(share) / float64(of)))
	if v < 0 {
		v = 0
	}
	if v > total {
		v = total
	}
	return v
}
