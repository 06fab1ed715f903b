package telemetry

// kindInput is the evidence available when classifying a supply row by
// magnitude, before any color assignment happens.
type kindInput struct {
	Level            int64
	Max              int64
	HasMax           bool
	Index            int
	FirstIndexIsDrum bool
}

func (in kindInput) percent() float64 {
	if !in.HasMax || in.Max <= 0 {
		return 0
	}
	return float64(in.Level) / float64(in.Max) * 100
}

// kindRule is one ordered classification predicate. The first matching rule
// wins, which makes the cascade testable rule by rule.
type kindRule struct {
	name  string
	match func(kindInput) bool
	kind  string
}

// magnitudeRules classify a supply row into toner/drum/kit from the raw
// level and max-capacity magnitudes. Vendors abuse the supplies table, so
// the bands below come from observed fleet firmware, not from the MIB.
var magnitudeRules = []kindRule{
	{
		name: "maintenance kit by magnitude",
		match: func(in kindInput) bool {
			return (in.HasMax && in.Max > 100000) || in.Level > 100000
		},
		kind: KindMaintenance,
	},
	{
		name: "drum band with max",
		match: func(in kindInput) bool {
			return in.HasMax && in.Max >= 50000 && in.Max <= 100000
		},
		kind: KindDrum,
	},
	{
		// Monochrome engines report the black toner with a drum-sized max.
		// When index 1 already classified as drum the printer is mono and
		// later rows in the 20k-30k band are its black toner.
		name: "monochrome black toner quirk",
		match: func(in kindInput) bool {
			return in.FirstIndexIsDrum && in.Index > 1 &&
				in.HasMax && in.Max >= 20000 && in.Max <= 30000
		},
		kind: KindToner,
	},
	{
		name: "ambiguous band resolved as drum",
		match: func(in kindInput) bool {
			return in.HasMax && in.Max > 10000 && in.Max < 50000 &&
				in.percent() >= 80 && in.Max >= 30000
		},
		kind: KindDrum,
	},
	{
		name: "ambiguous band resolved as toner",
		match: func(in kindInput) bool {
			return in.HasMax && in.Max > 10000 && in.Max < 50000
		},
		kind: KindToner,
	},
	{
		name: "toner band with max",
		match: func(in kindInput) bool {
			return in.HasMax && in.Max > 0 && in.Max <= 10000
		},
		kind: KindToner,
	},
	{
		name: "drum band without max",
		match: func(in kindInput) bool {
			return !in.HasMax && in.Level >= 50000 && in.Level <= 100000
		},
		kind: KindDrum,
	},
}

// classifyKindByMagnitude runs the ordered rule table. Rows with no matching
// rule fall through to toner, the most common supply.
func classifyKindByMagnitude(in kindInput) string {
	for _, rule := range magnitudeRules {
		if rule.match(in) {
			return rule.kind
		}
	}
	return KindToner
}
