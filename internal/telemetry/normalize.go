package telemetry

import (
	"sort"

	"printer-fleet-backend/internal/model"
)

// tonerMaxCeiling is the largest max capacity a real toner cartridge
// reports. Anything above it in a toner slot is a mislabeled drum or kit.
const tonerMaxCeiling = 30000

// NormalizeSupplies turns raw supplies-table rows into classified
// consumables. The pipeline classifies kind by magnitude first, assigns
// colors to real toners only, validates percentages, and resolves duplicate
// color claims.
func NormalizeSupplies(observations []SupplyObservation) []model.Consumable {
	rows := make([]SupplyObservation, 0, len(observations))
	for _, o := range observations {
		if o.HasLevel && o.Level >= 0 {
			rows = append(rows, o)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Index < rows[j].Index })

	// First pass: magnitude kinds for every index. Index 1 is classified
	// first so the monochrome quirk rule can see it.
	indexKinds := make(map[int]string, len(rows))
	firstIndexIsDrum := false
	for _, o := range rows {
		in := kindInput{
			Level:            o.Level,
			Max:              o.Max,
			HasMax:           o.HasMax,
			Index:            o.Index,
			FirstIndexIsDrum: firstIndexIsDrum,
		}
		kind := classifyKindByMagnitude(in)
		indexKinds[o.Index] = kind
		if o.Index == 1 && kind == KindDrum {
			firstIndexIsDrum = true
		}
	}

	// Positional color assignment: real toner indices in ascending order map
	// onto black, cyan, magenta, yellow.
	var tonerIndices []int
	for _, o := range rows {
		if indexKinds[o.Index] == KindToner {
			tonerIndices = append(tonerIndices, o.Index)
		}
	}
	sort.Ints(tonerIndices)
	positional := make(map[int]string, len(tonerIndices))
	for pos, idx := range tonerIndices {
		if pos < len(CanonicalColors) {
			positional[idx] = CanonicalColors[pos]
		}
	}

	// Second pass: build consumables.
	var toners []model.Consumable
	var others []model.Consumable
	for _, o := range rows {
		kind := kindFromTypeCode(o.TypeCode, o.Description)
		switch indexKinds[o.Index] {
		case KindMaintenance, KindDrum:
			kind = indexKinds[o.Index]
		}

		c := model.Consumable{
			Type:     kind,
			RawLevel: o.Level,
			Index:    o.Index,
			OID:      o.OID,
		}
		if o.HasMax {
			c.RawMax = o.Max
		}

		pct, pctOK := computePercentage(o.Level, o.Max, o.HasMax)
		if pctOK {
			c.Percentage = pct
		}

		if kind == KindToner || kind == KindInk {
			// Description evidence beats positional guessing.
			if color := colorFromDescription(o.Description); color != "" {
				c.Color = color
				c.Confidence = ConfidenceDescription
			} else if color, ok := positional[o.Index]; ok {
				c.Color = color
				c.Confidence = ConfidencePositional
			}
		}

		c.Name = displayName(o.Description, kind, c.Color, o.Index)

		if (kind == KindToner || kind == KindInk) && isCanonicalColor(c.Color) {
			// Toner candidates must pass the realism filters or they are a
			// kit/drum in disguise and never surface as a toner.
			if !o.HasMax || o.Max > tonerMaxCeiling || o.Level > tonerMaxCeiling || !pctOK {
				continue
			}
			toners = append(toners, c)
			continue
		}

		if !pctOK {
			c.Percentage = 0
		}
		others = append(others, c)
	}

	return append(resolveTonerDuplicates(toners), others...)
}

func isCanonicalColor(color string) bool {
	for _, c := range CanonicalColors {
		if color == c {
			return true
		}
	}
	return false
}

// resolveTonerDuplicates keeps one toner per color. Preference order:
// non-saturated reading over a flat 100% (saturated values are usually
// kit/drum artifacts), then smaller max capacity, then lower index.
func resolveTonerDuplicates(toners []model.Consumable) []model.Consumable {
	byColor := make(map[string]model.Consumable)
	for _, c := range toners {
		existing, ok := byColor[c.Color]
		if !ok {
			byColor[c.Color] = c
			continue
		}
		if preferToner(c, existing) {
			byColor[c.Color] = c
		}
	}

	out := make([]model.Consumable, 0, len(byColor))
	for _, color := range CanonicalColors {
		if c, ok := byColor[color]; ok {
			out = append(out, c)
		}
	}
	return out
}

func preferToner(candidate, existing model.Consumable) bool {
	if (candidate.Percentage < 100) != (existing.Percentage < 100) {
		return candidate.Percentage < 100
	}
	if candidate.RawMax != existing.RawMax {
		return candidate.RawMax > 0 && (existing.RawMax == 0 || candidate.RawMax < existing.RawMax)
	}
	return candidate.Index < existing.Index
}

// MissingYellow reports whether black, cyan and magenta toners are present
// while yellow has not been found. This is the trigger for the vendor
// fallback scan: downstream ordering and alerting need all four channels.
func MissingYellow(consumables []model.Consumable) bool {
	found := tonerColorSet(consumables)
	return found["black"] && found["cyan"] && found["magenta"] && !found["yellow"]
}

// UnreportedYellow synthesizes the yellow channel for devices that simply do
// not expose it over SNMP. Percentage 0 forces operator attention; the note
// marks the reading as unverified.
func UnreportedYellow() model.Consumable {
	return model.Consumable{
		Name:       "Yellow toner",
		Color:      "yellow",
		Type:       KindToner,
		Percentage: 0,
		Confidence: ConfidenceFallback,
		Note:       "not reported via SNMP, manual check required",
	}
}

// IsMonochrome reports whether the classified consumables describe a
// monochrome printer: a black toner with no color channels at all.
func IsMonochrome(consumables []model.Consumable) bool {
	found := tonerColorSet(consumables)
	return found["black"] && !found["cyan"] && !found["magenta"] && !found["yellow"]
}

// FilterMonochrome drops any color toner that slipped through classification
// on a printer determined to be monochrome.
func FilterMonochrome(consumables []model.Consumable) []model.Consumable {
	if !IsMonochrome(consumables) {
		return consumables
	}
	out := consumables[:0]
	for _, c := range consumables {
		if (c.Type == KindToner || c.Type == KindInk) && isCanonicalColor(c.Color) && c.Color != "black" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func tonerColorSet(consumables []model.Consumable) map[string]bool {
	found := make(map[string]bool, 4)
	for _, c := range consumables {
		if (c.Type == KindToner || c.Type == KindInk) && isCanonicalColor(c.Color) {
			found[c.Color] = true
		}
	}
	return found
}

// HasColorToner reports whether any cyan, magenta or yellow channel exists.
func HasColorToner(consumables []model.Consumable) bool {
	found := tonerColorSet(consumables)
	return found["cyan"] || found["magenta"] || found["yellow"]
}
