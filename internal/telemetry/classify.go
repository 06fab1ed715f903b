package telemetry

import (
	"math"
	"strconv"
	"strings"
)

// rfcSupplyTypes maps prtMarkerSuppliesType enum values to supply kinds.
var rfcSupplyTypes = map[int]string{
	3: KindToner,
	4: KindWaste, // wasteToner
	5: KindWaste, // wasteInk
	6: KindInk,
	7: KindRibbon,
}

// kindFromTypeCode resolves the supply kind from the RFC 3805 type enum,
// falling back to the description text when the enum is unhelpful.
func kindFromTypeCode(code int, description string) string {
	if kind, ok := rfcSupplyTypes[code]; ok {
		return kind
	}
	if description != "" {
		return kindFromDescription(description)
	}
	return KindToner
}

// descriptionKinds maps description substrings to supply kinds, covering the
// English and Spanish strings fleet firmware actually emits.
var descriptionKinds = []struct {
	tokens []string
	kind   string
}{
	{[]string{"drum", "tambor", "imaging", "imagen"}, KindDrum},
	{[]string{"waste", "residuo", "bottle", "botella"}, KindWaste},
	{[]string{"fuser", "fusor", "fusing"}, KindFuser},
	{[]string{"transfer", "transferencia", "belt", "correa"}, KindTransfer},
	{[]string{"maintenance", "mantenimiento", "kit"}, KindMaintenance},
	{[]string{"paper", "papel", "tray", "bandeja"}, KindPaper},
}

func kindFromDescription(description string) string {
	lower := strings.ToLower(description)
	for _, entry := range descriptionKinds {
		for _, token := range entry.tokens {
			if strings.Contains(lower, token) {
				return entry.kind
			}
		}
	}
	return KindToner
}

// colorTokens maps description words to canonical colors. Multi-character
// tokens match as substrings; single-letter CMYK codes only match as
// standalone words so "Cartridge" does not read as cyan.
var colorTokens = []struct {
	token string
	color string
}{
	{"black", "black"},
	{"negro", "black"},
	{"noir", "black"},
	{"schwarz", "black"},
	{"nero", "black"},
	{"cyan", "cyan"},
	{"cian", "cyan"},
	{"magenta", "magenta"},
	{"yellow", "yellow"},
	{"amarillo", "yellow"},
	{"amar", "yellow"},
	{"yel", "yellow"},
	{"jaune", "yellow"},
	{"giallo", "yellow"},
	{"gelb", "yellow"},
	{"k", "black"},
	{"c", "cyan"},
	{"m", "magenta"},
	{"y", "yellow"},
}

// colorFromDescription finds a recognizable color token in a supply
// description. Returns "" when nothing matches.
func colorFromDescription(description string) string {
	if description == "" || isNumeric(description) {
		return ""
	}
	lower := strings.ToLower(description)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})

	for _, entry := range colorTokens {
		if len(entry.token) == 1 {
			for _, w := range words {
				if w == entry.token {
					return entry.color
				}
			}
			continue
		}
		if strings.Contains(lower, entry.token) {
			return entry.color
		}
	}
	return ""
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}

// computePercentage converts a raw (level, max) pair into a 0-100 fill
// percentage. Values at 99% or above collapse to 100 to absorb firmware
// rounding noise. The second return is false when no sane percentage can be
// derived.
func computePercentage(level, max int64, hasMax bool) (int, bool) {
	if hasMax && max > 0 {
		raw := float64(level) / float64(max) * 100
		if raw < 0 {
			return 0, false
		}
		if raw > 100 {
			return 0, false
		}
		if raw >= 99 {
			return 100, true
		}
		return int(math.Round(raw)), true
	}

	// No max capacity reported; only trust levels that already look like a
	// percentage.
	if level >= 0 && level <= 100 {
		return int(level), true
	}
	if level > 1000 && level <= 10000 {
		// Thousandths scale seen on some vendors.
		pct := int(level / 100)
		if pct > 100 {
			pct = 100
		}
		return pct, true
	}
	return 0, false
}

// displayName builds a human-readable name when the device description is
// empty or just a number.
func displayName(description, kind, color string, index int) string {
	if description != "" && !isNumeric(description) {
		return description
	}
	switch kind {
	case KindToner, KindInk:
		if color != "" {
			return strings.ToUpper(color[:1]) + color[1:] + " toner"
		}
		return "Toner " + strconv.Itoa(index)
	case KindDrum:
		return "Imaging unit"
	case KindMaintenance:
		return "Maintenance kit"
	case KindWaste:
		return "Waste container"
	case KindFuser:
		return "Fuser"
	case KindTransfer:
		return "Transfer belt"
	case KindPaper:
		return "Paper tray"
	}
	return "Supply " + strconv.Itoa(index)
}
