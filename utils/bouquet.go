package utils

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// BouquetPattern is the extraction contract demanded of the oracle: its
// free text must contain name/quantity records matching this expression.
// The pattern is embedded verbatim in the extraction prompts so the
// oracle knows the exact shape to produce.
const BouquetPattern = `"назва":\s*"([^"]+)",\s*"кількість":\s*(\d+)`

var bouquetRe = regexp.MustCompile(BouquetPattern)

// ErrNoFlowers means the oracle's text contained no extractable
// name/quantity records. The caller asks the user to retry.
var ErrNoFlowers = errors.New("no flowers extracted")

// ParseBouquet pulls every name/quantity record out of oracle free text.
// The text as a whole is not trusted to be valid JSON, so matching is
// purely pattern based. A repeated name overwrites the earlier entry.
func ParseBouquet(text string) (map[string]int, error) {
	matches := bouquetRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, ErrNoFlowers
	}

	flowers := make(map[string]int, len(matches))
	for _, m := range matches {
		quantity, err := strconv.Atoi(m[2])
		if err != nil || quantity <= 0 {
			continue
		}
		flowers[m[1]] = quantity
	}

	if len(flowers) == 0 {
		return nil, ErrNoFlowers
	}
	return flowers, nil
}

// FormatBouquet renders a flower map as "Назва: кількість" pairs in a
// stable order for user-facing messages.
func FormatBouquet(flowers map[string]int) string {
	names := make([]string, 0, len(flowers))
	for name := range flowers {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, flowers[name]))
	}
	return strings.Join(parts, ", ")
}
