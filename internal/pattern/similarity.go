package pattern

import (
	"unicode/utf8"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/agnivade/levenshtein"
)

// Similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) over the
// normalized forms of a and b, with lengths counted in runes. Two empty
// strings are not considered similar.
func Similarity(a, b string) float64 {
	na := common.NormalizeText(a)
	nb := common.NormalizeText(b)

	longest := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(na, nb))/float64(longest)
}
