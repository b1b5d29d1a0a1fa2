// Package similarity computes Ratcliff/Obershelp similarity ratios between
// short strings such as headlines.
//
// The ratio is 2*M/T where T is the combined rune length of both strings and M
// is the number of runes covered by matching blocks. Blocks are found by taking
// the longest common contiguous block, then recursing on the unmatched text to
// its left and right. Ties resolve to the earliest block in the first string,
// then the earliest in the second, so the result never depends on map order.
package similarity

import (
	"sort"

	"golang.org/x/text/cases"
)

// Block is a matching run: a[A:A+Size] == b[B:B+Size].
type Block struct {
	A    int
	B    int
	Size int
}

// Ratio returns the case-insensitive similarity of a and b in [0,1].
func Ratio(a, b string) float64 {
	ra := fold(a)
	rb := fold(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	matched := 0
	for _, blk := range MatchingBlocks(ra, rb) {
		matched += blk.Size
	}
	return 2 * float64(matched) / float64(total)
}

func fold(s string) []rune {
	// A Caser carries state, so one per call keeps Ratio safe for concurrent use.
	return []rune(cases.Fold().String(s))
}

// MatchingBlocks returns the matching blocks of a and b ordered by position.
func MatchingBlocks(a, b []rune) []Block {
	index := make(map[rune][]int, len(b))
	for j, r := range b {
		index[r] = append(index[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	var blocks []Block
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		blk := longestMatch(a, index, s.alo, s.ahi, s.blo, s.bhi)
		if blk.Size == 0 {
			continue
		}
		blocks = append(blocks, blk)
		if s.alo < blk.A && s.blo < blk.B {
			queue = append(queue, span{s.alo, blk.A, s.blo, blk.B})
		}
		if blk.A+blk.Size < s.ahi && blk.B+blk.Size < s.bhi {
			queue = append(queue, span{blk.A + blk.Size, s.ahi, blk.B + blk.Size, s.bhi})
		}
	}

	sort.Slice(blocks, func(i, j int) bool { return blocks[i].A < blocks[j].A })
	return blocks
}

// longestMatch finds the longest block with a[alo:ahi] and b[blo:bhi]. index
// maps each rune of b to its ascending positions.
func longestMatch(a []rune, index map[rune][]int, alo, ahi, blo, bhi int) Block {
	best := Block{A: alo, B: blo}
	lengths := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range index[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > best.Size {
				best = Block{A: i - k + 1, B: j - k + 1, Size: k}
			}
		}
		lengths = next
	}
	return best
}
