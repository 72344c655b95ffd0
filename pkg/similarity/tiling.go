package similarity

// Tile is a maximal common run found by greedy string tiling.
type Tile struct {
	PosL   int `json:"pos_l"`
	PosR   int `json:"pos_r"`
	Length int `json:"length"`
	Score  int `json:"score"`
}

// DefaultMinMatch is the shortest run the tiling reports.
const DefaultMinMatch = 3

// GreedyTiles runs greedy string tiling over a and b and returns the tiles in
// discovery order together with their total length. Longer runs are tiled
// first; runs shorter than minMatch are ignored. The inputs are not modified.
func GreedyTiles[T comparable](a, b []T, minMatch int) ([]Tile, int) {
	if minMatch < 1 {
		minMatch = 1
	}

	markedA := make([]bool, len(a))
	markedB := make([]bool, len(b))

	var (
		tiles []Tile
		total int
	)

	for {
		maxMatch := minMatch
		var matches []Tile

		for p := range a {
			if markedA[p] {
				continue
			}
			for t := range b {
				if markedB[t] || a[p] != b[t] {
					continue
				}
				j := 0
				for p+j < len(a) && t+j < len(b) && a[p+j] == b[t+j] && !markedA[p+j] && !markedB[t+j] {
					j++
				}
				switch {
				case j == maxMatch:
					matches = append(matches, Tile{PosL: p, PosR: t, Length: j})
				case j > maxMatch:
					matches = append(matches[:0], Tile{PosL: p, PosR: t, Length: j})
					maxMatch = j
				}
			}
		}

		for _, m := range matches {
			if occluded(markedA, m.PosL, m.Length) || occluded(markedB, m.PosR, m.Length) {
				continue
			}
			for k := range m.Length {
				markedA[m.PosL+k] = true
				markedB[m.PosR+k] = true
			}
			m.Score = m.Length
			tiles = append(tiles, m)
			total += m.Length
		}

		if maxMatch <= minMatch {
			break
		}
	}

	return tiles, total
}

func occluded(marked []bool, start, length int) bool {
	for k := start; k < start+length; k++ {
		if marked[k] {
			return true
		}
	}
	return false
}
