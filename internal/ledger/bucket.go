package ledger

import "github.com/preston-bernstein/squares-service/internal/domain/match"

// Bucket maps a score onto one axis of the grid, saturating at 4.
func Bucket(score int) int {
	return min(max(score, 0), AxisSize-1)
}

// SquareIndex encodes a score as bucket(home)*5 + bucket(away).
func SquareIndex(s match.Score) int {
	return Bucket(s.Home)*AxisSize + Bucket(s.Away)
}

// DecodeSquare returns the home and away buckets of idx.
func DecodeSquare(idx int) (home, away int) {
	return idx / AxisSize, idx % AxisSize
}

// SelectWinningSquares applies the referee policy: halftime square first, final second,
// collapsed to a single square when both land on the same cell.
func SelectWinningSquares(halftime, final match.Score) []int {
	ht, ft := SquareIndex(halftime), SquareIndex(final)
	if ht == ft {
		return []int{ft}
	}
	return []int{ht, ft}
}

func validSquare(idx int) bool {
	return idx >= 0 && idx < GridSize
}
