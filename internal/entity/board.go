package entity

// Cell is the content of a single board position.
type Cell string

const (
	EmptyCell  Cell = "EMPTY"
	RedDisc    Cell = "RED"
	YellowDisc Cell = "YELLOW"
)

const (
	BoardRows    = 6
	BoardColumns = 7
)

// Board is a fixed 6x7 grid of cells. Row 0 is the top of the board and
// row 5 the bottom; discs in a column always form a contiguous run from
// the bottom row upward.
type Board [BoardRows][BoardColumns]Cell

func NewBoard() Board {
	var board Board
	for row := range board {
		for col := range board[row] {
			board[row][col] = EmptyCell
		}
	}

	return board
}

func (that *Board) IsFull() bool {
	for row := range that {
		for col := range that[row] {
			if that[row][col] == EmptyCell {
				return false
			}
		}
	}

	return true
}
