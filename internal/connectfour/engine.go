package connectfour

import (
	"github.com/RiccardoMarostica/Connect-4/internal/apperror"
	"github.com/RiccardoMarostica/Connect-4/internal/entity"
)

const winningRunLength = 4

// Drop places a disc of the given colour into the column. The disc lands
// at the lowest empty row of the column. The input board is not modified;
// the updated board and the landing row are returned.
func Drop(board entity.Board, column int, colour entity.Cell) (entity.Board, int, error) {
	if column < 0 || column >= entity.BoardColumns {
		return board, 0, apperror.ErrInvalidColumn
	}

	for row := entity.BoardRows - 1; row >= 0; row-- {
		if board[row][column] == entity.EmptyCell {
			board[row][column] = colour
			return board, row, nil
		}
	}

	return board, 0, apperror.ErrColumnFull
}

// Evaluate scans the board for a four-in-a-row run. It returns the
// winning colour, entity.WinnerDraw when the board is full without a
// run, or an empty string while the game is still undecided.
func Evaluate(board entity.Board) string {
	if winner := scanRows(board); winner != entity.EmptyCell {
		return string(winner)
	}

	if winner := scanColumns(board); winner != entity.EmptyCell {
		return string(winner)
	}

	if winner := scanDiagonals(board); winner != entity.EmptyCell {
		return string(winner)
	}

	if board.IsFull() {
		return string(entity.WinnerDraw)
	}

	return ""
}

func scanRows(board entity.Board) entity.Cell {
	for row := range board {
		if winner := scanRun(board[row][:]); winner != entity.EmptyCell {
			return winner
		}
	}

	return entity.EmptyCell
}

func scanColumns(board entity.Board) entity.Cell {
	for col := 0; col < entity.BoardColumns; col++ {
		column := make([]entity.Cell, 0, entity.BoardRows)
		for row := 0; row < entity.BoardRows; row++ {
			column = append(column, board[row][col])
		}

		if winner := scanRun(column); winner != entity.EmptyCell {
			return winner
		}
	}

	return entity.EmptyCell
}

func scanDiagonals(board entity.Board) entity.Cell {
	for _, diagonal := range diagonals(board) {
		if winner := scanRun(diagonal); winner != entity.EmptyCell {
			return winner
		}
	}

	return entity.EmptyCell
}

// diagonals collects every diagonal of the grid, in both directions,
// that is long enough to contain a winning run.
func diagonals(board entity.Board) [][]entity.Cell {
	var result [][]entity.Cell

	// top-left to bottom-right
	for offset := -(entity.BoardRows - 1); offset < entity.BoardColumns; offset++ {
		var group []entity.Cell
		for row := 0; row < entity.BoardRows; row++ {
			col := offset + row
			if col >= 0 && col < entity.BoardColumns {
				group = append(group, board[row][col])
			}
		}

		if len(group) >= winningRunLength {
			result = append(result, group)
		}
	}

	// bottom-left to top-right
	for offset := 0; offset < entity.BoardRows+entity.BoardColumns-1; offset++ {
		var group []entity.Cell
		for row := entity.BoardRows - 1; row >= 0; row-- {
			col := offset - row
			if col >= 0 && col < entity.BoardColumns {
				group = append(group, board[row][col])
			}
		}

		if len(group) >= winningRunLength {
			result = append(result, group)
		}
	}

	return result
}

// scanRun walks the cells keeping a run counter per colour. A cell of a
// different colour or an empty cell resets the opposite counter to zero,
// never decrements it; that is what makes the runs strictly consecutive.
func scanRun(cells []entity.Cell) entity.Cell {
	var redRun, yellowRun int

	for _, cell := range cells {
		switch cell {
		case entity.RedDisc:
			redRun++
			yellowRun = 0
		case entity.YellowDisc:
			yellowRun++
			redRun = 0
		default:
			redRun = 0
			yellowRun = 0
		}

		if redRun == winningRunLength {
			return entity.RedDisc
		}

		if yellowRun == winningRunLength {
			return entity.YellowDisc
		}
	}

	return entity.EmptyCell
}

// DiffMove re-derives the single move that turns the old board into the
// new one. Clients send the whole post-move grid over the wire; trusting
// it outright would bypass the gravity invariant, so the server validates
// that exactly one previously empty cell gained a disc and that the disc
// sits where Drop would have landed it.
func DiffMove(oldBoard, newBoard entity.Board) (int, entity.Cell, error) {
	changedRow, changedCol := -1, -1
	var colour entity.Cell

	for row := range oldBoard {
		for col := range oldBoard[row] {
			if oldBoard[row][col] == newBoard[row][col] {
				continue
			}

			if changedRow != -1 || oldBoard[row][col] != entity.EmptyCell {
				return 0, entity.EmptyCell, apperror.ErrInvalidGrid
			}

			changedRow, changedCol = row, col
			colour = newBoard[row][col]
		}
	}

	if changedRow == -1 {
		return 0, entity.EmptyCell, apperror.ErrInvalidGrid
	}

	if colour != entity.RedDisc && colour != entity.YellowDisc {
		return 0, entity.EmptyCell, apperror.ErrInvalidGrid
	}

	if _, landedRow, err := Drop(oldBoard, changedCol, colour); err != nil || landedRow != changedRow {
		return 0, entity.EmptyCell, apperror.ErrInvalidGrid
	}

	return changedCol, colour, nil
}
