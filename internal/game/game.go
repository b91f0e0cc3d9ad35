package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrColumnFull   = errors.New("column is full")
	ErrInvalidMove  = errors.New("invalid move")
)

// Grid is a rows x cols board of player labels. A nil cell is empty.
type Grid struct {
	rows  int
	cols  int
	cells [][]*string
}

func NewGrid(rows, cols int) *Grid {
	cells := make([][]*string, rows)
	for row := range cells {
		cells[row] = make([]*string, cols)
	}

	return &Grid{rows: rows, cols: cols, cells: cells}
}

func (that *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < that.rows && col >= 0 && col < that.cols
}

// At returns the label in a cell and whether the cell is taken.
func (that *Grid) At(row, col int) (string, bool) {
	if !that.InBounds(row, col) || that.cells[row][col] == nil {
		return "", false
	}

	return *that.cells[row][col], true
}

// Place sets an empty cell.
func (that *Grid) Place(row, col int, label string) error {
	if !that.InBounds(row, col) {
		return ErrInvalidCell
	}

	if that.cells[row][col] != nil {
		return ErrCellOccupied
	}

	that.cells[row][col] = &label

	return nil
}

// ColumnFull reports whether the top cell of col is taken.
func (that *Grid) ColumnFull(col int) bool {
	return that.cells[0][col] != nil
}

// Drop puts label into the lowest empty row of col and returns that row.
func (that *Grid) Drop(col int, label string) (int, error) {
	if col < 0 || col >= that.cols {
		return 0, ErrInvalidCell
	}

	if that.ColumnFull(col) {
		return 0, ErrColumnFull
	}

	for row := that.rows - 1; row >= 0; row-- {
		if that.cells[row][col] == nil {
			that.cells[row][col] = &label
			return row, nil
		}
	}

	return 0, ErrColumnFull
}

// Occupied counts taken cells.
func (that *Grid) Occupied() int {
	count := 0
	for _, cells := range that.cells {
		for _, cell := range cells {
			if cell != nil {
				count++
			}
		}
	}

	return count
}

// Board returns a copy suitable for a state snapshot.
func (that *Grid) Board() [][]*string {
	board := make([][]*string, that.rows)
	for row, cells := range that.cells {
		board[row] = make([]*string, that.cols)
		for col, cell := range cells {
			if cell != nil {
				value := *cell
				board[row][col] = &value
			}
		}
	}

	return board
}

// CheckWin scans rows, columns and both diagonals for winLength consecutive
// cells holding label.
func (that *Grid) CheckWin(label string, winLength int) bool {
	if winLength <= 0 {
		return false
	}

	owns := func(row, col int) bool {
		value, taken := that.At(row, col)
		return taken && value == label
	}

	for row := 0; row < that.rows; row++ {
		count := 0
		for col := 0; col < that.cols; col++ {
			if !owns(row, col) {
				count = 0
				continue
			}
			count++
			if count >= winLength {
				return true
			}
		}
	}

	for col := 0; col < that.cols; col++ {
		count := 0
		for row := 0; row < that.rows; row++ {
			if !owns(row, col) {
				count = 0
				continue
			}
			count++
			if count >= winLength {
				return true
			}
		}
	}

	// down-right
	for startRow := 0; startRow <= that.rows-winLength; startRow++ {
		for startCol := 0; startCol <= that.cols-winLength; startCol++ {
			if that.line(startRow, startCol, 1, winLength, owns) {
				return true
			}
		}
	}

	// down-left
	for startRow := 0; startRow <= that.rows-winLength; startRow++ {
		for startCol := winLength - 1; startCol < that.cols; startCol++ {
			if that.line(startRow, startCol, -1, winLength, owns) {
				return true
			}
		}
	}

	return false
}

func (that *Grid) line(row, col, colStep, length int, owns func(row, col int) bool) bool {
	for i := 0; i < length; i++ {
		if !owns(row+i, col+i*colStep) {
			return false
		}
	}

	return true
}

// NewID returns prefix followed by the first 8 characters of a random UUID.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
}
