package domain

import "strconv"

// Seat identifiers are never stored per seat; they are derived on demand
// from a show's grid dimensions as <row letter><1-based column>, A1 being
// the front-left seat.

type SeatMap struct {
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Layout []SeatRow `json:"layout"`
}

type SeatRow struct {
	Row   string     `json:"row"`
	Seats []SeatView `json:"seats"`
}

type SeatView struct {
	ID     string `json:"id"`
	Booked bool   `json:"booked"`
}

// RowLabel returns the letter for a 0-based row index.
func RowLabel(row int) string {
	return string(rune('A' + row))
}

// SeatID builds the identifier for a 0-based row and 1-based column.
func SeatID(row, col int) string {
	return RowLabel(row) + strconv.Itoa(col)
}

// ValidGrid reports whether the dimensions are inside the allowed bounds.
func ValidGrid(rows, cols int) bool {
	return rows >= MinRows && rows <= MaxRows && cols >= MinCols && cols <= MaxCols
}

// EnumerateSeats lists every identifier of a rows×cols grid in row-major
// order, columns ascending within a row.
func EnumerateSeats(rows, cols int) []string {
	seats := make([]string, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 1; c <= cols; c++ {
			seats = append(seats, SeatID(r, c))
		}
	}
	return seats
}

// ValidSeat reports whether id addresses a seat of a rows×cols grid.
// Accepted form is exactly one row letter followed by a column number
// without leading zeros, matching what EnumerateSeats produces.
func ValidSeat(rows, cols int, id string) bool {
	if len(id) < 2 {
		return false
	}
	row := int(id[0] - 'A')
	if row < 0 || row >= rows {
		return false
	}
	num := id[1:]
	if num[0] == '0' {
		return false
	}
	col, err := strconv.Atoi(num)
	if err != nil {
		return false
	}
	return col >= 1 && col <= cols
}

// RenderSeatMap produces the presentation view of a show's grid with a
// booked flag per seat.
func RenderSeatMap(show *Show) SeatMap {
	booked := show.BookedSet()
	layout := make([]SeatRow, 0, show.Rows)
	for r := 0; r < show.Rows; r++ {
		row := SeatRow{Row: RowLabel(r), Seats: make([]SeatView, 0, show.Cols)}
		for c := 1; c <= show.Cols; c++ {
			id := SeatID(r, c)
			_, isBooked := booked[id]
			row.Seats = append(row.Seats, SeatView{ID: id, Booked: isBooked})
		}
		layout = append(layout, row)
	}
	return SeatMap{Rows: show.Rows, Cols: show.Cols, Layout: layout}
}

// ValidateSeatRequest checks a requested seat list against a grid:
// non-empty, no duplicates, every seat inside the grid.
func ValidateSeatRequest(rows, cols int, seats []string) error {
	if len(seats) == 0 {
		return wrapInvalid("seats must not be empty")
	}
	seen := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		if !ValidSeat(rows, cols, seat) {
			return wrapInvalid("seat " + seat + " is outside the grid")
		}
		if _, dup := seen[seat]; dup {
			return wrapInvalid("seat " + seat + " requested more than once")
		}
		seen[seat] = struct{}{}
	}
	return nil
}
