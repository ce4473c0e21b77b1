// Package service holds the business rules that sit between the HTTP
// handlers and the repositories: seat labels, the order flow, payment
// history aggregation, the session cache and ticket notifications.
package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/iliyamo/cinebook/internal/model"
)

// RowLabel converts a zero-based row index to its letter label:
// 0 -> A, 25 -> Z, 26 -> AA, 27 -> AB. Negative indices yield "".
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// Labels are stored in a VARCHAR(8) column, so the row part is limited to
// three letters (ZZZ) and the column part to four digits.
const (
	maxRowLetters = 3
	maxColDigits  = 4
)

// rowIndex is the inverse of RowLabel. It returns -1 for anything that is
// not a run of one to maxRowLetters upper-case letters.
func rowIndex(label string) int {
	if label == "" || len(label) > maxRowLetters {
		return -1
	}
	n := 0
	for _, r := range label {
		if r < 'A' || r > 'Z' {
			return -1
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1
}

// SeatLabel builds the label of the seat at zero-based row and one-based
// column, e.g. (1, 2) -> "B2".
func SeatLabel(row, col int) string {
	return RowLabel(row) + strconv.Itoa(col)
}

// SeatLabels lists every seat of a rows x cols grid in row-major order.
func SeatLabels(rows, cols int) []string {
	if rows <= 0 || cols <= 0 {
		return []string{}
	}
	out := make([]string, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 1; c <= cols; c++ {
			out = append(out, SeatLabel(r, c))
		}
	}
	return out
}

// ParseSeatLabel splits a label such as "AB12" into its zero-based row and
// one-based column. Only the canonical form is accepted: upper-case row
// letters followed by plain ASCII digits without a sign or leading zero.
func ParseSeatLabel(label string) (row, col int, ok bool) {
	i := 0
	for i < len(label) && label[i] >= 'A' && label[i] <= 'Z' {
		i++
	}
	digits := label[i:]
	if i == 0 || digits == "" || len(digits) > maxColDigits || digits[0] == '0' {
		return 0, 0, false
	}
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return 0, 0, false
		}
	}
	r := rowIndex(label[:i])
	if r < 0 {
		return 0, 0, false
	}
	c, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, false
	}
	return r, c, true
}

// InLayout reports whether label names a seat of l.
func InLayout(l model.SeatLayout, label string) bool {
	r, c, ok := ParseSeatLabel(label)
	return ok && r >= 0 && r < l.Rows && c >= 1 && c <= l.Cols
}

// NormalizeSeats trims and upper-cases labels, drops blanks and duplicates,
// and sorts the result in row-major order. Valid labels are rebuilt from
// their parsed row and column so two spellings of one seat collapse.
func NormalizeSeats(seats []string) []string {
	seen := make(map[string]struct{}, len(seats))
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if r, c, ok := ParseSeatLabel(s); ok {
			s = SeatLabel(r, c)
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return seatLess(out[i], out[j]) })
	return out
}

func seatLess(a, b string) bool {
	ra, ca, oka := ParseSeatLabel(a)
	rb, cb, okb := ParseSeatLabel(b)
	if !oka || !okb {
		if oka != okb {
			return oka
		}
		return a < b
	}
	if ra != rb {
		return ra < rb
	}
	return ca < cb
}

// BuildSeatMap lays out every seat of l and flags the ones in sold.
func BuildSeatMap(l model.SeatLayout, showtimeID uint64, sold []string) model.SeatMap {
	taken := make(map[string]struct{}, len(sold))
	for _, s := range sold {
		taken[strings.ToUpper(s)] = struct{}{}
	}
	labels := SeatLabels(l.Rows, l.Cols)
	seats := make([]model.SeatState, len(labels))
	for i, label := range labels {
		_, isSold := taken[label]
		seats[i] = model.SeatState{Label: label, Sold: isSold}
	}
	return model.SeatMap{
		CinemaID:   l.CinemaID,
		ShowtimeID: showtimeID,
		Rows:       l.Rows,
		Cols:       l.Cols,
		Price:      l.Price,
		Seats:      seats,
	}
}
