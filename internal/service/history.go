package service

import (
	"sort"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

const dayLayout = "2006-01-02"

// BuildPaymentHistory aggregates payments for the history chart of one
// month. Days are taken in loc. When nothing was spent in the month every
// day is listed with a zero amount, otherwise only days with spending are
// listed in ascending order.
func BuildPaymentHistory(payments []model.Payment, year, month int, loc *time.Location) model.PaymentHistory {
	if loc == nil {
		loc = time.UTC
	}
	h := model.PaymentHistory{Year: year, Month: month}
	perDay := make(map[string]int64)
	for _, p := range payments {
		h.TotalSpent += p.Amount
		t := p.PaidAt.In(loc)
		if t.Year() != year || int(t.Month()) != month {
			continue
		}
		h.MonthTotal += p.Amount
		perDay[t.Format(dayLayout)] += p.Amount
	}

	if h.MonthTotal == 0 {
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		n := DaysIn(year, month)
		h.Days = make([]model.DailySpend, n)
		for i := 0; i < n; i++ {
			h.Days[i] = model.DailySpend{Date: first.AddDate(0, 0, i).Format(dayLayout)}
		}
		return h
	}

	h.Days = make([]model.DailySpend, 0, len(perDay))
	for d, amt := range perDay {
		if amt == 0 {
			continue
		}
		h.Days = append(h.Days, model.DailySpend{Date: d, Amount: amt})
	}
	sort.Slice(h.Days, func(i, j int) bool { return h.Days[i].Date < h.Days[j].Date })
	return h
}

// DaysIn returns the number of days of a month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
