package service

import (
	"testing"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

func TestBuildPaymentHistory(t *testing.T) {
	hcm, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Skipf("zone data unavailable: %v", err)
	}

	t.Run("OnlyDaysWithSpending", func(t *testing.T) {
		payments := []model.Payment{
			{Amount: 100000, PaidAt: time.Date(2024, 12, 20, 3, 0, 0, 0, time.UTC)},
			{Amount: 50000, PaidAt: time.Date(2024, 12, 5, 3, 0, 0, 0, time.UTC)},
			{Amount: 25000, PaidAt: time.Date(2024, 12, 5, 9, 0, 0, 0, time.UTC)},
			{Amount: 70000, PaidAt: time.Date(2024, 11, 2, 3, 0, 0, 0, time.UTC)},
		}
		h := BuildPaymentHistory(payments, 2024, 12, hcm)
		if h.TotalSpent != 245000 || h.MonthTotal != 175000 {
			t.Errorf("unexpected totals %+v", h)
		}
		if len(h.Days) != 2 {
			t.Fatalf("expected 2 days, got %v", h.Days)
		}
		if h.Days[0] != (model.DailySpend{Date: "2024-12-05", Amount: 75000}) || h.Days[1].Date != "2024-12-20" {
			t.Errorf("unexpected days %v", h.Days)
		}
	})

	t.Run("ZoneShiftsDay", func(t *testing.T) {
		// 18:30 UTC on Nov 30 is Dec 1 01:30 in UTC+7.
		payments := []model.Payment{{Amount: 90000, PaidAt: time.Date(2024, 11, 30, 18, 30, 0, 0, time.UTC)}}
		h := BuildPaymentHistory(payments, 2024, 12, hcm)
		if h.MonthTotal != 90000 || len(h.Days) != 1 || h.Days[0].Date != "2024-12-01" {
			t.Errorf("unexpected history %+v", h)
		}
	})

	t.Run("EmptyMonthListsEveryDay", func(t *testing.T) {
		payments := []model.Payment{{Amount: 70000, PaidAt: time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)}}
		h := BuildPaymentHistory(payments, 2024, 2, hcm)
		if h.MonthTotal != 0 || h.TotalSpent != 70000 {
			t.Errorf("unexpected totals %+v", h)
		}
		if len(h.Days) != 29 {
			t.Fatalf("leap February should list 29 days, got %d", len(h.Days))
		}
		if h.Days[0].Date != "2024-02-01" || h.Days[28].Date != "2024-02-29" || h.Days[10].Amount != 0 {
			t.Errorf("unexpected days %v", h.Days)
		}
	})
}

func TestDaysIn(t *testing.T) {
	cases := []struct{ y, m, want int }{{2023, 2, 28}, {2024, 2, 29}, {2024, 4, 30}, {2024, 12, 31}}
	for _, c := range cases {
		if got := DaysIn(c.y, c.m); got != c.want {
			t.Errorf("DaysIn(%d,%d) = %d, want %d", c.y, c.m, got, c.want)
		}
	}
}
