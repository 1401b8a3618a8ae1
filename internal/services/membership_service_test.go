package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"socioBack/internal/models"
)

func TestPeriodBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		year  int
		month int
		start time.Time
		end   time.Time
	}{
		{"november", 2025, 11, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC)},
		{"february leap", 2024, 2, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"february non-leap", 2025, 2, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"december", 2025, 12, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := firstDayOf(tc.year, tc.month); !got.Equal(tc.start) {
				t.Fatalf("start: expected %v got %v", tc.start, got)
			}
			if got := lastDayOf(tc.year, tc.month); !got.Equal(tc.end) {
				t.Fatalf("end: expected %v got %v", tc.end, got)
			}
		})
	}
}

func TestCreateMembershipValidatesPeriod(t *testing.T) {
	svc := &MembershipService{}

	cases := []struct {
		name  string
		year  int
		month int
	}{
		{"month zero", 2025, 0},
		{"month thirteen", 2025, 13},
		{"year too small", 1999, 5},
		{"year too large", 2101, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateMembership(context.Background(), models.CreateMembershipRequest{
				MemberID: 1,
				Year:     tc.year,
				Month:    tc.month,
			})
			var validation *models.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestResolveActivitiesRejectsDuplicates(t *testing.T) {
	svc := &MembershipService{}
	_, err := svc.resolveActivities(context.Background(), []int{1, 2, 1})
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for repeated id, got %v", err)
	}
}

func TestResolveActivitiesEmptySet(t *testing.T) {
	svc := &MembershipService{}
	activities, err := svc.resolveActivities(context.Background(), nil)
	if err != nil || activities != nil {
		t.Fatalf("empty id set should resolve to nothing, got %v %v", activities, err)
	}
}
