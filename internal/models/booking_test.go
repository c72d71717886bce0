package models

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	all := []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn,
		BookingStatusCompleted, BookingStatusCanceled, BookingStatusNoShow,
		BookingStatusRescheduled,
	}

	allowed := map[BookingStatus]map[BookingStatus]bool{
		BookingStatusPending:     {BookingStatusConfirmed: true, BookingStatusCanceled: true, BookingStatusNoShow: true},
		BookingStatusConfirmed:   {BookingStatusCheckedIn: true, BookingStatusCanceled: true, BookingStatusNoShow: true, BookingStatusRescheduled: true},
		BookingStatusRescheduled: {BookingStatusCheckedIn: true, BookingStatusCanceled: true, BookingStatusNoShow: true, BookingStatusRescheduled: true},
		BookingStatusCheckedIn:   {BookingStatusCompleted: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v; want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	terminal := []BookingStatus{
		BookingStatusCompleted, BookingStatusCanceled, BookingStatusNoShow,
	}
	targets := []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn,
		BookingStatusCompleted, BookingStatusCanceled, BookingStatusNoShow,
		BookingStatusRescheduled,
	}

	for _, from := range terminal {
		for _, to := range targets {
			if CanTransition(from, to) {
				t.Errorf("terminal state %s must not transition to %s", from, to)
			}
		}
	}
}

func TestIsCancelable(t *testing.T) {
	tests := []struct {
		status   BookingStatus
		expected bool
	}{
		{BookingStatusPending, true},
		{BookingStatusConfirmed, true},
		{BookingStatusCheckedIn, false},
		{BookingStatusCompleted, false},
		{BookingStatusCanceled, false},
		{BookingStatusNoShow, false},
		{BookingStatusRescheduled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := IsCancelable(tt.status); got != tt.expected {
				t.Errorf("IsCancelable(%s) = %v; want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestComputeEndTime(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		duration int
		expected string
	}{
		{"one hour session", "18:00", 60, "19:00"},
		{"half hour session", "09:15", 30, "09:45"},
		{"crosses midnight", "23:30", 60, "00:30"},
		{"invalid start returned as-is", "not-a-time", 60, "not-a-time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeEndTime(tt.start, tt.duration); got != tt.expected {
				t.Errorf("ComputeEndTime(%q, %d) = %q; want %q", tt.start, tt.duration, got, tt.expected)
			}
		})
	}
}

func TestScheduledAt(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Colombo")
	if err != nil {
		t.Fatal(err)
	}

	b := Booking{ScheduledDate: "2026-03-10", ScheduledTime: "18:30"}
	at, err := b.ScheduledAt(loc)
	if err != nil {
		t.Fatalf("ScheduledAt returned error: %v", err)
	}

	expected := time.Date(2026, 3, 10, 18, 30, 0, 0, loc)
	if !at.Equal(expected) {
		t.Errorf("ScheduledAt = %v; want %v", at, expected)
	}

	if _, err := (Booking{ScheduledDate: "bad", ScheduledTime: "18:30"}).ScheduledAt(loc); err == nil {
		t.Error("expected error for malformed date")
	}
}
