package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xolan/tally/internal/entry"
)

func newTestStatsService(store *fakeStore) *StatsService {
	svc := NewStatsService(store, testConfig())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestStatsService_ForWindow(t *testing.T) {
	store := &fakeStore{
		entries: sampleEntries(),
		clients: []entry.Client{{ID: "c1", Name: "Acme", Status: entry.ClientActive}},
	}
	svc := newTestStatsService(store)

	result, err := svc.ForWindow(context.Background(), "u1", "s1", 7)
	if err != nil {
		t.Fatalf("ForWindow() error = %v", err)
	}

	if result.Period != "last 7 days" {
		t.Errorf("Period = %q, want %q", result.Period, "last 7 days")
	}
	if !result.Start.Equal(testNow.AddDate(0, 0, -7)) {
		t.Errorf("Start = %v, want %v", result.Start, testNow.AddDate(0, 0, -7))
	}
	if !result.End.Equal(testNow) {
		t.Errorf("End = %v, want %v", result.End, testNow)
	}
	// entries at day offsets 0..6 fall in the window
	if result.Bundle.EntryCount != 7 {
		t.Errorf("EntryCount = %d, want 7", result.Bundle.EntryCount)
	}
	if result.Bundle.TotalMinutes != 7*90 {
		t.Errorf("TotalMinutes = %d, want %d", result.Bundle.TotalMinutes, 7*90)
	}
	if len(result.Bundle.Clients) != 1 || result.Bundle.Clients[0].Name != "Acme" {
		t.Errorf("Clients = %+v, want Acme", result.Bundle.Clients)
	}
}

func TestStatsService_ForWindow_DefaultDays(t *testing.T) {
	store := &fakeStore{entries: sampleEntries()}
	svc := newTestStatsService(store)

	result, err := svc.ForWindow(context.Background(), "u1", "s1", 0)
	if err != nil {
		t.Fatalf("ForWindow() error = %v", err)
	}
	if result.Period != "last 90 days" {
		t.Errorf("Period = %q, want %q", result.Period, "last 90 days")
	}
	if result.Bundle.EntryCount != 30 {
		t.Errorf("EntryCount = %d, want 30", result.Bundle.EntryCount)
	}
}

func TestStatsService_ForWindow_Empty(t *testing.T) {
	svc := newTestStatsService(&fakeStore{})

	result, err := svc.ForWindow(context.Background(), "u1", "s1", 30)
	if err != nil {
		t.Fatalf("ForWindow() error = %v", err)
	}
	if !result.Bundle.IsEmpty() {
		t.Errorf("expected empty bundle, got %d entries", result.Bundle.EntryCount)
	}
}

func TestStatsService_ForWindow_StoreErrors(t *testing.T) {
	boom := errors.New("disk gone")
	tests := []struct {
		name  string
		store *fakeStore
	}{
		{"entries", &fakeStore{entriesErr: boom}},
		{"clients", &fakeStore{clientsErr: boom}},
		{"projects", &fakeStore{projectsErr: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestStatsService(tt.store).ForWindow(context.Background(), "u1", "s1", 30)
			if !errors.Is(err, boom) {
				t.Errorf("ForWindow() error = %v, want wrapped %v", err, boom)
			}
		})
	}
}
