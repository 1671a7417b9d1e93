// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package history

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s
}

func TestStore_RecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	ctx := context.Background()
	run := Run{
		Target:        "total",
		CorrelationID: "11111111-1111-1111-1111-111111111111",
		Caller:        "cli",
		Result:        29.97,
		DurationMS:    4,
	}

	if err := s.Record(ctx, run); err != nil {
		t.Fatalf("failed to record run: %v", err)
	}

	runs, err := s.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("failed to list recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Target != "total" {
		t.Errorf("expected target %q, got %q", "total", runs[0].Target)
	}
	if runs[0].Result != 29.97 {
		t.Errorf("expected result 29.97, got %v", runs[0].Result)
	}
	if runs[0].Error != "" {
		t.Errorf("expected no error, got %q", runs[0].Error)
	}
}

func TestStore_RecordFailedRun(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	ctx := context.Background()
	run := Run{
		Target:        "total",
		CorrelationID: "22222222-2222-2222-2222-222222222222",
		Caller:        "mcp",
		Error:         "identifier not found: total",
		DurationMS:    1,
	}

	if err := s.Record(ctx, run); err != nil {
		t.Fatalf("failed to record failed run: %v", err)
	}

	runs, err := s.Recent(ctx, "total", 10)
	if err != nil {
		t.Fatalf("failed to list recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Error == "" {
		t.Errorf("expected an error message, got empty string")
	}
	if runs[0].Result != nil {
		t.Errorf("expected nil result for a failed run, got %v", runs[0].Result)
	}
}

func TestStore_RecentFiltersByTarget(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	ctx := context.Background()
	for _, target := range []string{"total", "subtotal", "total"} {
		run := Run{Target: target, CorrelationID: "33333333-3333-3333-3333-333333333333", Caller: "cli"}
		if err := s.Record(ctx, run); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
	}

	runs, err := s.Recent(ctx, "total", 10)
	if err != nil {
		t.Fatalf("failed to list recent runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs for target %q, got %d", "total", len(runs))
	}
}

func TestStore_RecentOrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		run := Run{Target: "total", CorrelationID: "44444444-4444-4444-4444-444444444444", Caller: "cli"}
		if err := s.Record(ctx, run); err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
	}

	runs, err := s.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("failed to list recent runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 0; i < len(runs)-1; i++ {
		if runs[i].ID < runs[i+1].ID {
			t.Errorf("expected runs ordered newest first, got id %d before id %d", runs[i].ID, runs[i+1].ID)
		}
	}
}
