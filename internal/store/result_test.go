package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func scoredFrame(pattern string, usage float64) FrameResult {
	return FrameResult{
		Dt:            0.1,
		Pattern:       pattern,
		MovementState: "CONCENTRIC",
		MuscleUsage:   map[string]float64{"left_glutes": usage, "erector_spinae": usage / 2},
		RomData:       map[string]float64{"left_hip": 140.5},
		JointStress:   map[string]float64{"left_hip": 35},
	}
}

func TestResultRepository_AppendAndList(t *testing.T) {
	s := newTestStore(t)
	if err := s.Sessions().Create(testSession("s1")); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	repo := s.Results()

	first := []FrameResult{
		{Dt: 0, Pattern: "UNKNOWN"},
		scoredFrame("HINGE", 40),
	}
	if err := repo.Append("s1", first); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	if first[1].FrameIndex != 1 || first[1].SessionID != "s1" {
		t.Errorf("append should assign index and session, got %d %q", first[1].FrameIndex, first[1].SessionID)
	}

	if err := repo.Append("s1", []FrameResult{scoredFrame("HINGE", 60)}); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	session, _ := s.Sessions().GetByID("s1")
	if session.Frames != 3 {
		t.Errorf("Frames = %d, want 3", session.Frames)
	}

	all, err := repo.List("s1", 0, 0)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}

	want := scoredFrame("HINGE", 60)
	want.SessionID = "s1"
	want.FrameIndex = 2
	if diff := cmp.Diff(want, all[2]); diff != "" {
		t.Errorf("stored result mismatch (-want +got):\n%s", diff)
	}

	if len(all[0].MuscleUsage) != 0 || all[0].MuscleUsage == nil {
		t.Errorf("empty usage should round-trip as an empty map, got %v", all[0].MuscleUsage)
	}

	page, err := repo.List("s1", 1, 1)
	if err != nil {
		t.Fatalf("failed to list page: %v", err)
	}
	if len(page) != 1 || page[0].FrameIndex != 1 {
		t.Errorf("expected frame 1 only, got %+v", page)
	}
}

func TestResultRepository_AppendUnknownSession(t *testing.T) {
	s := newTestStore(t)

	err := s.Results().Append("missing", []FrameResult{{Pattern: "UNKNOWN"}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResultRepository_Summarize(t *testing.T) {
	s := newTestStore(t)
	if err := s.Sessions().Create(testSession("s1")); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	warned := scoredFrame("SQUAT", 80)
	warned.Warning = "knee valgus"
	results := []FrameResult{
		{Pattern: "UNKNOWN"},
		scoredFrame("HINGE", 40),
		scoredFrame("HINGE", 60),
		warned,
	}
	if err := s.Results().Append("s1", results); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	sum, err := s.Results().Summarize("s1")
	if err != nil {
		t.Fatalf("failed to summarize: %v", err)
	}

	want := &Summary{
		SessionID: "s1",
		Frames:    4,
		Scored:    3,
		Patterns:  map[string]int{"HINGE": 2, "SQUAT": 1},
		Peak:      map[string]float64{"left_glutes": 80, "erector_spinae": 40},
		Mean:      map[string]float64{"left_glutes": 60, "erector_spinae": 30},
		Warnings:  map[string]int{"knee valgus": 1},
	}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestResultRepository_SummarizeEmpty(t *testing.T) {
	s := newTestStore(t)

	sum, err := s.Results().Summarize("none")
	if err != nil {
		t.Fatalf("failed to summarize: %v", err)
	}
	if sum.Frames != 0 || sum.Scored != 0 || len(sum.Mean) != 0 {
		t.Errorf("expected empty summary, got %+v", sum)
	}
}
