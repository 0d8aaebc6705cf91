package store

import (
	"errors"
	"testing"
	"time"
)

func testSession(id string) *Session {
	return &Session{
		ID:              id,
		Name:            "deadlift set " + id,
		Source:          "clips/" + id + ".mp4",
		TargetRegion:    "FULL",
		ContractionMode: "ISOTONIC",
	}
}

func TestSessionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	session := testSession("s1")
	if err := repo.Create(session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if session.CreatedAt.IsZero() || session.UpdatedAt.IsZero() {
		t.Error("timestamps should be set after create")
	}

	got, err := repo.GetByID("s1")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Name != session.Name {
		t.Errorf("Name mismatch: got %q, want %q", got.Name, session.Name)
	}
	if got.Source != session.Source {
		t.Errorf("Source mismatch: got %q, want %q", got.Source, session.Source)
	}
	if got.TargetRegion != "FULL" || got.ContractionMode != "ISOTONIC" {
		t.Errorf("context mismatch: got %q/%q", got.TargetRegion, got.ContractionMode)
	}
	if got.Frames != 0 {
		t.Errorf("Frames = %d, want 0", got.Frames)
	}
}

func TestSessionRepository_CreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Create(testSession("s1")); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := repo.Create(testSession("s1")); err == nil {
		t.Error("expected error for duplicate ID")
	}
}

func TestSessionRepository_CreateInvalidContext(t *testing.T) {
	s := newTestStore(t)

	bad := testSession("s1")
	bad.TargetRegion = "ARMS"
	if err := s.Sessions().Create(bad); err == nil {
		t.Error("expected error for unknown target region")
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sessions, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Create(testSession(id)); err != nil {
			t.Fatalf("failed to create session %s: %v", id, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	sessions, err = repo.List()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "c" {
		t.Errorf("expected newest session first, got %q", sessions[0].ID)
	}
}

func TestSessionRepository_Rename(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Create(testSession("s1")); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := repo.Rename("s1", "heavy pulls"); err != nil {
		t.Fatalf("failed to rename: %v", err)
	}

	got, _ := repo.GetByID("s1")
	if got.Name != "heavy pulls" {
		t.Errorf("Name = %q, want %q", got.Name, "heavy pulls")
	}

	if err := repo.Rename("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if err := repo.Create(testSession("s1")); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := s.Results().Append("s1", []FrameResult{{Pattern: "UNKNOWN"}}); err != nil {
		t.Fatalf("failed to append results: %v", err)
	}

	if err := repo.Delete("s1"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := repo.GetByID("s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM frame_results WHERE session_id = ?`, "s1").Scan(&count); err != nil {
		t.Fatalf("failed to count results: %v", err)
	}
	if count != 0 {
		t.Errorf("expected results to cascade, %d left", count)
	}

	if err := repo.Delete("s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}
