package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// FrameResult is the stored scoring output of one frame.
type FrameResult struct {
	SessionID     string             `json:"session_id"`
	FrameIndex    int                `json:"frame_index"`
	Dt            float64            `json:"dt"`
	Pattern       string             `json:"biomech_pattern"`
	MovementState string             `json:"movement_state,omitempty"`
	Warning       string             `json:"stability_warning"`
	MuscleUsage   map[string]float64 `json:"detailed_muscle_usage"`
	RomData       map[string]float64 `json:"rom_data"`
	JointStress   map[string]float64 `json:"joint_stress,omitempty"`
}

// ResultRepository stores per-frame results.
type ResultRepository struct {
	db *sql.DB
}

// Results returns the frame result repository for this store.
func (s *Store) Results() *ResultRepository {
	return &ResultRepository{db: s.db}
}

// Append stores results after the session's existing frames in a single
// transaction and advances the session frame count. FrameIndex and
// SessionID of each result are set from the session.
func (r *ResultRepository) Append(sessionID string, results []FrameResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRow(`SELECT frames FROM sessions WHERE id = ?`, sessionID).Scan(&next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO frame_results
		 (session_id, frame_index, dt, pattern, movement_state, warning, muscle_usage, rom_data, joint_stress)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range results {
		res := &results[i]
		res.SessionID = sessionID
		res.FrameIndex = next
		next++

		usage, err := encodeScores(res.MuscleUsage)
		if err != nil {
			return err
		}
		rom, err := encodeScores(res.RomData)
		if err != nil {
			return err
		}
		stress, err := encodeScores(res.JointStress)
		if err != nil {
			return err
		}

		if _, err := stmt.Exec(sessionID, res.FrameIndex, res.Dt, res.Pattern, res.MovementState,
			res.Warning, usage, rom, stress); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`UPDATE sessions SET frames = ?, updated_at = ? WHERE id = ?`,
		next, time.Now(), sessionID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// List returns up to limit results of a session in frame order, starting at
// frame offset. A non-positive limit returns every remaining frame.
func (r *ResultRepository) List(sessionID string, offset, limit int) ([]FrameResult, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT session_id, frame_index, dt, pattern, movement_state, warning, muscle_usage, rom_data, joint_stress
		 FROM frame_results
		 WHERE session_id = ? AND frame_index >= ?
		 ORDER BY frame_index
		 LIMIT ?`,
		sessionID, offset, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []FrameResult
	for rows.Next() {
		var res FrameResult
		var usage, rom, stress string
		if err := rows.Scan(&res.SessionID, &res.FrameIndex, &res.Dt, &res.Pattern, &res.MovementState,
			&res.Warning, &usage, &rom, &stress); err != nil {
			return nil, err
		}
		if res.MuscleUsage, err = decodeScores(usage); err != nil {
			return nil, err
		}
		if res.RomData, err = decodeScores(rom); err != nil {
			return nil, err
		}
		if res.JointStress, err = decodeScores(stress); err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Summary aggregates the scored frames of a session.
type Summary struct {
	SessionID string `json:"session_id"`
	Frames    int    `json:"frames"`
	// Scored counts frames with a movement state; the rest were stabilizing.
	Scored   int                `json:"scored"`
	Patterns map[string]int     `json:"patterns"`
	Peak     map[string]float64 `json:"peak_muscle_usage"`
	Mean     map[string]float64 `json:"mean_muscle_usage"`
	Warnings map[string]int     `json:"warnings"`
}

// Summarize computes per-muscle peak and mean usage over the scored frames
// of a session, along with pattern and warning counts.
func (r *ResultRepository) Summarize(sessionID string) (*Summary, error) {
	results, err := r.List(sessionID, 0, 0)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		SessionID: sessionID,
		Frames:    len(results),
		Patterns:  map[string]int{},
		Peak:      map[string]float64{},
		Mean:      map[string]float64{},
		Warnings:  map[string]int{},
	}
	for _, res := range results {
		if res.MovementState == "" {
			continue
		}
		sum.Scored++
		sum.Patterns[res.Pattern]++
		if res.Warning != "" {
			sum.Warnings[res.Warning]++
		}
		for m, v := range res.MuscleUsage {
			sum.Peak[m] = max(sum.Peak[m], v)
			sum.Mean[m] += v
		}
	}
	for m, total := range sum.Mean {
		sum.Mean[m] = total / float64(sum.Scored)
	}

	return sum, nil
}

func encodeScores(m map[string]float64) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode scores: %w", err)
	}
	return string(data), nil
}

func decodeScores(s string) (map[string]float64, error) {
	m := map[string]float64{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}
	return m, nil
}
