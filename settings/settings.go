// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package settings stores the tunable consensus parameters.
//
// Values are persisted as strings through a KV backend. A missing or
// unparseable value reads as its default; only backend failures surface as
// errors. Each Set is a single upsert, so readers never see a partial write.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/danielhkuo/notetally/classify"
)

const (
	KeyThreshold      = "contentious_threshold"
	KeyMinVotes       = "min_votes_contentious"
	KeyExportMinVotes = "min_votes_export"

	DefaultExportMinVotes = 1
)

var (
	ErrInvalidThreshold      = errors.New("threshold must be between 0 and 1")
	ErrInvalidMinVotes       = errors.New("minimum votes must be at least 1")
	ErrInvalidExportMinVotes = errors.New("minimum export votes must be at least 0")
)

// KV persists named string values.
type KV interface {
	// Setting returns the stored value and whether it exists.
	Setting(ctx context.Context, name string) (string, bool, error)
	PutSetting(ctx context.Context, name, value, description string) error
}

type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

var descriptions = map[string]string{
	KeyThreshold: "Minimum consensus probability to avoid contentious marking (0-1). " +
		"Notes with consensus below this threshold will be marked as contentious.",
	KeyMinVotes: "Minimum number of votes required before marking a note as contentious. " +
		"Notes with fewer votes will not be marked as contentious.",
	KeyExportMinVotes: "Minimum number of votes required to include a note in export.",
}

// Threshold returns the contentious threshold, default 0.70.
func (s *Store) Threshold(ctx context.Context) (float64, error) {
	raw, ok, err := s.kv.Setting(ctx, KeyThreshold)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", KeyThreshold, err)
	}
	if !ok {
		return classify.DefaultThreshold, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("unparseable setting, using default", "name", KeyThreshold, "value", raw)
		return classify.DefaultThreshold, nil
	}
	return v, nil
}

// MinVotes returns the minimum votes before a note can be contentious, default 3.
func (s *Store) MinVotes(ctx context.Context) (int, error) {
	return s.intSetting(ctx, KeyMinVotes, classify.DefaultMinVotes)
}

// ExportMinVotes returns the minimum votes for a note to be exported, default 1.
func (s *Store) ExportMinVotes(ctx context.Context) (int, error) {
	return s.intSetting(ctx, KeyExportMinVotes, DefaultExportMinVotes)
}

func (s *Store) intSetting(ctx context.Context, name string, def int) (int, error) {
	raw, ok, err := s.kv.Setting(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", name, err)
	}
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("unparseable setting, using default", "name", name, "value", raw)
		return def, nil
	}
	return v, nil
}

// ValidateThreshold accepts values strictly between 0 and 1.
func ValidateThreshold(v float64) error {
	if !(v > 0 && v < 1) {
		return ErrInvalidThreshold
	}
	return nil
}

func ValidateMinVotes(n int) error {
	if n < 1 {
		return ErrInvalidMinVotes
	}
	return nil
}

func ValidateExportMinVotes(n int) error {
	if n < 0 {
		return ErrInvalidExportMinVotes
	}
	return nil
}

func (s *Store) SetThreshold(ctx context.Context, v float64) error {
	if err := ValidateThreshold(v); err != nil {
		return err
	}
	return s.put(ctx, KeyThreshold, strconv.FormatFloat(v, 'g', -1, 64))
}

func (s *Store) SetMinVotes(ctx context.Context, n int) error {
	if err := ValidateMinVotes(n); err != nil {
		return err
	}
	return s.put(ctx, KeyMinVotes, strconv.Itoa(n))
}

func (s *Store) SetExportMinVotes(ctx context.Context, n int) error {
	if err := ValidateExportMinVotes(n); err != nil {
		return err
	}
	return s.put(ctx, KeyExportMinVotes, strconv.Itoa(n))
}

func (s *Store) put(ctx context.Context, name, value string) error {
	if err := s.kv.PutSetting(ctx, name, value, descriptions[name]); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Params snapshots both consensus parameters for one Calculate call.
func (s *Store) Params(ctx context.Context) (classify.Params, error) {
	threshold, err := s.Threshold(ctx)
	if err != nil {
		return classify.Params{}, err
	}
	minVotes, err := s.MinVotes(ctx)
	if err != nil {
		return classify.Params{}, err
	}
	return classify.Params{Threshold: threshold, MinVotes: minVotes}, nil
}

// Seed writes defaults for any setting that has never been stored.
func (s *Store) Seed(ctx context.Context) error {
	defaults := []struct {
		name  string
		value string
	}{
		{KeyThreshold, "0.70"},
		{KeyMinVotes, strconv.Itoa(classify.DefaultMinVotes)},
		{KeyExportMinVotes, strconv.Itoa(DefaultExportMinVotes)},
	}

	for _, d := range defaults {
		existing, ok, err := s.kv.Setting(ctx, d.name)
		if err != nil {
			return fmt.Errorf("read %s: %w", d.name, err)
		}
		if ok {
			slog.Debug("setting already exists", "name", d.name, "value", existing)
			continue
		}
		if err := s.put(ctx, d.name, d.value); err != nil {
			return err
		}
		slog.Info("created setting", "name", d.name, "value", d.value)
	}
	return nil
}
