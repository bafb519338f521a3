package jobs

import (
	"testing"

	"github.com/callplan/callplan/internal/config"
)

func TestStartDisabled(t *testing.T) {
	s := NewScheduler(config.JobsConfig{Enabled: false}, nil, nil, nil, nil, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("disabled scheduler should start as a no-op, got %v", err)
	}
}

func TestStartInvalidSpec(t *testing.T) {
	s := NewScheduler(config.JobsConfig{Enabled: true, MaterializeSpec: "not a cron spec"}, nil, nil, nil, nil, nil)
	if err := s.Start(); err == nil {
		t.Fatal("expected error for malformed cron spec")
	}
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(config.JobsConfig{Enabled: true, MaterializeSpec: "30 2 * * *"}, nil, nil, nil, nil, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()
}
