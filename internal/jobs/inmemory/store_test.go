package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/budget-report/internal/jobs"
	"github.com/dvloznov/budget-report/internal/report"
)

func TestStore_SaveAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	job := &jobs.ReportJob{JobID: "j1", Source: "gs://b/o.csv", Status: jobs.JobStatusPending}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob() error = %v", err)
	}
	job.Status = jobs.JobStatusFailed

	got, err := s.GetJob(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("stored job changed through caller pointer: %s", got.Status)
	}

	if err := s.SaveJob(ctx, &jobs.ReportJob{}); err == nil {
		t.Error("SaveJob() without ID returned nil error")
	}
	if _, err := s.GetJob(ctx, "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob(missing) error = %v, want ErrJobNotFound", err)
	}
}

func TestStore_ListJobs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, j := range []*jobs.ReportJob{
		{JobID: "a", Source: "gs://b/1.csv", Status: jobs.JobStatusCompleted},
		{JobID: "b", Source: "gs://b/2.csv", Status: jobs.JobStatusFailed},
		{JobID: "c", Source: "gs://b/1.csv", Status: jobs.JobStatusCompleted},
	} {
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.SaveJob(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{name: "all newest first", filter: jobs.JobFilter{}, want: []string{"c", "b", "a"}},
		{name: "by status", filter: jobs.JobFilter{Status: jobs.JobStatusCompleted}, want: []string{"c", "a"}},
		{name: "by source", filter: jobs.JobFilter{Source: "gs://b/2.csv"}, want: []string{"b"}},
		{name: "limit", filter: jobs.JobFilter{Limit: 2}, want: []string{"c", "b"}},
		{name: "offset", filter: jobs.JobFilter{Offset: 1}, want: []string{"b", "a"}},
		{name: "offset past end", filter: jobs.JobFilter{Offset: 5}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs() error = %v", err)
			}
			ids := []string{}
			for _, j := range got {
				ids = append(ids, j.JobID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ListJobs() = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("ListJobs() = %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestStore_Results(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	b := report.Assemble(nil)

	if err := s.SaveResult(ctx, "unknown", b); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("SaveResult(unknown) error = %v", err)
	}
	_ = s.SaveJob(ctx, &jobs.ReportJob{JobID: "j1"})
	if err := s.SaveResult(ctx, "j1", b); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	got, err := s.GetResult(ctx, "j1")
	if err != nil || got != b {
		t.Errorf("GetResult() = %p, %v", got, err)
	}
}
