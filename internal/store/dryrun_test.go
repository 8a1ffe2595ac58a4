package store

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDryRunOnlyLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	writer := NewDryRun(zap.New(core))

	jobs := []MatchedJob{
		{ResumeID: "r1", Title: "Backend", Company: "Acme", JobLink: "https://a/1"},
		{ResumeID: "r1", Title: "SRE", Company: "Globex", JobLink: "https://g/2"},
	}
	if err := writer.SaveJobs(context.Background(), jobs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("dry run: would store job").All()
	if len(entries) != 2 {
		t.Fatalf("expected a log entry per job, got %d", len(entries))
	}
	if entries[1].ContextMap()["job_link"] != "https://g/2" {
		t.Fatalf("unexpected fields: %v", entries[1].ContextMap())
	}
}
