package store

import (
	"testing"
	"time"
)

func TestReportByCompany(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	jobs := []MatchedJob{
		{ID: "1", Title: "Backend", Company: "Acme", JobLink: "https://a/1", CreatedAt: created},
		{ID: "2", Title: "SRE", Company: "Globex", JobLink: "https://g/2", CreatedAt: created},
		{ID: "3", Title: "Platform", Company: "Acme", JobLink: "https://a/3", CreatedAt: created},
	}

	report := ReportByCompany(jobs)

	if len(report) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(report))
	}

	acme := report["Acme"]
	if len(acme) != 2 {
		t.Fatalf("expected 2 jobs for Acme, got %d", len(acme))
	}
	if acme[0]["title"] != "Backend" || acme[1]["url"] != "https://a/3" {
		t.Fatalf("unexpected entries: %v", acme)
	}
	if acme[0]["stored at"] != "2024-05-01T10:00:00.000000Z" {
		t.Fatalf("unexpected timestamp %q", acme[0]["stored at"])
	}
}

func TestReportByCompanyEmpty(t *testing.T) {
	if report := ReportByCompany(nil); len(report) != 0 {
		t.Fatalf("expected empty report, got %v", report)
	}
}
