package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  skill  ", Value: "  Go  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "skill" || fields[0].String != "Go" {
		t.Fatalf("unexpected skill field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), JobFields("Backend Engineer", "Acme", "")...).Info("posting matched")
	WithFields(zap.New(core)).Info("no fields")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldTitle] != "Backend Engineer" || ctx[FieldCompany] != "Acme" {
		t.Fatalf("unexpected job fields: %v", ctx)
	}
	if _, ok := ctx[FieldJobLink]; ok {
		t.Fatalf("blank link must be omitted")
	}
	if len(entries[1].Context) != 0 {
		t.Fatalf("expected no fields, got %v", entries[1].Context)
	}

	// the fallback logger must not panic
	WithFields(nil, zap.String(FieldSkill, "Go")).Info("dropped")
}

func TestWithResume(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithResume(zap.New(core), "r1", " ").Info("searching")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldResumeID] != "r1" {
		t.Fatalf("expected resume id r1, got %q", ctx[FieldResumeID])
	}
	if _, ok := ctx[FieldUserID]; ok {
		t.Fatalf("blank user id must be omitted")
	}

	if WithResume(nil, "r1", "u1") == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}
