package services_test

import (
	"context"
	"testing"

	"pagecompare/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-42")
	ctx = services.WithPhase(ctx, "align")
	ctx = services.WithDocument(ctx, "a")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-42" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if phase, ok := services.PhaseFromContext(ctx); !ok || phase != "align" {
		t.Fatalf("unexpected phase: %v %v", phase, ok)
	}
	if side, ok := services.DocumentFromContext(ctx); !ok || side != "a" {
		t.Fatalf("unexpected document: %v %v", side, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPhase(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.PhaseFromContext(ctx); ok {
		t.Fatal("expected no phase value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
