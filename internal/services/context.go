package services

import "context"

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	phaseKey    contextKey = "phase"
	documentKey contextKey = "document"
)

// WithRunID annotates context with the comparison run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the comparison run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPhase annotates context with the pipeline phase name (load, align, report, record).
func WithPhase(ctx context.Context, phase string) context.Context {
	if phase == "" {
		return ctx
	}
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromContext returns the phase name if present.
func PhaseFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(phaseKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithDocument annotates context with the document side being processed ("a" or "b").
func WithDocument(ctx context.Context, side string) context.Context {
	if side == "" {
		return ctx
	}
	return context.WithValue(ctx, documentKey, side)
}

// DocumentFromContext returns the document side if present.
func DocumentFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(documentKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
