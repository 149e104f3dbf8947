package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/faceattend/attendbackend/apperrors"
)

const testTimeout = 5 * time.Second

func newTestRecognizer(t *testing.T, dim int, defaultThreshold float64) (*RecognitionService, *fakeIdentityRepo, *ThresholdService) {
	t.Helper()
	identityRepo := newFakeIdentityRepo(dim)
	threshold := NewThresholdService(newFakeSettingsRepo(), defaultThreshold, testTimeout)
	return NewRecognitionService(identityRepo, threshold, testTimeout), identityRepo, threshold
}

func TestIdentifySelfSimilarity(t *testing.T) {
	svc, repo, _ := newTestRecognizer(t, 4, 0.45)
	ctx := context.Background()

	embedding := []float32{0.5, -0.25, 0.8, 0.1}
	identity, err := repo.Enroll(ctx, "Alice", embedding, nil)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	match, err := svc.Identify(ctx, embedding)
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if match.IdentityID != identity.ID {
		t.Errorf("expected identity %d, got %d", identity.ID, match.IdentityID)
	}
	if math.Abs(match.Score-1.0) > 1e-6 {
		t.Errorf("self-similarity should be 1.0, got %v", match.Score)
	}
	if !match.Accepted {
		t.Error("self match at threshold 0.45 should be accepted")
	}
}

func TestIdentifyEmptyStore(t *testing.T) {
	svc, _, _ := newTestRecognizer(t, 4, 0.45)

	match, err := svc.Identify(context.Background(), []float32{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("Identify on empty store should not error: %v", err)
	}
	if match.IdentityID != 0 {
		t.Errorf("expected no identity, got %d", match.IdentityID)
	}
	if match.Accepted {
		t.Error("no-match result must not be accepted")
	}
	if match.Threshold != 0.45 {
		t.Errorf("expected threshold 0.45 in result, got %v", match.Threshold)
	}
}

func TestIdentifyRejectsBadQuery(t *testing.T) {
	svc, repo, _ := newTestRecognizer(t, 4, 0.45)
	ctx := context.Background()
	if _, err := repo.Enroll(ctx, "Alice", []float32{1, 0, 0, 0}, nil); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	tests := []struct {
		name  string
		query []float32
	}{
		{"empty", nil},
		{"wrong dimension", []float32{1, 0, 0}},
		{"NaN value", []float32{1, float32(math.NaN()), 0, 0}},
		{"Inf value", []float32{1, float32(math.Inf(1)), 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Identify(ctx, tt.query)
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestIdentifyPicksBestMatch(t *testing.T) {
	svc, repo, _ := newTestRecognizer(t, 4, 0.45)
	ctx := context.Background()

	if _, err := repo.Enroll(ctx, "Alice", []float32{1, 0, 0, 0}, nil); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	bob, err := repo.Enroll(ctx, "Bob", []float32{0, 1, 0, 0}, nil)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	// closer to Bob's axis than Alice's
	match, err := svc.Identify(ctx, []float32{0.2, 0.9, 0, 0})
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if match.IdentityID != bob.ID {
		t.Errorf("expected Bob (%d), got identity %d", bob.ID, match.IdentityID)
	}
	if match.Name != "Bob" {
		t.Errorf("expected name Bob, got %q", match.Name)
	}

	// orthogonal to both; best score is 0 and must not be accepted
	match, err = svc.Identify(ctx, []float32{0, 0, 1, 0})
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if match.Score != 0 {
		t.Errorf("expected score 0 for orthogonal query, got %v", match.Score)
	}
	if match.Accepted {
		t.Error("orthogonal query must not be accepted at threshold 0.45")
	}
}

func TestIdentifyTieBreakLowestID(t *testing.T) {
	svc, repo, _ := newTestRecognizer(t, 4, 0.45)
	ctx := context.Background()

	// two identities with the same embedding; the first enrolled must win
	first, err := repo.Enroll(ctx, "First", []float32{1, 1, 0, 0}, nil)
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if _, err := repo.Enroll(ctx, "Second", []float32{1, 1, 0, 0}, nil); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	match, err := svc.Identify(ctx, []float32{1, 1, 0, 0})
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if match.IdentityID != first.ID {
		t.Errorf("tie should resolve to lowest id %d, got %d", first.ID, match.IdentityID)
	}
}

func TestIdentifyThresholdMonotonicity(t *testing.T) {
	svc, repo, threshold := newTestRecognizer(t, 4, 0.9)
	ctx := context.Background()

	if _, err := repo.Enroll(ctx, "Alice", []float32{1, 0, 0, 0}, nil); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}

	// cosine against [1,0,0,0] is exactly 0.7
	query := []float32{0.7, float32(math.Sqrt(0.51)), 0, 0}

	match, err := svc.Identify(ctx, query)
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if math.Abs(match.Score-0.7) > 1e-6 {
		t.Fatalf("expected score 0.7, got %v", match.Score)
	}
	if match.Accepted {
		t.Error("score 0.7 must not be accepted at threshold 0.9")
	}

	if err := threshold.Set(ctx, 0.5); err != nil {
		t.Fatalf("Set threshold failed: %v", err)
	}
	match, err = svc.Identify(ctx, query)
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if !match.Accepted {
		t.Error("score 0.7 should be accepted at threshold 0.5")
	}
	if match.Threshold != 0.5 {
		t.Errorf("result should carry the threshold in effect, got %v", match.Threshold)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"scaled copy", []float32{1, 2}, []float32{3, 6}, 1.0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}, 0.0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0.0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"empty", nil, nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
