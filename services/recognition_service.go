package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/faceattend/attendbackend/repository"
)

// Match is the outcome of identifying a query vector against the enrolled
// set. A zero IdentityID means no identity was enrolled to match against.
type Match struct {
	IdentityID uint    `json:"identity_id,omitempty"`
	Name       string  `json:"name,omitempty"`
	Score      float64 `json:"score"`
	Threshold  float64 `json:"threshold"`
	Accepted   bool    `json:"accepted"`
}

// RecognitionService selects the best-matching enrolled identity for a query
// embedding. Identify is a pure function of the store contents and the
// threshold at call time; the caller decides whether to log the outcome.
type RecognitionService struct {
	identityRepo repository.IdentityRepositoryInterface
	threshold    *ThresholdService
	timeout      time.Duration
}

// NewRecognitionService creates a new recognition service
func NewRecognitionService(identityRepo repository.IdentityRepositoryInterface, threshold *ThresholdService, timeout time.Duration) *RecognitionService {
	return &RecognitionService{
		identityRepo: identityRepo,
		threshold:    threshold,
		timeout:      timeout,
	}
}

// Identify scores the query against every enrolled embedding with cosine
// similarity and accepts the best match iff its score reaches the current
// threshold. An empty store yields a no-match result, not an error.
//
// The scan is O(N*D) per call; replacing it with an index means swapping
// this implementation behind the same contract.
func (s *RecognitionService) Identify(ctx context.Context, query []float32) (Match, error) {
	if err := repository.ValidateEmbedding(query, s.identityRepo.Dimension()); err != nil {
		return Match{}, err
	}

	threshold := s.threshold.Get()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	identities, err := s.identityRepo.ListWithEmbeddings(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("failed to load enrolled embeddings: %w", err)
	}

	if len(identities) == 0 {
		return Match{Threshold: threshold}, nil
	}

	// identities arrive ordered by id ascending; the strict comparison
	// keeps the lowest id among ties
	best := identities[0]
	bestScore := CosineSimilarity(query, best.GetEmbedding())
	for _, identity := range identities[1:] {
		score := CosineSimilarity(query, identity.GetEmbedding())
		if score > bestScore {
			best = identity
			bestScore = score
		}
	}

	return Match{
		IdentityID: best.ID,
		Name:       best.Name,
		Score:      bestScore,
		Threshold:  threshold,
		Accepted:   bestScore >= threshold,
	}, nil
}

// CosineSimilarity computes dot(a, b) / (norm(a) * norm(b)) in [-1, 1],
// defined as 0 when the vectors differ in length or either norm is 0
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
