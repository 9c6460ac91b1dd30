package trendwatcher

import (
	"context"
	"fmt"
	"log"
	"math"

	"trendwatch/internal/models"
)

// Embedder maps a topic label to a fixed-length vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Clusterer groups topic assignments whose labels embed close together.
//
// The algorithm is a greedy single-linkage pass: assignments are folded in
// input order, each attaching to the first existing cluster whose centroid
// cosine similarity meets the threshold, else opening a new cluster. This is
// an O(n*k) approximation, not a globally optimal clustering. Given the same
// input order and the same embeddings the output is identical; nothing here
// iterates a map or runs in parallel.
type Clusterer struct {
	embedder  Embedder
	threshold float64
}

func NewClusterer(embedder Embedder, threshold float64) *Clusterer {
	return &Clusterer{embedder: embedder, threshold: threshold}
}

type clusterState struct {
	sum      []float64
	centroid []float64
	topics   []string
	videoIDs []string
}

func (cs *clusterState) add(vec []float64, assignment *models.TopicAssignment) {
	if cs.sum == nil {
		cs.sum = make([]float64, len(vec))
	}
	for i, v := range vec {
		cs.sum[i] += v
	}
	cs.topics = append(cs.topics, assignment.Topic)
	cs.videoIDs = append(cs.videoIDs, assignment.VideoID)

	n := float64(len(cs.videoIDs))
	cs.centroid = make([]float64, len(cs.sum))
	for i, v := range cs.sum {
		cs.centroid[i] = v / n
	}
}

// Cluster assigns every input exactly once. Assignments whose label cannot
// be embedded are dropped and returned by video ID rather than failing the
// run. Duplicate labels share one embedding request.
func (c *Clusterer) Cluster(ctx context.Context, assignments []*models.TopicAssignment) ([]*models.TopicCluster, []string, error) {
	var states []*clusterState
	var dropped []string
	embeddings := make(map[string][]float64)

	for _, assignment := range assignments {
		vec, ok := embeddings[assignment.Topic]
		if !ok {
			raw, err := c.embedder.EmbedText(ctx, assignment.Topic)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				log.Printf("Warning: dropping video %s, failed to embed topic %q: %v", assignment.VideoID, assignment.Topic, err)
				dropped = append(dropped, assignment.VideoID)
				continue
			}
			vec = toFloat64(raw)
			embeddings[assignment.Topic] = vec
		}

		attached := false
		for _, state := range states {
			if cosineSimilarity(state.centroid, vec) >= c.threshold {
				state.add(vec, assignment)
				attached = true
				break
			}
		}
		if !attached {
			state := &clusterState{}
			state.add(vec, assignment)
			states = append(states, state)
		}
	}

	clusters := make([]*models.TopicCluster, 0, len(states))
	for i, state := range states {
		clusters = append(clusters, &models.TopicCluster{
			ID:       i,
			Label:    representativeLabel(state.topics),
			VideoIDs: state.videoIDs,
		})
	}
	return clusters, dropped, nil
}

// representativeLabel picks the most frequent topic in the cluster,
// first-seen winning ties.
func representativeLabel(topics []string) string {
	if len(topics) == 0 {
		return ""
	}

	counts := make(map[string]int, len(topics))
	for _, topic := range topics {
		counts[topic]++
	}

	best := topics[0]
	for _, topic := range topics {
		if counts[topic] > counts[best] {
			best = topic
		}
	}
	return best
}

// cosineSimilarity returns 0 for mismatched or zero-norm vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func toFloat64(raw []float32) []float64 {
	vec := make([]float64, len(raw))
	for i, v := range raw {
		vec[i] = float64(v)
	}
	return vec
}

// sortByFetchOrder orders assignments to match the fetcher's output so the
// greedy pass sees a deterministic sequence regardless of how the concurrent
// extraction workers finished.
func sortByFetchOrder(assignments []*models.TopicAssignment, videos []*models.VideoRecord) ([]*models.TopicAssignment, error) {
	byID := make(map[string]*models.TopicAssignment, len(assignments))
	for _, a := range assignments {
		if _, dup := byID[a.VideoID]; dup {
			return nil, fmt.Errorf("duplicate assignment for video %s", a.VideoID)
		}
		byID[a.VideoID] = a
	}

	ordered := make([]*models.TopicAssignment, 0, len(assignments))
	for _, video := range videos {
		if a, ok := byID[video.ID]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}
