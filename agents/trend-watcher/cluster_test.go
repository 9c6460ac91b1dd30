package trendwatcher

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"trendwatch/internal/models"
)

// fakeEmbedder returns canned vectors per label so clustering is fully
// deterministic in tests.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	vec, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector for label")
	}
	return vec, nil
}

func assignment(videoID, topic string) *models.TopicAssignment {
	return &models.TopicAssignment{VideoID: videoID, Topic: topic}
}

func TestClusterGroupsSimilarTopics(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"Go":         {1, 0, 0},
		"Golang":     {0.95, 0.05, 0},
		"3D Printer": {0, 1, 0},
		"Baking":     {0, 0, 1},
	}}
	clusterer := NewClusterer(embedder, 0.8)

	assignments := []*models.TopicAssignment{
		assignment("v1", "Go"),
		assignment("v2", "Golang"),
		assignment("v3", "3D Printer"),
		assignment("v4", "Baking"),
		assignment("v5", "Go"),
	}

	clusters, dropped, err := clusterer.Cluster(context.Background(), assignments)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("Cluster() dropped %v, want none", dropped)
	}
	if len(clusters) != 3 {
		t.Fatalf("Cluster() produced %d clusters, want 3", len(clusters))
	}

	if got := clusters[0].VideoIDs; !reflect.DeepEqual(got, []string{"v1", "v2", "v5"}) {
		t.Errorf("first cluster members = %v, want [v1 v2 v5]", got)
	}
	if clusters[0].Label != "Go" {
		t.Errorf("first cluster label = %q, want Go (most frequent)", clusters[0].Label)
	}
}

func TestClusterCoversEveryVideoExactlyOnce(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	var assignments []*models.TopicAssignment
	for i := 0; i < 20; i++ {
		topic := fmt.Sprintf("topic-%d", i%4)
		embedder.vectors[topic] = []float32{float32(i%4) + 1, float32((i + 1) % 4), 1}
		assignments = append(assignments, assignment(fmt.Sprintf("v%d", i), topic))
	}

	clusters, dropped, err := NewClusterer(embedder, 0.9).Cluster(context.Background(), assignments)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	seen := make(map[string]int)
	for _, cluster := range clusters {
		for _, id := range cluster.VideoIDs {
			seen[id]++
		}
	}
	for _, id := range dropped {
		seen[id]++
	}

	if len(seen) != len(assignments) {
		t.Fatalf("covered %d videos, want %d", len(seen), len(assignments))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("video %s appears %d times, want exactly once", id, count)
		}
	}
}

func TestClusterDeterminism(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"a": {1, 0.2, 0}, "b": {0.9, 0.3, 0.1}, "c": {0, 1, 0},
		"d": {0.1, 0.9, 0.2}, "e": {0, 0, 1},
	}}
	assignments := []*models.TopicAssignment{
		assignment("v1", "a"), assignment("v2", "b"), assignment("v3", "c"),
		assignment("v4", "d"), assignment("v5", "e"),
	}
	clusterer := NewClusterer(embedder, 0.85)

	first, _, err := clusterer.Cluster(context.Background(), assignments)
	if err != nil {
		t.Fatalf("first Cluster() error: %v", err)
	}
	for run := 0; run < 5; run++ {
		again, _, err := clusterer.Cluster(context.Background(), assignments)
		if err != nil {
			t.Fatalf("Cluster() error on run %d: %v", run, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced different clusters:\nfirst: %+v\nagain: %+v", run, first, again)
		}
	}
}

func TestClusterDropsUnembeddableTopics(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"known": {1, 0},
	}}
	assignments := []*models.TopicAssignment{
		assignment("v1", "known"),
		assignment("v2", "unknown"),
	}

	clusters, dropped, err := NewClusterer(embedder, 0.8).Cluster(context.Background(), assignments)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if len(clusters) != 1 || len(clusters[0].VideoIDs) != 1 {
		t.Errorf("clusters = %+v, want one single-member cluster", clusters)
	}
	if !reflect.DeepEqual(dropped, []string{"v2"}) {
		t.Errorf("dropped = %v, want [v2]", dropped)
	}
}

func TestRepresentativeLabel(t *testing.T) {
	tests := []struct {
		name   string
		topics []string
		want   string
	}{
		{"empty", nil, ""},
		{"single", []string{"Go"}, "Go"},
		{"most frequent wins", []string{"Go", "Rust", "Rust"}, "Rust"},
		{"first seen breaks ties", []string{"Go", "Rust", "Go", "Rust"}, "Go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := representativeLabel(tt.topics); got != tt.want {
				t.Errorf("representativeLabel(%v) = %q, want %q", tt.topics, got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0}, []float64{1, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
		{"length mismatch", []float64{1}, []float64{1, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortByFetchOrder(t *testing.T) {
	videos := []*models.VideoRecord{
		{ID: "v1"}, {ID: "v2"}, {ID: "v3"},
	}
	assignments := []*models.TopicAssignment{
		assignment("v3", "c"),
		assignment("v1", "a"),
	}

	ordered, err := sortByFetchOrder(assignments, videos)
	if err != nil {
		t.Fatalf("sortByFetchOrder() error: %v", err)
	}
	if len(ordered) != 2 || ordered[0].VideoID != "v1" || ordered[1].VideoID != "v3" {
		t.Errorf("ordered = %+v, want [v1 v3]", ordered)
	}

	t.Run("DuplicateAssignment", func(t *testing.T) {
		dup := append(assignments, assignment("v1", "again"))
		if _, err := sortByFetchOrder(dup, videos); err == nil {
			t.Error("sortByFetchOrder() accepted duplicate assignment")
		}
	})
}

func TestEmbeddingsMemoizedPerLabel(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{"Go": {1, 0}}}
	assignments := []*models.TopicAssignment{
		assignment("v1", "Go"), assignment("v2", "Go"), assignment("v3", "Go"),
	}

	if _, _, err := NewClusterer(embedder, 0.8).Cluster(context.Background(), assignments); err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if embedder.calls != 1 {
		t.Errorf("embedder called %d times for one unique label, want 1", embedder.calls)
	}
}
