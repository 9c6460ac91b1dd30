package trendwatcher

import (
	"testing"

	"trendwatch/shared/config"
)

func TestTrendAgentName(t *testing.T) {
	agent := NewTrendAgent(&config.Config{})
	if name := agent.Name(); name != "Trend Watcher" {
		t.Errorf("Agent.Name() = %s, want Trend Watcher", name)
	}
}

func TestTrendMetricsGetSummary(t *testing.T) {
	tests := []struct {
		name     string
		metrics  TrendMetrics
		expected string
	}{
		{
			name:     "All zeros",
			metrics:  TrendMetrics{},
			expected: "found 0 videos, extracted 0 topics, ranked 0 clusters, dropped 0",
		},
		{
			name: "Clean run",
			metrics: TrendMetrics{
				VideosFound: 10,
				Extracted:   10,
				Clusters:    3,
			},
			expected: "found 10 videos, extracted 10 topics, ranked 3 clusters, dropped 0",
		},
		{
			name: "With drops",
			metrics: TrendMetrics{
				VideosFound: 10,
				Extracted:   8,
				Clusters:    3,
				Dropped:     2,
			},
			expected: "found 10 videos, extracted 8 topics, ranked 3 clusters, dropped 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.metrics.GetSummary(); got != tt.expected {
				t.Errorf("GetSummary() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestTrendAgentSummaryBeforeAnyRun(t *testing.T) {
	agent := NewTrendAgent(&config.Config{})
	if got := agent.Summary(); got != "no runs yet" {
		t.Errorf("Summary() = %q, want \"no runs yet\"", got)
	}
	if agent.LastReport() != nil {
		t.Error("LastReport() non-nil before any run")
	}
}
