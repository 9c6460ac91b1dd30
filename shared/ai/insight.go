package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"trendwatch/internal/models"
)

// InsightGenerator produces the narrative summary over the ranked trend
// table. The narrative is decorative: on repeated failure the caller falls
// back to the bare table.
type InsightGenerator struct {
	llm  TextGenerator
	topN int
}

func NewInsightGenerator(llm TextGenerator, topN int) *InsightGenerator {
	if topN < 1 {
		topN = 10
	}
	return &InsightGenerator{llm: llm, topN: topN}
}

// Generate issues one text-generation request over the top trends, retrying
// once on failure. The error is an InsightError in the taxonomy sense:
// callers degrade, they never abort.
func (g *InsightGenerator) Generate(ctx context.Context, query string, trends []*models.TrendScore) (string, error) {
	if len(trends) == 0 {
		return "", fmt.Errorf("%w: no trends to summarize", ErrEmptyResponse)
	}

	prompt := g.buildInsightPrompt(query, trends)

	insight, err := g.llm.GenerateText(ctx, prompt)
	if err != nil {
		log.Printf("Warning: insight generation failed, retrying once: %v", err)
		insight, err = g.llm.GenerateText(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("insight generation failed after retry: %w", err)
		}
	}

	insight = strings.TrimSpace(insight)
	if insight == "" {
		return "", ErrEmptyResponse
	}
	return insight, nil
}

func (g *InsightGenerator) buildInsightPrompt(query string, trends []*models.TrendScore) string {
	limit := g.topN
	if limit > len(trends) {
		limit = len(trends)
	}

	var lines []string
	for _, trend := range trends[:limit] {
		lines = append(lines, fmt.Sprintf("%d. %s: score=%.3f, videos=%d, views=%d, engagement=%.2f%%",
			trend.Rank, trend.Topic, trend.Score, trend.VideoCount, trend.TotalViews, trend.EngagementRate*100))
	}

	return fmt.Sprintf(`You are an expert analyst providing insights on trending topics.
Analyze the trend data and provide actionable insights. Focus on:
1. What topics are currently most popular
2. Why these topics might be trending
3. Emerging topics to watch
4. Recommendations for content creators or learners
Keep the insights concise and actionable.

Area of Interest: %s

Top Trends:
%s`, query, strings.Join(lines, "\n"))
}
