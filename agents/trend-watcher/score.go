package trendwatcher

import (
	"sort"

	"trendwatch/internal/models"
	"trendwatch/shared/config"
)

// Scorer ranks topic clusters by aggregated engagement.
//
// Each scored metric (total views, engagement rate, total comments, member
// count) is normalized by the maximum observed across all clusters in the
// run, guarded to 0 when the maximum is 0, then combined as a weighted sum.
// Engagement rate is (likes+comments)/views per cluster.
type Scorer struct {
	weights config.ScoreWeights
}

func NewScorer(weights config.ScoreWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score produces one TrendScore per cluster, sorted descending by score.
// Ties break by raw total views, then by member count. Ranks are 1-based.
func (s *Scorer) Score(clusters []*models.TopicCluster, videos map[string]*models.VideoRecord) []*models.TrendScore {
	trends := make([]*models.TrendScore, 0, len(clusters))

	for _, cluster := range clusters {
		trend := &models.TrendScore{
			ClusterID:  cluster.ID,
			Topic:      cluster.Label,
			VideoCount: cluster.Size(),
			VideoIDs:   cluster.VideoIDs,
		}
		for _, id := range cluster.VideoIDs {
			video, ok := videos[id]
			if !ok {
				continue
			}
			trend.TotalViews += video.ViewCount
			trend.TotalLikes += video.LikeCount
			trend.TotalComments += video.CommentCount
		}
		if trend.TotalViews > 0 {
			trend.EngagementRate = float64(trend.TotalLikes+trend.TotalComments) / float64(trend.TotalViews)
		}
		trends = append(trends, trend)
	}

	var maxViews, maxEngagement, maxComments, maxSize float64
	for _, trend := range trends {
		maxViews = maxFloat(maxViews, float64(trend.TotalViews))
		maxEngagement = maxFloat(maxEngagement, trend.EngagementRate)
		maxComments = maxFloat(maxComments, float64(trend.TotalComments))
		maxSize = maxFloat(maxSize, float64(trend.VideoCount))
	}

	for _, trend := range trends {
		trend.Score = s.weights.Views*normalizeByMax(float64(trend.TotalViews), maxViews) +
			s.weights.Engagement*normalizeByMax(trend.EngagementRate, maxEngagement) +
			s.weights.Comments*normalizeByMax(float64(trend.TotalComments), maxComments) +
			s.weights.Size*normalizeByMax(float64(trend.VideoCount), maxSize)
	}

	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].Score != trends[j].Score {
			return trends[i].Score > trends[j].Score
		}
		if trends[i].TotalViews != trends[j].TotalViews {
			return trends[i].TotalViews > trends[j].TotalViews
		}
		return trends[i].VideoCount > trends[j].VideoCount
	})

	for i, trend := range trends {
		trend.Rank = i + 1
	}
	return trends
}

// normalizeByMax scales value into [0, 1] against the run maximum; a zero
// maximum yields 0 rather than dividing by zero.
func normalizeByMax(value, max float64) float64 {
	if max == 0 {
		return 0
	}
	return value / max
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
