package models

import "time"

// TrendScore ranks one topic cluster by aggregated engagement.
type TrendScore struct {
	ClusterID      int      `json:"cluster_id"`
	Topic          string   `json:"topic"`
	Rank           int      `json:"rank"`
	Score          float64  `json:"score"`
	VideoCount     int      `json:"video_count"`
	TotalViews     int64    `json:"total_views"`
	TotalLikes     int64    `json:"total_likes"`
	TotalComments  int64    `json:"total_comments"`
	EngagementRate float64  `json:"engagement_rate"`
	VideoIDs       []string `json:"video_ids"`
}

// DropReason explains why videos were excluded from the final ranking.
type DropReason string

const (
	DropStatsUnavailable DropReason = "statistics unavailable"
	DropExtractionFailed DropReason = "topic extraction failed"
	DropEmbeddingFailed  DropReason = "topic embedding failed"
)

// RunReport is the full output of one analysis run. Trends are always
// present on success; Insight is decorative and may be absent.
type RunReport struct {
	RunID            string             `json:"run_id"`
	Query            string             `json:"query"`
	Window           Window             `json:"window"`
	GeneratedAt      time.Time          `json:"generated_at"`
	VideosFetched    int                `json:"videos_fetched"`
	Dropped          map[DropReason]int `json:"dropped"`
	Trends           []*TrendScore      `json:"trends"`
	Insight          string             `json:"insight,omitempty"`
	InsightAvailable bool               `json:"insight_available"`
}

// DroppedTotal sums drops across all reasons.
func (r *RunReport) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}
