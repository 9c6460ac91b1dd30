package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"trendwatch/internal/models"
)

// WriteCSV serializes the ranked trend table to a timestamped CSV file under
// dir and returns the file path. Rows are clusters, columns the report
// fields; no versioning, no binary format.
func WriteCSV(dir string, report *models.RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("trends_%s.csv", report.GeneratedAt.Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{
		"rank", "topic", "score", "video_count",
		"total_views", "total_likes", "total_comments",
		"engagement_rate", "video_ids",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, trend := range report.Trends {
		row := []string{
			strconv.Itoa(trend.Rank),
			trend.Topic,
			strconv.FormatFloat(trend.Score, 'f', 4, 64),
			strconv.Itoa(trend.VideoCount),
			strconv.FormatInt(trend.TotalViews, 10),
			strconv.FormatInt(trend.TotalLikes, 10),
			strconv.FormatInt(trend.TotalComments, 10),
			strconv.FormatFloat(trend.EngagementRate, 'f', 4, 64),
			strings.Join(trend.VideoIDs, " "),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row for cluster %d: %w", trend.ClusterID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}
	return path, nil
}
