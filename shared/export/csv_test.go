package export

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"trendwatch/internal/models"
)

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	report := &models.RunReport{
		RunID:       "run-1",
		Query:       "3d printing",
		GeneratedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		Trends: []*models.TrendScore{
			{
				ClusterID: 0, Topic: "Resin Printing", Rank: 1, Score: 0.91,
				VideoCount: 4, TotalViews: 120000, TotalLikes: 5000,
				TotalComments: 1000, EngagementRate: 0.05,
				VideoIDs: []string{"a", "b", "c", "d"},
			},
			{
				ClusterID: 1, Topic: "FDM Upgrades", Rank: 2, Score: 0.40,
				VideoCount: 2, TotalViews: 30000, TotalLikes: 900,
				TotalComments: 120, EngagementRate: 0.034,
				VideoIDs: []string{"e", "f"},
			},
		},
	}

	path, err := WriteCSV(dir, report)
	if err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 clusters", len(rows))
	}
	if rows[0][0] != "rank" || rows[0][1] != "topic" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Resin Printing" || rows[1][0] != "1" {
		t.Errorf("first data row = %v", rows[1])
	}
	if rows[2][8] != "e f" {
		t.Errorf("video_ids column = %q, want space-joined IDs", rows[2][8])
	}
}

func TestWriteCSVEmptyTrends(t *testing.T) {
	dir := t.TempDir()
	report := &models.RunReport{GeneratedAt: time.Now()}

	path, err := WriteCSV(dir, report)
	if err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if len(data) == 0 {
		t.Error("export file has no header")
	}
}
