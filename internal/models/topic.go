package models

// TopicAssignment is the extractor's verdict for one video: a main topic
// plus an ordered list of subtopics. Exactly one assignment exists per
// video that survives extraction.
type TopicAssignment struct {
	VideoID   string   `json:"video_id"`
	Topic     string   `json:"topic"`
	Subtopics []string `json:"subtopics"`
}

// TopicCluster groups videos whose topics embed close to each other.
type TopicCluster struct {
	ID       int      `json:"cluster_id"`
	Label    string   `json:"label"`
	VideoIDs []string `json:"video_ids"`
}

// Size returns the number of member videos.
func (c *TopicCluster) Size() int {
	return len(c.VideoIDs)
}
