package store

import (
	"context"
	"os"
)

// Stats holds durable state statistics.
type Stats struct {
	DBPath      string     `json:"db_path"`
	DBSizeBytes int64      `json:"db_size_bytes"`
	TotalBytes  int        `json:"total_bytes"`
	Blobs       []BlobInfo `json:"blobs"`
}

// CollectStats describes every blob in s. dbPath is only used for the file
// size and may be empty for non-file stores.
func CollectStats(ctx context.Context, s Store, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if dbPath != "" {
		if info, err := os.Stat(dbPath); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}

	blobs, err := s.List(ctx)
	if err != nil {
		return st, err
	}
	st.Blobs = blobs
	for _, b := range blobs {
		st.TotalBytes += b.Size
	}
	return st, nil
}
