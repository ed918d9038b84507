package videos

import (
	"fmt"

	"github.com/amankumarsingh77/vidhost/internal/models"
)

// ListKeyPattern matches every cached listing.
const ListKeyPattern = "videos:*"

func VideoKey(videoID int64) string {
	return fmt.Sprintf("video:%d", videoID)
}

func ListKey(page, limit int, f *models.VideoFilter) string {
	return fmt.Sprintf("videos:%d:%d:%s:%s:%s:%s:%s",
		page, limit, f.Category, f.Search, f.SortBy, f.SortOrder, f.Status)
}
