package importer

import (
	"strings"

	"github.com/videoteca/cloud-import/services/youtube"
	"golang.org/x/text/cases"
)

// Filter keeps the videos whose title or description contains query,
// ignoring case. It never reorders and never fetches.
func Filter(videos []youtube.Video, query string) []youtube.Video {
	query = strings.TrimSpace(query)
	if query == "" {
		return videos
	}
	fold := cases.Fold()
	q := fold.String(query)
	res := make([]youtube.Video, 0, len(videos))
	for _, v := range videos {
		if strings.Contains(fold.String(v.Title), q) || strings.Contains(fold.String(v.Description), q) {
			res = append(res, v)
		}
	}
	return res
}
