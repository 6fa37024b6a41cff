package youtube

import (
	"fmt"
	"io"

	"ytdigest/pkg/models"
)

// WriteResults prints one "{title}: {url}" line per result
func WriteResults(w io.Writer, results []models.SearchResult) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.Title, r.URL()); err != nil {
			return err
		}
	}
	return nil
}
