package catalog

import (
	"strings"

	"github.com/inkshelf/inkshelf/pkg/books"
)

// volumeResponse is the consumed wire shape of the volumes API. Only the
// fields the adapter needs are decoded.
type volumeResponse struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title      string     `json:"title"`
	Authors    []string   `json:"authors"`
	ImageLinks imageLinks `json:"imageLinks"`
}

// imageLinks carries the cover image variants the API publishes.
type imageLinks struct {
	ExtraLarge     string `json:"extraLarge"`
	Large          string `json:"large"`
	Medium         string `json:"medium"`
	Small          string `json:"small"`
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// best returns the highest-ranked available image, large to thumbnail.
func (l imageLinks) best() string {
	for _, candidate := range []string{
		l.ExtraLarge, l.Large, l.Medium, l.Small, l.Thumbnail, l.SmallThumbnail,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// toFragment converts the wire shape to a normalized record fragment.
// The caller-supplied identifier wins over the response echo so a
// redirected volume cannot change the record identity.
func (r volumeResponse) toFragment(id string) *books.Fragment {
	return &books.Fragment{
		ID:            id,
		Title:         r.VolumeInfo.Title,
		Authors:       strings.Join(r.VolumeInfo.Authors, ", "),
		CoverImageURL: r.VolumeInfo.ImageLinks.best(),
	}
}
