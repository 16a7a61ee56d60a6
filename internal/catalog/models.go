package catalog

// PlaceholderCover is the image reference used for books without a thumbnail
const PlaceholderCover = "cover-not-found.png"

// LargeThumbnailSuffix asks the Google Books image service for a wider rendition
const LargeThumbnailSuffix = "&fife=w800"

// Book represents one row of the books-with-emotions table
type Book struct {
	ISBN13      int64  `json:"isbn13" parquet:"isbn13"`
	Title       string `json:"title" parquet:"title"`
	Authors     string `json:"authors" parquet:"authors"` // semicolon separated
	Description string `json:"description" parquet:"description"`
	Thumbnail   string `json:"thumbnail,omitempty" parquet:"thumbnail,optional"`
	Category    string `json:"simple_categories" parquet:"simple_categories"`

	// Emotion scores from the classifier, higher means stronger
	Joy      float64 `json:"joy" parquet:"joy"`
	Surprise float64 `json:"surprise" parquet:"surprise"`
	Anger    float64 `json:"anger" parquet:"anger"`
	Fear     float64 `json:"fear" parquet:"fear"`
	Sadness  float64 `json:"sadness" parquet:"sadness"`

	// LargeThumbnail is resolved once at load time and is never empty
	LargeThumbnail string `json:"large_thumbnail" parquet:"-"`
}

// LargeThumbnailFor derives the display image for a raw thumbnail URL
func LargeThumbnailFor(thumbnail string) string {
	if thumbnail == "" {
		return PlaceholderCover
	}
	return thumbnail + LargeThumbnailSuffix
}
