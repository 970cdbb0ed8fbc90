package models

import "time"

type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

func (t MediaType) Valid() bool {
	return t == MediaTypeVideo || t == MediaTypeAudio
}

// ContentType is the header value used when streaming an asset of this type.
func (t MediaType) ContentType() string {
	if t == MediaTypeVideo {
		return "video/mp4"
	}
	return "audio/mpeg"
}

type MediaAsset struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Type        MediaType `db:"media_type"`
	FileLocator string    `db:"file_url"` // opaque, whatever FileStorage.Save returned
	UploadedBy  string    `db:"uploaded_by"`
	CreatedAt   time.Time `db:"created_at"`
}
