package decoder

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata is the EXIF subset shown next to a score.
type Metadata struct {
	CapturedAt  *time.Time `json:"captured_at,omitempty"`
	CameraMake  string     `json:"camera_make,omitempty"`
	CameraModel string     `json:"camera_model,omitempty"`
	Orientation int        `json:"orientation,omitempty"`
}

// ReadMetadata extracts capture time and camera fields. Missing or broken
// EXIF yields an empty Metadata.
func ReadMetadata(data []byte) Metadata {
	var md Metadata

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return md
	}

	if t, err := x.DateTime(); err == nil {
		md.CapturedAt = &t
	}
	md.CameraMake = stringTag(x, exif.Make)
	md.CameraModel = stringTag(x, exif.Model)
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			md.Orientation = v
		}
	}
	return md
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return s
}
