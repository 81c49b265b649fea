package model

const (
	MaxPostImageSizeBytes    = 2 * 1024 * 1024
	MaxPostImageDimension    = 4096
	MaxProfileImageSizeBytes = 2 * 1024 * 1024
	MaxProfileImageDimension = 4096
	ProfileImageSize         = 400
	PostImageFolder          = "posts"
	ProfileImageFolder       = "profiles"
	ImageCacheControl        = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeBMP  = "image/bmp"
	ContentTypeTIFF = "image/tiff"
)

var imageExtensions = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypePNG:  ".png",
	ContentTypeGIF:  ".gif",
	ContentTypeBMP:  ".bmp",
	ContentTypeTIFF: ".tiff",
}

// ImageUpload is an image file received from a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// UploadResult represents the uploaded object location
// URL is the public-facing URL, Key is the object key inside the bucket.
type UploadResult struct {
	URL string
	Key string
}

// ImageExtension returns the file extension for a supported content type.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := imageExtensions[contentType]
	return ext, ok
}

// ErrUploadsDisabled is returned for image uploads when no media store is configured.
var ErrUploadsDisabled = NewValidationError("image", "image uploads are not configured")
