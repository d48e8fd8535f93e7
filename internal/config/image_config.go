package config

type ImageConfig interface {
	GetCategoryImageBounds() ImageBounds
	GetTournamentImageBounds() ImageBounds
	GetCloudinaryCloudName() string
}

// ImageBounds describes the resize preset applied before an image is uploaded inline.
type ImageBounds struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64 // 0-1, JPEG quality
}

type Images struct{}

var _ ImageConfig = Images{}

func (Images) GetCategoryImageBounds() ImageBounds {
	return ImageBounds{MaxWidth: 800, MaxHeight: 800, Quality: 0.8}
}

func (Images) GetTournamentImageBounds() ImageBounds {
	return ImageBounds{MaxWidth: 1200, MaxHeight: 1200, Quality: 0.7}
}

func (Images) GetCloudinaryCloudName() string {
	return GetEnv("CLOUDINARY_CLOUD_NAME", "academy")
}
