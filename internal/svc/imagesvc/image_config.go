package imagesvc

// ImageConfig holds configuration parameters for the image service.
type ImageConfig struct {
	// MaxEdge is the longest edge in pixels an uploaded image may keep; larger images are downscaled
	MaxEdge int `env:"MAX_EDGE" default:"1600"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`

	// MaxBytes is the largest accepted upload before any processing
	MaxBytes int64 `env:"MAX_BYTES" default:"10485760"` // 10MiB
}
