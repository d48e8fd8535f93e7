package images

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	cloudinaryHost = "cloudinary.com"
	placeholderURL = "https://via.placeholder.com/300"
)

var (
	versionSegment   = regexp.MustCompile(`^v\d+$`)
	transformSegment = regexp.MustCompile(`^[a-z]{1,3}_[^,/]+(?:,[a-z]{1,3}_[^,/]+)*$`)
)

// CloudinaryOptions are the delivery transformations understood by CloudinaryURL.
type CloudinaryOptions struct {
	CloudName string
	Width     int
	Height    int
	Crop      string
	Quality   string
}

// CloudinaryURL builds the delivery URL of an uploaded image, "" for an empty id.
func CloudinaryURL(publicID string, opts CloudinaryOptions) string {
	if publicID == "" {
		return ""
	}

	var t []string
	if opts.Width > 0 {
		t = append(t, fmt.Sprintf("w_%d", opts.Width))
	}
	if opts.Height > 0 {
		t = append(t, fmt.Sprintf("h_%d", opts.Height))
	}
	if opts.Crop != "" {
		t = append(t, "c_"+opts.Crop)
	}
	if opts.Quality != "" {
		t = append(t, "q_"+opts.Quality)
	}

	url := fmt.Sprintf("https://res.%s/%s/image/upload", cloudinaryHost, opts.CloudName)
	if len(t) > 0 {
		url += "/" + strings.Join(t, ",")
	}
	return url + "/" + publicID
}

func IsCloudinaryURL(url string) bool {
	return strings.Contains(url, cloudinaryHost)
}

// ExtractPublicID returns the folder qualified public id of a Cloudinary URL,
// without transformations, version or extension.
func ExtractPublicID(url string) (string, bool) {
	if !IsCloudinaryURL(url) {
		return "", false
	}
	_, rest, ok := strings.Cut(url, "/image/upload/")
	if !ok {
		return "", false
	}
	rest, _, _ = strings.Cut(rest, "?")

	parts := strings.Split(strings.Trim(rest, "/"), "/")
	versionAt := -1
	for i, p := range parts {
		if versionSegment.MatchString(p) {
			versionAt = i
			break
		}
	}
	if versionAt >= 0 {
		parts = parts[versionAt+1:]
	} else {
		for len(parts) > 1 && transformSegment.MatchString(parts[0]) {
			parts = parts[1:]
		}
	}
	if len(parts) == 0 || parts[0] == "" {
		return "", false
	}

	last := parts[len(parts)-1]
	if i := strings.LastIndex(last, "."); i > 0 {
		parts[len(parts)-1] = last[:i]
	}
	return strings.Join(parts, "/"), true
}

func PlaceholderURL() string {
	return placeholderURL
}
