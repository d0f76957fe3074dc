package masking

import "strings"

const (
	placeholderDefault = "images/default_unpurchased_image_en.png"
	placeholderMyanmar = "images/default_unpurchased_image_my.png"
)

// ImagePlaceholder returns the locked-image reference for a language, under
// staticURL. Only "my" has its own artwork; every other language gets the
// default one. The real image is never consulted.
func ImagePlaceholder(staticURL, lang string) string {
	name := placeholderDefault
	if strings.EqualFold(lang, "my") {
		name = placeholderMyanmar
	}
	if staticURL == "" {
		return "/" + name
	}
	return strings.TrimRight(staticURL, "/") + "/" + name
}
