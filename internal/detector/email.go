package detector

import (
	"regexp"
	"strings"
	"time"
)

// Suffixes that turn an email-shaped token into a file reference.
var fileExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".bmp", ".webp",
	".json", ".js", ".ts", ".tsx", ".jsx", ".css",
	".pdf", ".docx", ".xlsx",
}

var upperSuffixPattern = regexp.MustCompile(`[A-Z]{2,}$`)

// icon@2x.png, Icon-App@3x.jpg
var iosAssetPattern = regexp.MustCompile(`@\d+x\.`)

const minEmailLocalPart = 2

func validEmail(value string, _ time.Time) bool {
	lower := strings.ToLower(value)
	if strings.HasSuffix(lower, "paris") || upperSuffixPattern.MatchString(value) {
		return false
	}
	for _, ext := range fileExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	if iosAssetPattern.MatchString(value) {
		return false
	}

	at := strings.IndexByte(value, '@')
	return at >= minEmailLocalPart
}
