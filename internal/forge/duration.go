package forge

import "regexp"

var durationPattern = regexp.MustCompile(`^(\d+mo)?(\d+w)?(\d+d)?(\d+h)?(\d+m)?$`)

// ValidDuration reports whether s is a GitLab time tracking duration such as
// "1mo2w", "4d10h" or "30m". Units must appear in descending order.
func ValidDuration(s string) bool {
	return s != "" && durationPattern.MatchString(s)
}
