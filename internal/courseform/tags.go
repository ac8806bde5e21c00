package courseform

import "strings"

// TagSeparator joins tags when a course is loaded back into the form.
const TagSeparator = ", "

// ParseTags splits a comma separated string, trimming entries and dropping empty ones.
// It never returns nil.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// JoinTags is the inverse of ParseTags for trimmed, comma free tags.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}
