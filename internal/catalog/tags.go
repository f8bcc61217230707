package catalog

import "strings"

const tagSeparator = ","

// encodeTags joins tags for the products.tags column.
func encodeTags(tags []string) string {
	return strings.Join(tags, tagSeparator)
}

// decodeTags splits the stored column back into a list; empty input yields
// an empty, non-nil list.
func decodeTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, tagSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// cleanTags trims tags and drops blanks. ok is false when a tag contains the
// separator and therefore could not be stored faithfully.
func cleanTags(tags []string) (out []string, ok bool) {
	out = make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if strings.Contains(t, tagSeparator) {
			return nil, false
		}
		out = append(out, t)
	}
	return out, true
}
