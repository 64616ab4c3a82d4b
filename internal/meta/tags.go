package meta

import (
	"regexp"
	"strings"
)

var (
	bracketTagRe  = regexp.MustCompile(`\[([^\]]+)\]`)
	tagSanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// ExtractTags derives grouping tags from an ad name. Two naming
// conventions are recognized: a " - tag" suffix and "[tag]" brackets.
// When neither matches, the sanitized name itself becomes the tag so every
// ad groups somewhere. Tags are lowercased and deduplicated, order
// preserved.
func ExtractTags(adName string) []string {
	var tags []string

	if strings.Contains(adName, " - ") {
		parts := strings.Split(adName, " - ")
		if tag := strings.ToLower(strings.TrimSpace(parts[len(parts)-1])); tag != "" {
			tags = append(tags, tag)
		}
	}

	for _, m := range bracketTagRe.FindAllStringSubmatch(adName, -1) {
		if tag := strings.ToLower(strings.TrimSpace(m[1])); tag != "" {
			tags = append(tags, tag)
		}
	}

	if len(tags) == 0 && adName != "" {
		fallback := tagSanitizeRe.ReplaceAllString(strings.ToLower(adName), "_")
		if len(fallback) > 30 {
			fallback = fallback[:30]
		}
		tags = append(tags, fallback)
	}

	return dedupeTags(tags)
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
