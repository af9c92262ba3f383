package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

var (
	hashtagPattern = regexp.MustCompile(`#([A-Za-z0-9_]+)`)
	mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)
	scriptPattern  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	markupPattern  = regexp.MustCompile(`<[^>]*>`)
)

// ExtractHashtags returns the hashtags of content lowercased, without '#',
// deduplicated in order of first appearance.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	tags := lo.Map(matches, func(m []string, _ int) string { return strings.ToLower(m[1]) })
	return lo.Uniq(tags)
}

// ExtractMentions returns the usernames mentioned in content, without '@',
// deduplicated in order of first appearance.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	return lo.Uniq(lo.Map(matches, func(m []string, _ int) string { return m[1] }))
}

// SanitizeText strips script blocks and markup tags. Whitespace is kept, so
// the stored text is what the user wrote minus markup.
func SanitizeText(s string) string {
	s = scriptPattern.ReplaceAllString(s, "")
	return markupPattern.ReplaceAllString(s, "")
}

// lengthBetween counts characters, not bytes.
func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}
