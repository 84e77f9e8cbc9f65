package service

import (
	"path/filepath"
	"regexp"
	"strings"
)

// ContentType selects the chunking strategy for a text blob.
type ContentType string

const (
	// ContentTypeUnknown means "not supplied"; the chunker resolves it via
	// DetectContentType before dispatching to a splitter.
	ContentTypeUnknown  ContentType = ""
	ContentTypeHTML     ContentType = "html"
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypePlain    ContentType = "plain"
)

const (
	// heuristicSampleSize bounds classification cost: scoring the head of a
	// large document is sufficient to identify its format.
	heuristicSampleSize = 5000
	// highConfidenceThreshold is the heuristic score at which the heuristic
	// answer overrides a plain-text file extension.
	highConfidenceThreshold = 0.8
	// minHeuristicScore is the floor below which neither HTML nor Markdown
	// is trusted and the text is treated as plain.
	minHeuristicScore = 0.3
)

// HTML scoring weights.
const (
	htmlWeightDoctype       = 0.4
	htmlWeightHTMLTag       = 0.3
	htmlWeightStructuralTag = 0.1
	htmlWeightHeaderTag     = 0.15
	htmlWeightClosingTag    = 0.1
	htmlMaxStructuralHits   = 5
)

// Markdown scoring weights.
const (
	mdWeightHeadersStrong   = 0.35 // >= 3 ATX headers
	mdWeightHeadersWeak     = 0.2  // >= 1 ATX header
	mdWeightLinksStrong     = 0.25 // >= 2 links
	mdWeightLinksWeak       = 0.15 // >= 1 link
	mdWeightCodeFence       = 0.2
	mdWeightInlineCode      = 0.1
	mdWeightListItemsStrong = 0.15 // >= 3 list items
	mdWeightListItemsWeak   = 0.08 // >= 1 list item
	mdWeightBoldItalic      = 0.1
	mdWeightBlockquote      = 0.1
)

var extensionContentTypes = map[string]ContentType{
	".html":  ContentTypeHTML,
	".htm":   ContentTypeHTML,
	".xhtml": ContentTypeHTML,

	".md":       ContentTypeMarkdown,
	".markdown": ContentTypeMarkdown,
	".mdown":    ContentTypeMarkdown,
	".mkd":      ContentTypeMarkdown,

	".txt":  ContentTypePlain,
	".text": ContentTypePlain,

	// Source code and data files are chunked as plain text.
	".py":   ContentTypePlain,
	".js":   ContentTypePlain,
	".ts":   ContentTypePlain,
	".java": ContentTypePlain,
	".c":    ContentTypePlain,
	".cpp":  ContentTypePlain,
	".go":   ContentTypePlain,
	".rs":   ContentTypePlain,
	".rb":   ContentTypePlain,
	".php":  ContentTypePlain,
	".sh":   ContentTypePlain,
	".bash": ContentTypePlain,
	".zsh":  ContentTypePlain,
	".sql":  ContentTypePlain,
	".json": ContentTypePlain,
	".yaml": ContentTypePlain,
	".yml":  ContentTypePlain,
	".xml":  ContentTypePlain,
	".csv":  ContentTypePlain,
	".tsv":  ContentTypePlain,
}

var (
	htmlDoctypeRe    = regexp.MustCompile(`(?i)<!DOCTYPE\s+html`)
	htmlOpenTagRe    = regexp.MustCompile(`(?i)<html[\s>]`)
	htmlHeaderTagRe  = regexp.MustCompile(`(?i)<h[1-6][\s>]`)
	htmlClosingTagRe = regexp.MustCompile(`</\w+>`)

	mdHeaderRe     = regexp.MustCompile(`(?m)^#{1,6}\s+.+`)
	mdLinkRe       = regexp.MustCompile(`\[.+?\]\(.+?\)`)
	mdCodeFenceRe  = regexp.MustCompile("(?m)^```")
	mdInlineCodeRe = regexp.MustCompile("`[^`]+`")
	mdBulletRe     = regexp.MustCompile(`(?m)^[*\-+]\s+`)
	mdNumberedRe   = regexp.MustCompile(`(?m)^\d+\.\s+`)
	mdBoldItalicRe = regexp.MustCompile(`\*\*.+?\*\*|__.+?__`)
	mdBlockquoteRe = regexp.MustCompile(`(?m)^>\s+`)
)

var htmlStructuralTags = []string{"<head", "<body", "<div", "<span", "<p>", "<table", "<form"}

// DetectContentType classifies text as HTML, Markdown or plain using the
// file extension (primary) and content heuristics (fallback). Heuristics
// override the extension only when the extension maps to plain text and the
// heuristic confidence is high; this protects against mislabeled .txt files
// that actually contain markup. Never fails: always returns a concrete type.
func DetectContentType(text, filePath string) ContentType {
	extensionType, hasExtensionType := detectContentTypeFromExtension(filePath)
	heuristicType, confidence := detectContentTypeFromHeuristics(text)

	if !hasExtensionType {
		return heuristicType
	}

	if extensionType == ContentTypePlain && confidence >= highConfidenceThreshold {
		return heuristicType
	}

	return extensionType
}

func detectContentTypeFromExtension(filePath string) (ContentType, bool) {
	if filePath == "" {
		return ContentTypeUnknown, false
	}
	ct, ok := extensionContentTypes[strings.ToLower(filepath.Ext(filePath))]
	return ct, ok
}

// detectContentTypeFromHeuristics scores the text sample for HTML and
// Markdown signals and returns the winning type with its confidence.
func detectContentTypeFromHeuristics(text string) (ContentType, float64) {
	if len(text) < 10 {
		return ContentTypePlain, 0.5
	}

	sample := text
	if len(sample) > heuristicSampleSize {
		sample = sample[:heuristicSampleSize]
	}

	htmlScore := calculateHTMLScore(sample)
	if htmlScore >= highConfidenceThreshold {
		return ContentTypeHTML, htmlScore
	}

	markdownScore := calculateMarkdownScore(sample)
	if markdownScore >= highConfidenceThreshold {
		return ContentTypeMarkdown, markdownScore
	}

	switch {
	case htmlScore > markdownScore && htmlScore > minHeuristicScore:
		return ContentTypeHTML, htmlScore
	case markdownScore > minHeuristicScore:
		return ContentTypeMarkdown, markdownScore
	default:
		return ContentTypePlain, 0.6
	}
}

func calculateHTMLScore(text string) float64 {
	score := 0.0

	if htmlDoctypeRe.MatchString(text) {
		score += htmlWeightDoctype
	}
	if htmlOpenTagRe.MatchString(text) {
		score += htmlWeightHTMLTag
	}

	lower := strings.ToLower(text)
	structuralHits := 0
	for _, tag := range htmlStructuralTags {
		if strings.Contains(lower, tag) {
			score += htmlWeightStructuralTag
			structuralHits++
			if structuralHits >= htmlMaxStructuralHits {
				break
			}
		}
	}

	if htmlHeaderTagRe.MatchString(text) {
		score += htmlWeightHeaderTag
	}
	if htmlClosingTagRe.MatchString(text) {
		score += htmlWeightClosingTag
	}

	return min(score, 1.0)
}

func calculateMarkdownScore(text string) float64 {
	score := 0.0

	headerMatches := len(mdHeaderRe.FindAllString(text, -1))
	switch {
	case headerMatches >= 3:
		score += mdWeightHeadersStrong
	case headerMatches >= 1:
		score += mdWeightHeadersWeak
	}

	linkMatches := len(mdLinkRe.FindAllString(text, -1))
	switch {
	case linkMatches >= 2:
		score += mdWeightLinksStrong
	case linkMatches >= 1:
		score += mdWeightLinksWeak
	}

	if mdCodeFenceRe.MatchString(text) {
		score += mdWeightCodeFence
	}
	if mdInlineCodeRe.MatchString(text) {
		score += mdWeightInlineCode
	}

	listMatches := len(mdBulletRe.FindAllString(text, -1)) + len(mdNumberedRe.FindAllString(text, -1))
	switch {
	case listMatches >= 3:
		score += mdWeightListItemsStrong
	case listMatches >= 1:
		score += mdWeightListItemsWeak
	}

	if mdBoldItalicRe.MatchString(text) {
		score += mdWeightBoldItalic
	}
	if mdBlockquoteRe.MatchString(text) {
		score += mdWeightBlockquote
	}

	return min(score, 1.0)
}
