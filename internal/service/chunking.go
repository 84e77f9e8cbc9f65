package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"
	"golang.org/x/net/html"
)

// ChunkConfig controls how oversized text is split before embedding.
type ChunkConfig struct {
	// Size is the maximum chunk length in characters.
	Size int
	// Overlap is the number of trailing characters repeated between adjacent
	// chunks by the recursive splitter, preserving continuity across a
	// chunk boundary. Must be smaller than Size.
	Overlap int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    1200,
		Overlap: 180,
	}
}

// plainSeparators is the priority order the recursive splitter tries when
// breaking plain text: paragraph, line, sentence, clause, word, character.
var plainSeparators = []string{"\n\n", "\n", ". ", ", ", " ", ""}

// Chunker splits text into bounded-size chunks using a content-type aware
// primary splitter and a recursive character splitter as a safety net.
type Chunker struct {
	cfg ChunkConfig
}

// NewChunker creates a Chunker with the given configuration, falling back
// to defaults when the configuration is unusable.
func NewChunker(cfg ChunkConfig) *Chunker {
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size * 15 / 100
	}
	return &Chunker{cfg: cfg}
}

// Config returns the chunker's effective configuration.
func (c *Chunker) Config() ChunkConfig {
	return c.cfg
}

// Split breaks text into an ordered sequence of non-empty trimmed chunks,
// each at most Size characters long. Empty or whitespace-only input yields
// nil. Text that already fits in one chunk is returned trimmed and
// otherwise unchanged; no overlap is applied. contentType may be
// ContentTypeUnknown, in which case it is detected from the text and the
// optional file path.
func (c *Chunker) Split(text string, contentType ContentType, filePath string) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if utf8.RuneCountInString(clean) <= c.cfg.Size {
		return []string{clean}
	}

	if contentType == ContentTypeUnknown {
		contentType = DetectContentType(clean, filePath)
	}

	var chunks []string
	switch contentType {
	case ContentTypeHTML:
		chunks = splitHTMLSections(clean)
	case ContentTypeMarkdown:
		chunks = splitMarkdownSections(clean)
	default:
		chunks = c.splitRecursive(clean)
	}

	// Header-based splitting follows document structure, not size, so a
	// single section can exceed the bound. Re-split anything oversized.
	if contentType == ContentTypeHTML || contentType == ContentTypeMarkdown {
		chunks = c.splitOversized(chunks)
	}

	result := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			result = append(result, chunk)
		}
	}

	log.Debug().
		Str("content_type", string(contentType)).
		Int("text_chars", utf8.RuneCountInString(clean)).
		Int("chunks", len(result)).
		Msg("chunked text")

	return result
}

// splitRecursive breaks text into chunks of at most Size characters with
// Overlap characters of repeated context between adjacent chunks.
func (c *Chunker) splitRecursive(text string) []string {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.cfg.Size),
		textsplitter.WithChunkOverlap(c.cfg.Overlap),
		textsplitter.WithSeparators(plainSeparators),
	)

	chunks, err := splitter.SplitText(text)
	if err != nil {
		log.Warn().Err(err).Msg("recursive splitter failed, using windowed fallback")
		return c.windowSplit(text)
	}
	return chunks
}

// splitOversized re-splits any chunk longer than Size through the recursive
// splitter so that the size bound holds regardless of how unevenly the
// document's headers are distributed. Chunks already within the bound pass
// through untouched; they are never merged back together.
func (c *Chunker) splitOversized(chunks []string) []string {
	result := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > c.cfg.Size {
			result = append(result, c.splitRecursive(chunk)...)
		} else {
			result = append(result, chunk)
		}
	}
	return result
}

// windowSplit is a last-resort splitter: fixed windows of Size characters
// broken at the nearest preceding space, with Overlap characters of
// carry-over between windows.
func (c *Chunker) windowSplit(text string) []string {
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/c.cfg.Size+1)
	start := 0
	for start < len(runes) {
		end := start + c.cfg.Size
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			cut := end
			for i := end; i > start+1; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if c.cfg.Overlap > 0 && end-start > c.cfg.Overlap {
			nextStart = end - c.cfg.Overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}
	return chunks
}

// splitMarkdownSections splits markdown at level 1-3 ATX header boundaries.
// Headers are kept at the top of the section they introduce so every chunk
// carries its own context. Headers inside fenced code blocks do not split.
func splitMarkdownSections(text string) []string {
	var sections []string
	var current strings.Builder
	inCodeFence := false

	flush := func() {
		if current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeFence = !inCodeFence
		}
		if !inCodeFence && isMarkdownSectionHeader(line) {
			flush()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	return sections
}

// isMarkdownSectionHeader reports whether line is an ATX header of level
// 1 to 3. Deeper headers stay inside their parent section.
func isMarkdownSectionHeader(line string) bool {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level < 1 || level > 3 {
		return false
	}
	return level < len(line) && (line[level] == ' ' || line[level] == '\t')
}

var htmlSectionHeaders = map[string]bool{"h1": true, "h2": true, "h3": true}

// splitHTMLSections splits an HTML document at h1-h3 boundaries, extracting
// the text content of each section. Header text stays with the section it
// introduces. Script and style contents are skipped.
func splitHTMLSections(text string) []string {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		// The html parser tolerates arbitrary malformed input, so this is
		// effectively unreachable; treat the document as one section.
		return []string{text}
	}

	var sections []string
	var current strings.Builder

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			sections = append(sections, current.String())
		}
		current.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "script" || n.Data == "style":
				return
			case htmlSectionHeaders[n.Data]:
				flush()
			}
		}
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				if current.Len() > 0 {
					current.WriteString("\n")
				}
				current.WriteString(trimmed)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	flush()

	return sections
}
