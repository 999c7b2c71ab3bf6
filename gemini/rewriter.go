// Package gemini implements enrich.Rewriter using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/contentloop/enrich"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// referenceExcerptLen bounds the content sample included per reference
// article; the structure signature carries the formatting information, the
// excerpt only conveys tone.
const referenceExcerptLen = 500

// Ensure Rewriter implements enrich.Rewriter at compile time.
var _ enrich.Rewriter = (*Rewriter)(nil)

// Rewriter implements enrich.Rewriter using Google Gemini.
type Rewriter struct {
	client *genai.Client
}

// NewRewriter creates a new Rewriter.
func NewRewriter(client *genai.Client) *Rewriter {
	return &Rewriter{client: client}
}

// Rewrite produces an enhanced HTML version of the article. With references
// the prompt models the rewrite on their style and structure; without, it is
// a pure formatting and clarity pass.
func (r *Rewriter) Rewrite(ctx context.Context, req enrich.RewriteRequest) (string, error) {
	if req.Title == "" {
		return "", enrich.Errorf(enrich.EINVALID, "title required")
	}
	if req.Content == "" {
		return "", enrich.Errorf(enrich.EINVALID, "content required")
	}

	var prompt string
	if len(req.References) > 0 {
		prompt = BuildReferencePrompt(req.Title, req.Content, req.References)
	} else {
		prompt = BuildFormattingPrompt(req.Title, req.Content)
	}

	result, err := r.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", enrich.Errorf(enrich.EINTERNAL, "gemini returned nil result")
	}

	text := StripCodeFence(result.Text())
	if text == "" {
		return "", enrich.Errorf(enrich.EINTERNAL, "gemini returned empty rewrite")
	}
	return text, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are an expert content writer and editor. You rewrite articles to improve their structure, clarity and engagement while preserving their core information.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildReferencePrompt builds the prompt for a rewrite modeled on reference
// articles.
func BuildReferencePrompt(title, content string, refs []*enrich.Extract) string {
	var sb strings.Builder
	sb.WriteString("Your task is to enhance and rewrite an article to match the style, formatting, and quality of top-ranking articles on this topic.\n\n")

	sb.WriteString("ORIGINAL ARTICLE:\n")
	fmt.Fprintf(&sb, "Title: %s\n", title)
	fmt.Fprintf(&sb, "Content:\n%s\n\n", content)

	sb.WriteString("REFERENCE ARTICLES (top-ranking articles for this topic):\n")
	for i, ref := range refs {
		fmt.Fprintf(&sb, "Reference Article %d:\n", i+1)
		fmt.Fprintf(&sb, "Title: %s\n", ref.Title)
		fmt.Fprintf(&sb, "Structure: %s\n", ref.Structure)
		fmt.Fprintf(&sb, "Content Sample: %s...\n\n", excerpt(ref.Text))
	}

	sb.WriteString(`INSTRUCTIONS:
1. Analyze the structure, formatting, and writing style of the reference articles
2. Rewrite the original article to match the quality and style of the reference articles
3. Maintain the core information and message of the original article
4. Improve the formatting to match the reference articles (similar heading structure, paragraph breaks)
5. Enhance the content quality, clarity, and engagement
6. Ensure the article is well-structured with proper headings (H2, H3) and paragraphs
7. Use a similar tone and writing style as the reference articles
8. At the end of the article, add a "References" section with citations to the reference articles

OUTPUT FORMAT:
- Return only the enhanced article content in HTML format
- Use proper HTML tags: <h2> for main headings, <h3> for subheadings, <p> for paragraphs
- Include a "References" section at the bottom with links to the reference articles
- Do not include any meta-commentary or explanations, just the article content

Enhanced Article:`)
	return sb.String()
}

// BuildFormattingPrompt builds the prompt for a rewrite without references,
// a formatting and clarity pass only.
func BuildFormattingPrompt(title, content string) string {
	var sb strings.Builder
	sb.WriteString("Your task is to enhance and improve an article's formatting, structure, and content quality to make it more professional, engaging, and well-organized.\n\n")

	sb.WriteString("ORIGINAL ARTICLE:\n")
	fmt.Fprintf(&sb, "Title: %s\n", title)
	fmt.Fprintf(&sb, "Content:\n%s\n\n", content)

	sb.WriteString(`INSTRUCTIONS:
1. Improve the article's structure with proper headings (H2 for main sections, H3 for subsections)
2. Enhance paragraph breaks and formatting for better readability
3. Improve the content quality, clarity, and engagement while maintaining the core message
4. Make the content more comprehensive and valuable
5. Ensure smooth transitions between sections
6. Improve the introduction and conclusion
7. Fix any grammar or spelling issues
8. Keep the original information and facts intact

OUTPUT FORMAT:
- Return only the enhanced article content in HTML format
- Use proper HTML tags: <h2> for main headings, <h3> for subheadings, <p> for paragraphs
- Do not include any meta-commentary or explanations, just the article content
- Do not add a references section (there are no reference articles)

Enhanced Article:`)
	return sb.String()
}

// excerpt truncates reference text to at most referenceExcerptLen bytes,
// backing up so a multi-byte rune is never split.
func excerpt(text string) string {
	if len(text) <= referenceExcerptLen {
		return text
	}
	cut := referenceExcerptLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// StripCodeFence removes a wrapping markdown code block from model output.
// Gemini regularly fences HTML responses despite instructions not to.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```html")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// AddCitations appends a References section linking the given reference
// articles. It is idempotent: content that already carries a references or
// sources section is returned unchanged, as is content with no references
// to cite.
func AddCitations(content string, refs []enrich.ReferenceArticle) string {
	if len(refs) == 0 {
		return content
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "references") || strings.Contains(lower, "sources") {
		return content
	}

	var sb strings.Builder
	sb.WriteString(content)
	sb.WriteString("\n<h2>References</h2>\n<ul>\n")
	for _, ref := range refs {
		fmt.Fprintf(&sb, "  <li><a href=\"%s\" target=\"_blank\" rel=\"noopener noreferrer\">%s</a></li>\n", ref.URL, ref.Title)
	}
	sb.WriteString("</ul>")
	return sb.String()
}
