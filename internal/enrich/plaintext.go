package enrich

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/hitoshi/tocook/internal/security"
)

var sanitizer = security.NewContentSanitizer()

// MarkdownToText はMarkdownをHTMLに変換し、サニタイズ後のテキストノードだけを連結して返す。
func MarkdownToText(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	z := html.NewTokenizer(strings.NewReader(sanitizer.Sanitize(buf.String())))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return strings.TrimSpace(sb.String()), nil
			}
			return "", fmt.Errorf("failed to tokenize html: %w", z.Err())
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}
