package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/config"
	"github.com/mediaharvest/mediaharvest/internal/normalize"
)

var (
	inlineDatePattern   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2})`)
	metaNumberPattern   = regexp.MustCompile(`^([A-Za-z0-9\-]+)\s*`)
	magnetURIPattern    = regexp.MustCompile(`(magnet:\?xt=urn:btih:[a-zA-Z0-9]{32,40})`)
	labeledValuePattern = regexp.MustCompile(`[：:]\s*(.*)`)
)

// DetailExtractor maps a forum thread detail page into a candidate record.
type DetailExtractor struct {
	BaseURL   string
	Selectors config.ThreadDetailSelectors
	Rules     normalize.TagRules
	Log       *zap.Logger
}

// Extract parses one detail page. Missing fields stay empty; only a page
// that cannot be parsed at all fails the unit.
func (e *DetailExtractor) Extract(html, pageURL string) (Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Item{}, fmt.Errorf("parse detail page %q: %w", pageURL, err)
	}

	c := Candidate{PostURL: pageURL}
	c.PublishDate = e.extractDate(doc)

	if content, ok := doc.Find(e.Selectors.MetaKeywords).First().Attr("content"); ok {
		content = strings.TrimSpace(content)
		if m := metaNumberPattern.FindStringSubmatch(content); m != nil {
			c.ItemNumber = m[1]
			c.Title = strings.TrimSpace(content[len(m[0]):])
		} else {
			c.Title = content
		}
	}

	if container := doc.Find(e.Selectors.MagnetLink).First(); container.Length() > 0 {
		if m := magnetURIPattern.FindStringSubmatch(container.Text()); m != nil {
			c.MagnetLink = m[1]
		}
	}

	if e.Selectors.CoverImage != "" {
		if img := doc.Find(e.Selectors.CoverImage).First(); img.Length() > 0 {
			c.CoverURL = resolveURL(e.BaseURL, firstAttr(img, "file", "zoomfile", "data-src", "src"))
		}
	}

	e.extractLabeledFields(doc, &c)

	tags := normalize.ClassifyTags(c.Title, e.Rules)
	e.Log.Info("Extracted detail page", zap.String("item_number", c.ItemNumber))
	e.Log.Debug("Full extract", zap.String("url", pageURL),
		zap.String("title", c.Title), zap.Strings("tags", tags))
	return Item{Candidate: c, Tags: tags}, nil
}

// extractDate prefers the span's title attribute (full timestamp) and falls
// back to a timestamp embedded in the element text.
func (e *DetailExtractor) extractDate(doc *goquery.Document) string {
	el := doc.Find(e.Selectors.PublishTime).First()
	if el.Length() == 0 {
		return ""
	}
	raw := ""
	if title, ok := el.Find("span[title]").First().Attr("title"); ok {
		raw = strings.TrimSpace(title)
	} else if m := inlineDatePattern.FindStringSubmatch(strings.TrimSpace(el.Text())); m != nil {
		raw = m[1]
	}
	if raw == "" {
		return ""
	}
	normalized, ok := normalize.Date(raw)
	if !ok {
		e.Log.Warn("Unparseable publish date", zap.String("raw", raw))
	}
	return normalized
}

// extractLabeledFields scans the post body line by line for the configured
// size keyword and takes the value after the colon. The body is split on
// <br/> because the forum renders one field per line.
func (e *DetailExtractor) extractLabeledFields(doc *goquery.Document, c *Candidate) {
	if e.Selectors.ContentContainer == "" || e.Selectors.SizeKeyword == "" {
		return
	}
	container := doc.Find(e.Selectors.ContentContainer).First()
	if container.Length() == 0 {
		return
	}
	body, err := goquery.OuterHtml(container)
	if err != nil {
		return
	}

	sizeKeyword, err := regexp.Compile(e.Selectors.SizeKeyword)
	if err != nil {
		e.Log.Warn("Bad size_keyword pattern", zap.Error(err))
		return
	}
	for _, line := range splitHTMLLines(body) {
		plain := htmlToText(line)
		if c.FileSize == "" && sizeKeyword.MatchString(plain) {
			if m := labeledValuePattern.FindStringSubmatch(plain); m != nil {
				c.FileSize = strings.TrimSpace(m[1])
			}
		}
	}
}

func splitHTMLLines(body string) []string {
	normalized := strings.NewReplacer("<br>", "<br/>", "<br />", "<br/>").Replace(body)
	return strings.Split(normalized, "<br/>")
}

func htmlToText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

func firstAttr(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := sel.Attr(name); ok && v != "" {
			return v
		}
	}
	return ""
}
