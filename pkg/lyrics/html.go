package lyrics

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is what ExtractHTML recovers from a lyric page.
type Page struct {
	Title  string
	Artist string
	Lyrics string
}

// Page titles look like "Artist – Song Title | Site Lyrics".
var rePageTitle = regexp.MustCompile(`^(.+?)\s*[–-]\s*(.+?)\s*\|`)

// ExtractHTML parses a lyric page and collects the text of every
// data-lyrics-container element, turning <br> into newlines. Lyrics is empty
// when the page has no such container; callers can fall back to generic
// article extraction.
func ExtractHTML(r io.Reader) (Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	var (
		page      Page
		parts     []string
		pageTitle string
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.DataAtom == atom.Div && attr(n, "data-lyrics-container") == "true":
				var b strings.Builder
				renderText(&b, n)
				parts = append(parts, b.String())
				return
			case n.DataAtom == atom.Title && pageTitle == "":
				pageTitle = strings.TrimSpace(textOf(n))
			case n.DataAtom == atom.H1 && page.Title == "":
				page.Title = strings.TrimSpace(textOf(n))
			case n.DataAtom == atom.A && page.Artist == "" && strings.Contains(attr(n, "class"), "SongHeader"):
				page.Artist = strings.TrimSpace(textOf(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if page.Title == "" || page.Artist == "" {
		if m := rePageTitle.FindStringSubmatch(pageTitle); m != nil {
			if page.Artist == "" {
				page.Artist = strings.TrimSpace(m[1])
			}
			if page.Title == "" {
				page.Title = strings.TrimSuffix(strings.TrimSpace(m[2]), " Lyrics")
			}
		}
	}
	page.Lyrics = StripScrapeNoise(strings.Join(parts, "\n"))
	return page, nil
}

// ExtractPage reads a whole page and extracts its lyrics. Pages without
// lyric containers are run through readability and the article text is used
// instead.
func ExtractPage(r io.Reader, pageURL *url.URL) (Page, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Page{}, fmt.Errorf("read page: %w", err)
	}
	body = StripRuby(body)
	page, err := ExtractHTML(bytes.NewReader(body))
	if err != nil {
		return Page{}, err
	}
	if page.Lyrics != "" {
		return page, nil
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("readability: %w", err)
	}
	if page.Title == "" {
		page.Title = strings.TrimSpace(article.Title)
	}
	if page.Artist == "" {
		page.Artist = strings.TrimSpace(article.Byline)
	}
	page.Lyrics = StripScrapeNoise(article.TextContent)
	return page, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	renderText(&b, n)
	return b.String()
}

// renderText writes the text below n. <br> and block elements become line
// breaks; script and style content is skipped.
func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			b.WriteByte('\n')
			return
		case atom.Script, atom.Style, atom.Rt, atom.Rp:
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.P, atom.Div, atom.Li:
			b.WriteByte('\n')
		}
	}
}
