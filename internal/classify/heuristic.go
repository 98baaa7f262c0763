// Package classify decides whether a browser tab belongs to the focus topic.
package classify

import (
	"net/url"
	"strings"

	"modeon/internal/core/model"
)

var defaultRelatedWords = map[string][]string{
	"react":           {"javascript", "frontend", "hooks", "next.js", "redux", "jsx", "reactjs", "components", "state", "props"},
	"python":          {"flask", "django", "machine learning", "numpy", "pandas", "python3", "data science", "automation"},
	"ai":              {"artificial intelligence", "machine learning", "neural network", "deep learning", "llm", "gpt", "transformer", "computer vision"},
	"javascript":      {"js", "ecmascript", "node.js", "frontend", "typescript", "es6", "web development"},
	"coding":          {"programming", "development", "algorithm", "github", "stackoverflow", "debugging", "software engineering", "code review"},
	"web development": {"html", "css", "javascript", "frontend", "backend", "fullstack", "web design", "responsive design"},
	"database":        {"sql", "mysql", "mongodb", "postgresql", "queries", "schema", "indexing"},
	"android":         {"kotlin", "java", "mobile development", "android studio", "sdk", "app development"},
}

var educationalPatterns = []string{
	"tutorial", "course", "lesson", "guide", "how to", "training",
	"introduction", "fundamentals", "explained", "basics", "docs",
}

// Video sites are distracting unless the tab looks educational.
var videoSites = []string{"youtube.com", "youtu.be"}

var defaultDistractionSites = []string{
	"netflix.com", "twitter.com", "x.com", "facebook.com", "instagram.com", "tiktok.com", "reddit.com",
}

var internalPrefixes = []string{"chrome://", "about:", "chrome-extension://", "moz-extension://", "edge://"}

// Options extends the built-in tables.
type Options struct {
	DistractionSites []string
	RelatedWords     map[string][]string
}

// Heuristic is a keyword and domain based Classifier.
type Heuristic struct {
	distraction map[string]struct{}
	video       map[string]struct{}
	related     map[string][]string
}

// New builds a Heuristic with the built-in tables merged with options.
func New(options Options) *Heuristic {
	heuristic := &Heuristic{
		distraction: make(map[string]struct{}),
		video:       make(map[string]struct{}),
		related:     make(map[string][]string, len(defaultRelatedWords)+len(options.RelatedWords)),
	}
	for _, site := range defaultDistractionSites {
		heuristic.distraction[site] = struct{}{}
	}
	for _, site := range options.DistractionSites {
		if site = normalizeHost(site); site != "" {
			heuristic.distraction[site] = struct{}{}
		}
	}
	for _, site := range videoSites {
		heuristic.video[site] = struct{}{}
	}
	for word, related := range defaultRelatedWords {
		heuristic.related[word] = related
	}
	for word, related := range options.RelatedWords {
		word = strings.ToLower(strings.TrimSpace(word))
		for _, entry := range related {
			heuristic.related[word] = append(heuristic.related[word], strings.ToLower(entry))
		}
	}
	return heuristic
}

// IsOnTopic reports whether tab matches any of focusWords. Related words are
// looked up for every focus word, the whole keyword included.
func (heuristic *Heuristic) IsOnTopic(tab model.Tab, focusWords []string) bool {
	if len(focusWords) == 0 || isInternal(tab.URL) {
		return false
	}
	text := strings.ToLower(tab.Title + " " + tab.URL)

	host := hostOf(tab.URL)
	if _, ok := heuristic.distraction[host]; ok {
		return false
	}
	if _, ok := heuristic.video[host]; ok && !matchesAny(text, focusWords) && !matchesAny(text, educationalPatterns) {
		return false
	}

	// Focus words carry no short tokens except the whole keyword, which
	// always matches directly.
	for _, word := range focusWords {
		if strings.Contains(text, word) {
			return true
		}
		if matchesAny(text, heuristic.related[word]) {
			return true
		}
	}
	return matchesAny(text, educationalPatterns)
}

func isInternal(rawURL string) bool {
	if strings.TrimSpace(rawURL) == "" {
		return true
	}
	for _, prefix := range internalPrefixes {
		if strings.HasPrefix(rawURL, prefix) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return normalizeHost(parsed.Hostname())
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "www.")
	return strings.TrimPrefix(host, "m.")
}

func matchesAny(text string, words []string) bool {
	for _, word := range words {
		if word != "" && strings.Contains(text, word) {
			return true
		}
	}
	return false
}
