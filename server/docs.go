package server

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkParser "github.com/yuin/goldmark/parser"
)

// docsHandler serves rendered markdown pages from the docs directory.
// Rendered pages are cached until Invalidate; in dev mode the file watcher
// invalidates on change so edits show up on the next request.
type docsHandler struct {
	dir string
	md  goldmark.Markdown

	mu    sync.RWMutex
	pages map[string][]byte
}

var docNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func newDocsHandler(dir string) *docsHandler {
	return &docsHandler{
		dir: dir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(goldmarkParser.WithAutoHeadingID()),
		),
		pages: make(map[string][]byte),
	}
}

func (d *docsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := r.PathValue("page")
	if page == "" {
		page = "index"
	}
	if !docNamePattern.MatchString(page) {
		http.NotFound(w, r)
		return
	}

	if body, ok := d.cached(page); ok {
		writeDocPage(w, body)
		return
	}

	source, err := os.ReadFile(filepath.Join(d.dir, page+".md"))
	if err != nil {
		if page == "index" {
			d.serveIndex(w)
			return
		}
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := d.md.Convert(source, &buf); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	body := docPage(page, buf.Bytes())
	d.store(page, body)
	writeDocPage(w, body)
}

// serveIndex lists the available pages when the docs dir has no index.md.
func (d *docsHandler) serveIndex(w http.ResponseWriter) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteString("<h1>Documentation</h1>\n<ul>\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "<li><a href=\"/docs/%s\">%s</a></li>\n",
			html.EscapeString(name), html.EscapeString(name))
	}
	buf.WriteString("</ul>\n")

	writeDocPage(w, docPage("docs", buf.Bytes()))
}

func (d *docsHandler) cached(page string) ([]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	body, ok := d.pages[page]
	return body, ok
}

func (d *docsHandler) store(page string, body []byte) {
	d.mu.Lock()
	d.pages[page] = body
	d.mu.Unlock()
}

// Invalidate drops all cached pages so the next request re-renders.
func (d *docsHandler) Invalidate() {
	d.mu.Lock()
	d.pages = make(map[string][]byte)
	d.mu.Unlock()
}

func writeDocPage(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// docPage wraps rendered markdown in a minimal HTML shell.
func docPage(title string, body []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("<style>body{max-width:48rem;margin:2rem auto;padding:0 1rem;font-family:system-ui,sans-serif;line-height:1.6}pre{background:#f4f4f4;padding:1rem;overflow-x:auto}code{background:#f4f4f4;padding:0 .2rem}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.3rem .6rem}</style>\n")
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}
