package overlay

import (
	"encoding/json"
	"maps"
	"os"
)

// Context is the last captured external context (clipboard selection plus
// the URL or window title it came from).
type Context struct {
	URL       string  `json:"url"`
	Selection string  `json:"selection"`
	TS        float64 `json:"ts"`
}

// ContextFile reads and writes the context snapshot document.
type ContextFile struct {
	path string
}

func NewContextFile(path string) *ContextFile {
	return &ContextFile{path: path}
}

func (c *ContextFile) Write(url, selection string) error {
	return writeDoc(c.path, Context{URL: url, Selection: selection, TS: now()})
}

// WriteRaw replaces the document with an arbitrary JSON object, stamping ts.
// The caller's map is left untouched.
func (c *ContextFile) WriteRaw(doc map[string]any) error {
	if _, ok := doc["ts"]; !ok {
		doc = maps.Clone(doc)
		doc["ts"] = now()
	}
	return writeDoc(c.path, doc)
}

func (c *ContextFile) Read() Context {
	var ctx Context
	data, err := os.ReadFile(c.path)
	if err != nil {
		return Context{}
	}
	if err := json.Unmarshal(data, &ctx); err != nil {
		return Context{}
	}
	return ctx
}
