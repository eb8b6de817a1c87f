package types

import (
	"bytes"
	"encoding/json"
)

// CodeBatch maps relative file paths to file contents. Iteration follows the
// order in which a path was first added; replacing a path keeps its position.
// Empty contents are never stored.
type CodeBatch struct {
	order []string
	files map[string]string
}

// NewCodeBatch creates an empty batch.
func NewCodeBatch() *CodeBatch {
	return &CodeBatch{files: make(map[string]string)}
}

// Set stores content for path, replacing any previous content. Empty content
// removes the path.
func (b *CodeBatch) Set(path, content string) {
	if content == "" {
		b.remove(path)
		return
	}
	if b.files == nil {
		b.files = make(map[string]string)
	}
	if _, ok := b.files[path]; !ok {
		b.order = append(b.order, path)
	}
	b.files[path] = content
}

func (b *CodeBatch) remove(path string) {
	if _, ok := b.files[path]; !ok {
		return
	}
	delete(b.files, path)
	for i, p := range b.order {
		if p == path {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Get returns the content stored for path.
func (b *CodeBatch) Get(path string) (string, bool) {
	if b == nil {
		return "", false
	}
	content, ok := b.files[path]
	return content, ok
}

// Len returns the number of files in the batch.
func (b *CodeBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// Paths returns the batch keys in iteration order.
func (b *CodeBatch) Paths() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.order...)
}

// Merge copies every entry of other into b. Entries from other win on
// collision.
func (b *CodeBatch) Merge(other *CodeBatch) {
	if other == nil {
		return
	}
	for _, path := range other.order {
		b.Set(path, other.files[path])
	}
}

// Map returns a copy of the batch as a plain map.
func (b *CodeBatch) Map() map[string]string {
	out := make(map[string]string, b.Len())
	if b == nil {
		return out
	}
	for k, v := range b.files {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the batch as a JSON object in iteration order.
func (b *CodeBatch) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, path := range b.Paths() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(path)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(b.files[path])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ProjectPlan is the structured result of a planning response.
type ProjectPlan struct {
	Name     string     `json:"project_name"`
	Tasks    []string   `json:"tasks"`
	FileSeed *CodeBatch `json:"project_structure"`
}
