package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/switcher/pkg/tree"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the structure and laid-out sizes of the tree.
type Snapshot struct {
	Tree *SnapshotNode `json:"tree"`
}

// SnapshotNode is one node of a serialized tree.
type SnapshotNode struct {
	ID        string          `json:"id"`
	Classes   []string        `json:"classes,omitempty"`
	Inert     bool            `json:"inert,omitempty"`
	Size      [2]float64      `json:"size"`
	MaxWidth  string          `json:"maxWidth,omitempty"`
	MaxHeight string          `json:"maxHeight,omitempty"`
	Children  []*SnapshotNode `json:"children,omitempty"`
}

// CaptureSnapshot captures the current document.
func (t *Tester) CaptureSnapshot() *Snapshot {
	return CaptureNode(t.doc.Root())
}

// CaptureNode captures the subtree rooted at n. Node ids are assigned per
// tag in traversal order ("box#0", "box#1"), so they are stable across runs.
func CaptureNode(n *tree.Node) *Snapshot {
	counter := &tagCounter{}
	return &Snapshot{Tree: captureDescription(n.Describe(), counter)}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When SWITCHER_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("SWITCHER_UPDATE_SNAPSHOTS") == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: SWITCHER_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s (-expected +actual)\n%s\n\nTo update: SWITCHER_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a structural diff from other to s. Returns empty string if
// equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	return cmp.Diff(other, s)
}

// --- Internal ---

type tagCounter struct {
	counts map[string]int
}

func (c *tagCounter) next(tag string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[tag]
	c.counts[tag] = n + 1
	return fmt.Sprintf("%s#%d", tag, n)
}

func captureDescription(d tree.Description, counter *tagCounter) *SnapshotNode {
	node := &SnapshotNode{
		ID:        counter.next(d.Tag),
		Classes:   d.Classes,
		Inert:     d.Inert,
		Size:      [2]float64{round2(d.Size.Width), round2(d.Size.Height)},
		MaxWidth:  d.MaxWidth,
		MaxHeight: d.MaxHeight,
	}
	for _, child := range d.Children {
		node.Children = append(node.Children, captureDescription(child, counter))
	}
	return node
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
