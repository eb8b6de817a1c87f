package changetracker

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// NumberOfContextLines is the number of unchanged lines around each hunk.
const NumberOfContextLines = 3

// FileChange is the before/after content of one path.
type FileChange struct {
	Path   string
	Before string
	After  string
}

// FileStats counts the lines added and removed for one path.
type FileStats struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// splitLines splits text the way Python's splitlines(keepends=True) does,
// terminating the last line with a newline so hunks stay well formed.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "\n") {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}

// GetDiff returns the unified diff of one file with a/ and b/ headers. It is
// empty when the contents are equal.
func GetDiff(path, before, after string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  NumberOfContextLines,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", path, err)
	}
	return text, nil
}

// CombinedDiff concatenates the diffs of every change in order.
func CombinedDiff(changes []FileChange) (string, error) {
	var sb strings.Builder
	for _, c := range changes {
		text, err := GetDiff(c.Path, c.Before, c.After)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// GetStats counts added and removed lines using a line-mode diff.
func GetStats(path, before, after string) FileStats {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(terminate(before), terminate(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	stats := FileStats{Path: path}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.Additions += strings.Count(d.Text, "\n")
		case diffmatchpatch.DiffDelete:
			stats.Deletions += strings.Count(d.Text, "\n")
		}
	}
	return stats
}

func terminate(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

var (
	headerColor   = color.New(color.Bold, color.FgYellow)
	hunkColor     = color.New(color.FgCyan)
	addColor      = color.New(color.FgGreen)
	deleteColor   = color.New(color.FgRed)
	addStatColor  = color.New(color.Bold, color.FgGreen)
	delStatColor  = color.New(color.Bold, color.FgRed)
	fileNameColor = color.New(color.Bold, color.FgYellow)
)

// Colorize paints a unified diff for a terminal. color.NoColor turns it
// into a no-op.
func Colorize(diff string) string {
	if diff == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = headerColor.Sprint(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkColor.Sprint(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addColor.Sprint(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = deleteColor.Sprint(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// StatsLine renders "path +N -M" for a change summary.
func StatsLine(s FileStats) string {
	var sb strings.Builder
	sb.WriteString(fileNameColor.Sprint(s.Path))
	if s.Additions > 0 {
		sb.WriteString(" " + addStatColor.Sprintf("+%d", s.Additions))
	}
	if s.Deletions > 0 {
		sb.WriteString(" " + delStatColor.Sprintf("-%d", s.Deletions))
	}
	if s.Additions == 0 && s.Deletions == 0 {
		sb.WriteString(" (unchanged)")
	}
	return sb.String()
}
