package logs

import "strings"

const detailPrefix = "    "

// Record is one run log entry.
type Record struct {
	Header  string
	Details []string
}

// Lines returns the record as it appears in the file.
func (r Record) Lines() []string {
	lines := make([]string, 0, len(r.Details)+1)
	if r.Header != "" {
		lines = append(lines, r.Header)
	}
	return append(lines, r.Details...)
}

// Contains reports whether any line of the record contains substr. An empty
// substr matches every record.
func (r Record) Contains(substr string) bool {
	if substr == "" {
		return true
	}
	if strings.Contains(r.Header, substr) {
		return true
	}
	for _, d := range r.Details {
		if strings.Contains(d, substr) {
			return true
		}
	}
	return false
}

func isDetail(line string) bool {
	return strings.HasPrefix(line, detailPrefix)
}

// grouper assembles lines into records. Detail lines seen before any header
// form a record with an empty header.
type grouper struct {
	current *Record
	emit    func(Record)
}

func (g *grouper) add(line string) {
	if isDetail(line) {
		if g.current == nil {
			g.current = &Record{}
		}
		g.current.Details = append(g.current.Details, line)
		return
	}
	g.flush()
	g.current = &Record{Header: line}
}

func (g *grouper) flush() {
	if g.current != nil {
		g.emit(*g.current)
		g.current = nil
	}
}
