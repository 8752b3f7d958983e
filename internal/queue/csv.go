package queue

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"postpilot/internal/domain"
)

// csvHeader is the export column layout. Import accepts the same layout, with
// the Avatar column ignored since the operator picks the target avatar.
const csvHeader = "Scheduled,Avatar,Status,Platforms,Caption,Hashtags"

// importTimeLayouts are the accepted schedule formats, tried in order.
var importTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04"}

// LineError records one rejected import line. A bad line never aborts the
// batch; it is reported and skipped.
type LineError struct {
	Line   int
	Reason string
}

func (e LineError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ExportCSV renders posts using the fixed column layout above. Platforms,
// caption and hashtags are always quoted, inner quotes doubled.
func ExportCSV(posts []domain.Post) []byte {
	var b bytes.Buffer
	b.WriteString(csvHeader)
	b.WriteByte('\n')
	for _, post := range posts {
		scheduled := ""
		if post.ScheduledAt != nil {
			scheduled = post.ScheduledAt.UTC().Format(time.RFC3339)
		}
		platforms := make([]string, len(post.Platforms))
		for i, p := range post.Platforms {
			platforms[i] = string(p)
		}
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s\n",
			scheduled,
			post.AvatarID,
			post.Status,
			quoteCSV(strings.Join(platforms, " ")),
			quoteCSV(post.Caption),
			quoteCSV(post.Hashtags),
		)
	}
	return b.Bytes()
}

func quoteCSV(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ParseCSV parses import data line by line. Each data line needs a parseable
// schedule time and a non-empty caption; anything else yields a LineError for
// that line and the import continues.
func ParseCSV(data []byte) ([]domain.Post, []LineError) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var posts []domain.Post
	var lineErrs []LineError
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line++
			lineErrs = append(lineErrs, LineError{Line: line, Reason: "unreadable line"})
			continue
		}
		if line == 0 && isHeader(record) {
			continue
		}
		line++
		post, reason := parseLine(record)
		if reason != "" {
			lineErrs = append(lineErrs, LineError{Line: line, Reason: reason})
			continue
		}
		posts = append(posts, post)
	}
	return posts, lineErrs
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "scheduled")
}

func parseLine(record []string) (domain.Post, string) {
	if len(record) < 6 {
		return domain.Post{}, "too few columns"
	}
	scheduledAt, ok := parseImportTime(record[0])
	if !ok {
		return domain.Post{}, "invalid date"
	}
	caption := strings.TrimSpace(record[4])
	if caption == "" {
		return domain.Post{}, "missing caption"
	}

	status := domain.PostStatus(strings.ToLower(strings.TrimSpace(record[2])))
	if !domain.ValidStatus(status) {
		status = domain.PostStatusScheduled
	}
	var platforms []domain.Platform
	for _, field := range strings.Fields(record[3]) {
		platforms = append(platforms, domain.Platform(strings.ToLower(field)))
	}
	return domain.Post{
		Caption:     caption,
		Hashtags:    strings.TrimSpace(record[5]),
		Platforms:   platforms,
		ContentType: domain.ContentTypeImage,
		Status:      status,
		ScheduledAt: &scheduledAt,
	}, ""
}

func parseImportTime(field string) (time.Time, bool) {
	field = strings.TrimSpace(field)
	for _, layout := range importTimeLayouts {
		if t, err := time.Parse(layout, field); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
