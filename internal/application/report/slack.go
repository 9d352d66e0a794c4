package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/slack-go/slack"

	"github.com/lite-lake/dnswatch/internal/constants"
	"github.com/lite-lake/dnswatch/internal/domain/valueobject"
)

// Slack rejects section text longer than this many characters.
const MaxSectionText = 3000

const (
	probeHeader = "🧪 Route 53 Monitor - Test Message"
	probeBody   = "This is a test message to verify the Slack integration is working correctly.\n*Time*: "
)

type category struct {
	title   string
	changes []valueobject.RecordChange
}

func categories(cs *valueobject.ChangeSet) []category {
	return []category{
		{"*🟢 Added Records:*", cs.Added},
		{"*🟡 Modified Records:*", cs.Modified},
		{"*🔴 Deleted Records:*", cs.Deleted},
	}
}

// Header is the headline of a change report.
func Header(cs *valueobject.ChangeSet) string {
	return fmt.Sprintf("🔄 Route 53 DNS Changes Detected (%d changes)", cs.Total())
}

// Line describes one change. Modified changes are named by the new record.
func Line(c valueobject.RecordChange) string {
	r := c.Record()
	if r == nil {
		return fmt.Sprintf("• Zone: %s", c.Zone)
	}
	return fmt.Sprintf("• Zone: %s, Record: %s (%s)", c.Zone, r.Name, r.Type)
}

// Render builds the webhook payload for a change set: a header followed by
// one section per non-empty category, in added, modified, deleted order.
func Render(cs *valueobject.ChangeSet) *slack.WebhookMessage {
	if cs == nil {
		cs = valueobject.NewChangeSet()
	}

	header := Header(cs)
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, header, true, false)),
	}
	for _, cat := range categories(cs) {
		if len(cat.changes) == 0 {
			continue
		}
		lines := make([]string, len(cat.changes))
		for i, c := range cat.changes {
			lines[i] = Line(c)
		}
		text := sectionText(cat.title, lines, MaxSectionText)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil))
	}

	return &slack.WebhookMessage{
		Text:   header,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}
}

// Probe is the fixed message sent by --test.
func Probe(now time.Time) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Text: probeHeader,
		Blocks: &slack.Blocks{BlockSet: []slack.Block{
			slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, probeHeader, true, false)),
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, probeBody+now.Format(constants.LastRunLayout), false, false), nil, nil),
		}},
	}
}

// SummaryLine is one line of the plain report. Change is nil for the
// header and the category headings.
type SummaryLine struct {
	Text   string
	Change *valueobject.RecordChange
}

// Summary returns the plain report: the header and every change line,
// grouped the same way as the Slack sections.
func Summary(cs *valueobject.ChangeSet) []SummaryLine {
	if cs == nil {
		cs = valueobject.NewChangeSet()
	}
	out := []SummaryLine{{Text: Header(cs)}}
	for _, cat := range categories(cs) {
		if len(cat.changes) == 0 {
			continue
		}
		out = append(out, SummaryLine{Text: strings.Trim(cat.title, "*")})
		for i := range cat.changes {
			out = append(out, SummaryLine{Text: Line(cat.changes[i]), Change: &cat.changes[i]})
		}
	}
	return out
}

// sectionText joins title and lines, dropping trailing lines and appending
// an "… and N more" trailer when the result would exceed limit characters.
func sectionText(title string, lines []string, limit int) string {
	full := title + "\n" + strings.Join(lines, "\n")
	if utf8.RuneCountInString(full) <= limit {
		return full
	}

	reserve := utf8.RuneCountInString(moreTrailer(len(lines)))
	var b strings.Builder
	b.WriteString(title)
	size := utf8.RuneCountInString(title)
	kept := 0
	for _, line := range lines {
		n := 1 + utf8.RuneCountInString(line)
		if size+n+reserve > limit {
			break
		}
		b.WriteString("\n")
		b.WriteString(line)
		size += n
		kept++
	}
	b.WriteString(moreTrailer(len(lines) - kept))
	return b.String()
}

func moreTrailer(n int) string {
	return fmt.Sprintf("\n… and %d more", n)
}
