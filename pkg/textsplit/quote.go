// Package textsplit separates the freshly written part of a mail body from
// its quoted history and cuts oversized text into boundary-respecting chunks.
package textsplit

import (
	"regexp"
	"strings"
)

// Quote-introduction markers, client specific. The earliest match wins.
var quoteMarkers = []*regexp.Regexp{
	// "On Mon, Jan 2, 2006 at 3:04 PM, Jane Doe <jane@example.com> wrote:"
	regexp.MustCompile(`(?m)^On .{0,200}wrote:[ \t]*$`),
	// "Am 02.01.2006 um 15:04 schrieb Jane Doe:"
	regexp.MustCompile(`(?m)^Am .{0,200}schrieb .{0,200}:[ \t]*$`),
	regexp.MustCompile(`(?mi)^-{2,}[ \t]*Original Message[ \t]*-{2,}`),
	regexp.MustCompile(`(?mi)^-{2,}[ \t]*Forwarded message[ \t]*-{2,}`),
	// Structured Outlook-style header block.
	regexp.MustCompile(`(?m)^From:[ \t].+\r?\n(?:Sent|Date):[ \t].+`),
}

const quotedLineRun = 3

// Split cuts a raw body into the latest content and the quoted history.
// Everything before the earliest recognized marker is latest content; the
// marker itself and everything after it is quoted. The two halves always
// reassemble to the exact input. No marker means the whole body is latest.
func Split(rawBody string) (latest string, quoted string) {
	cut := len(rawBody)

	for _, re := range quoteMarkers {
		if loc := re.FindStringIndex(rawBody); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}

	if idx := quotedRunStart(rawBody); idx >= 0 && idx < cut {
		cut = idx
	}

	return rawBody[:cut], rawBody[cut:]
}

// quotedRunStart returns the byte offset of the first line of the earliest
// run of at least quotedLineRun consecutive ">"-prefixed lines, or -1.
func quotedRunStart(body string) int {
	offset := 0
	run := 0
	runStart := -1

	for _, line := range strings.SplitAfter(body, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), ">") {
			if run == 0 {
				runStart = offset
			}
			run++
			if run >= quotedLineRun {
				return runStart
			}
		} else {
			run = 0
			runStart = -1
		}
		offset += len(line)
	}
	return -1
}
