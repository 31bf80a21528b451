package executor

import "strings"

var labelPrefixes = []string{
	"translation:",
	"translated text:",
	"translated:",
	"output:",
	"here is the translation:",
	"sure, here is the translation:",
}

var trailingLabels = []string{
	"\noriginal:",
	"\noriginal text:",
}

// Clean strips common model chatter from a translation: label prefixes, a
// trailing echoed "Original:" block, and source text echoed ahead of the
// result. If cleaning would keep less than a quarter of the raw output the
// raw output is returned instead, on the assumption the cleaner misfired.
func Clean(source, raw string) string {
	out := strings.TrimSpace(raw)
	if out == "" {
		return out
	}

	cleaned := stripLabels(out)
	cleaned = stripEcho(source, cleaned)
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" || len(cleaned)*4 < len(out) {
		return out
	}
	return cleaned
}

func stripLabels(text string) string {
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(text)
		for _, p := range labelPrefixes {
			if strings.HasPrefix(lower, p) {
				text = strings.TrimSpace(text[len(p):])
				changed = true
				break
			}
		}
	}

	lower := strings.ToLower(text)
	for _, label := range trailingLabels {
		if idx := strings.Index(lower, label); idx >= 0 {
			text = strings.TrimSpace(text[:idx])
			break
		}
	}
	return text
}

func stripEcho(source, text string) string {
	src := strings.TrimSpace(source)
	if src == "" || len(text) <= len(src) {
		return text
	}
	if strings.HasPrefix(text, src) {
		return strings.TrimLeft(strings.TrimSpace(text[len(src):]), ":-")
	}
	return text
}
