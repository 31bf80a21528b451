package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize canonicalizes text before fingerprinting so that transport
// artifacts (CRLF, surrounding whitespace) don't split cache identity.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

// Fingerprint derives the deterministic cache key. An empty source language
// hashes as "auto" so auto-detected and unspecified sources share entries.
// The glossary fingerprint is appended only when present; glossary-free
// requests therefore share keys globally across tenants.
func Fingerprint(text, sourceLang, targetLang, glossaryFp string) string {
	if sourceLang == "" {
		sourceLang = "auto"
	}

	var b strings.Builder
	b.WriteString(Normalize(text))
	b.WriteString("|")
	b.WriteString(sourceLang)
	b.WriteString("|")
	b.WriteString(targetLang)
	if glossaryFp != "" {
		b.WriteString("|g:")
		b.WriteString(glossaryFp)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
