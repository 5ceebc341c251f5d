package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies the engine's canonical text normalization: NFC
// Unicode normalization, CRLF -> LF, and trimming trailing whitespace
// per line. Fingerprinting and caching both operate on normalized text
// so that cosmetically distinct inputs (line-ending style, a trailing
// space) still hit the cache.
func Normalize(text string) string {
	nfc := norm.NFC.String(text)
	nfc = strings.ReplaceAll(nfc, "\r\n", "\n")

	lines := strings.Split(nfc, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}

// Fingerprint computes the cache key for a validation request:
// lowercase hex SHA-256 of NFC(text) + "\x1f" + document_type + "\x1f" +
// "\x1e".join(sorted(modules)).
func Fingerprint(text, documentType string, moduleIDs []string) string {
	sorted := make([]string, len(moduleIDs))
	copy(sorted, moduleIDs)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(Normalize(text)))
	h.Write([]byte{0x1f})
	h.Write([]byte(documentType))
	h.Write([]byte{0x1f})
	h.Write([]byte(strings.Join(sorted, "\x1e")))
	return hex.EncodeToString(h.Sum(nil))
}
