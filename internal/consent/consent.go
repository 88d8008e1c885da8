// Package consent holds the local-data disclosure the user must accept
// before changing the portfolio, and the fingerprint recorded on acceptance.
package consent

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Disclosure is shown before any mutating control is enabled.
const Disclosure = `fitrack runs entirely on this machine.
No personal data is collected and nothing is sent to external servers.
Financial data is stored only in the local state database.
There is no usage tracking or analytics.
There is no external backup; you have full control over your data.
fitrack is a tracking tool, not financial advice. Use it at your own risk.
Calculations are estimates and their accuracy is not guaranteed.`

// Fingerprint returns the hash stored alongside an acceptance. It is a
// 32-bit rolling hash (h = h*31 + c over UTF-16 code units), printed as the
// lowercase hex of its absolute value. It identifies the text version; it is
// not tamper-evident.
func Fingerprint() string {
	return fingerprintOf(Disclosure)
}

func fingerprintOf(text string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(text)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 16)
}

// Verify reports whether fp was recorded against the current disclosure.
func Verify(fp string) bool {
	return strings.EqualFold(strings.TrimSpace(fp), Fingerprint())
}
