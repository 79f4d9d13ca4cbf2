package hypervisor

import "strings"

// PercentEncode escapes every non-alphanumeric byte of a UPID so it is
// safe to embed as a single URL path segment (spec §4.1, Testable
// Property 6). This mirrors net/url.PathEscape's per-segment escaping
// but is written out explicitly because a UPID's own colons must be
// escaped too (net/url leaves some path-safe punctuation, including
// ':', unescaped — which Proxmox's task status endpoint does not
// accept).
func PercentEncode(upid UPID) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(upid); i++ {
		c := upid[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
