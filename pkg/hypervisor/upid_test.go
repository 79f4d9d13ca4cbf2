package hypervisor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentEncodeEscapesNonAlphanumeric(t *testing.T) {
	cases := []UPID{
		"UPID:pve:00001234:0000ABCD:6512AAFF:qmstart:100:root@pam:",
		"mock_process_id",
		"abc123",
		"",
	}
	for _, upid := range cases {
		encoded := PercentEncode(upid)
		for i := 0; i < len(upid); i++ {
			c := upid[i]
			isAlnum := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
			if isAlnum {
				assert.True(t, strings.ContainsRune(encoded, rune(c)), "alnum byte %q should pass through", c)
			}
		}
		// every non-alphanumeric byte of the input must appear escaped
		for i := 0; i < len(upid); i++ {
			c := upid[i]
			isAlnum := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
			if !isAlnum {
				assert.Contains(t, encoded, "%", "expected an escape for byte %q in %q", c, upid)
			}
		}
	}
}

func TestPercentEncodeRoundTripByteIdentity(t *testing.T) {
	a := UPID("UPID:pve:1:2:3:qmstart:100:root@pam:")
	b := UPID("UPID:pve:1:2:3:qmstart:100:root@pam:")
	assert.Equal(t, PercentEncode(a), PercentEncode(b))
	assert.Equal(t, a, b)
}
