package crawler

import (
	"fmt"
	"math/rand/v2"
)

// RandomUserAgent builds a Lynx style client signature with random versions,
// e.g. "Lynx/2.8.1 libwww-FM/2.14 SSL-MM/1.4 OpenSSL/3.0.7".
func RandomUserAgent() string {
	lynx := fmt.Sprintf("Lynx/%d.%d.%d", between(2, 3), between(8, 9), between(0, 2))
	libwww := fmt.Sprintf("libwww-FM/%d.%d", between(2, 3), between(13, 15))
	sslMM := fmt.Sprintf("SSL-MM/%d.%d", between(1, 2), between(3, 5))
	openssl := fmt.Sprintf("OpenSSL/%d.%d.%d", between(1, 3), between(0, 4), between(0, 9))
	return lynx + " " + libwww + " " + sslMM + " " + openssl
}

// between returns a random int in [lo, hi].
func between(lo, hi int) int {
	return lo + rand.IntN(hi-lo+1)
}
