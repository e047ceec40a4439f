package sdks

import "regexp"

var (
	hexDigitRegex = regexp.MustCompile(`[a-fA-F\d]`)
	kindPrefix    = regexp.MustCompile(`^[a-z]{3}-`)
)

// visibleKeySuffix is the number of trailing characters that ObscureKey leaves readable.
const visibleKeySuffix = 5

// ObscureKey returns a version of an SDK key that is safe to log: the "sdk-" prefix, if any, and the
// last few characters are kept and every other hex digit is replaced with '*'.
func ObscureKey(key string) string {
	prefix := kindPrefix.FindString(key)
	rest := key[len(prefix):]
	if len(rest) < visibleKeySuffix {
		return key
	}
	cut := len(rest) - visibleKeySuffix
	return prefix + hexDigitRegex.ReplaceAllString(rest[:cut], "*") + rest[cut:]
}
