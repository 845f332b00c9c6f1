package coordinator

import "regexp"

const defaultFileName = "Token.sol"

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// FileName returns the artifact name for a token: the name with everything
// but ASCII letters and digits removed, plus ".sol".
func FileName(tokenName string) string {
	base := nonAlnum.ReplaceAllString(tokenName, "")
	if base == "" {
		return defaultFileName
	}
	return base + ".sol"
}
