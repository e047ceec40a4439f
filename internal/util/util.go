// Package util contains small helpers shared by the HTTP API and the SDK configuration code.
package util

import (
	"fmt"
	"net/url"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// ErrorJSONMsg returns a JSON object of the form {"message":msg}.
func ErrorJSONMsg(msg string) []byte {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("message").String(msg)
	obj.End()
	return w.Bytes()
}

// ErrorJSONMsgf is ErrorJSONMsg with a printf-style format.
func ErrorJSONMsgf(format string, args ...interface{}) []byte {
	return ErrorJSONMsg(fmt.Sprintf(format, args...))
}

// RedactURL replaces the password in a URL, if any, with "xxxxx". Unparseable strings are returned
// as they were.
func RedactURL(inputURL string) string {
	parsed, err := url.Parse(inputURL)
	if err != nil || parsed.User == nil {
		return inputURL
	}
	if _, hasPassword := parsed.User.Password(); !hasPassword {
		return inputURL
	}
	redacted := *parsed
	redacted.User = url.UserPassword(parsed.User.Username(), "xxxxx")
	return redacted.String()
}
