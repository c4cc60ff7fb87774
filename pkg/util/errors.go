package util

import "strings"

// UnpackErrsToStrings flattens an error created with errors.Join into the
// list of messages stored in CR status. Errors wrapping several causes with
// fmt.Errorf keep their formatted message. A nil error gives an empty list.
func UnpackErrsToStrings(err error) *[]string {
	out := []string{}
	if err == nil {
		return &out
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok && isJoined(err, joined.Unwrap()) {
		for _, e := range joined.Unwrap() {
			out = append(out, *UnpackErrsToStrings(e)...)
		}
		return &out
	}
	return &[]string{err.Error()}
}

// isJoined matches the message layout of errors.Join.
func isJoined(err error, children []error) bool {
	msgs := make([]string, 0, len(children))
	for _, c := range children {
		msgs = append(msgs, c.Error())
	}
	return err.Error() == strings.Join(msgs, "\n")
}
