package core

import "fmt"

// Assert panics with a formatted message when cond is false. It is reserved
// for programmer errors such as calling frame functions out of order.
func Assert(cond bool, msg string, args ...interface{}) {
	if cond {
		return
	}
	m := fmt.Sprintf(msg, args...)
	LogError("assertion failed: %s", m)
	panic(m)
}
