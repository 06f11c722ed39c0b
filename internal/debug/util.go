//go:build debug || assert

package debug

import "fmt"

func stringValue(v interface{}) string {
	switch m := v.(type) {
	case func() string:
		return m()

	case string:
		return m

	case fmt.Stringer:
		return m.String()

	default:
		panic(fmt.Sprintf("unexpected message type, %T", v))
	}
}
