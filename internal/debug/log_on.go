//go:build debug

package debug

import (
	"log"
	"os"
)

var logger = log.New(os.Stderr, "[D] ", log.LstdFlags)

// Log writes msg to stderr.
//
// msg must be a string, func() string or fmt.Stringer.
func Log(msg interface{}) {
	logger.Output(1, stringValue(msg))
}
