//go:build !assert

package debug

// Assert is a no-op unless the assert build tag is set.
func Assert(cond bool, msg interface{}) {}
