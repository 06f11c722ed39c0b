/*
Package debug provides conditional runtime assertions and debug logging.

Build with the assert tag to enable Assert; without it the assertion code is
compiled out entirely. Build with the debug tag to enable Log the same way.
The pool's protocol-misuse checks (owner-only pops, matching deallocation
counts) live behind Assert so release builds pay nothing for them.
*/
package debug
