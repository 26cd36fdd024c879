//go:build windows

package messagebus

import "os"

// tryLockExclusive is a no-op placeholder on windows; the local bus is a
// development convenience and single-consumer use is assumed there.
func tryLockExclusive(f *os.File) error { return nil }

// unlockExclusive is a no-op placeholder on windows.
func unlockExclusive(f *os.File) error { return nil }
