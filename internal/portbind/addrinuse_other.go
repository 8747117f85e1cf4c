//go:build !windows

package portbind

import "syscall"

var errAddrInUse = syscall.EADDRINUSE
