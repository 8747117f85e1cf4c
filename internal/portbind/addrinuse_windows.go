package portbind

import "syscall"

// WSAEADDRINUSE
var errAddrInUse = syscall.Errno(10048)
