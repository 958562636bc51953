//go:build windows

package core

import "golang.org/x/sys/windows"

func init() {
	addrInUseErrnos = append(addrInUseErrnos, windows.WSAEADDRINUSE)
}
