// Package console detects how the process was launched on Windows and
// installs a Ctrl+C handler that keeps working while SDL holds the main
// thread.
package console

import (
	"os"
	"strings"
	"syscall"
	"unsafe"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var (
	kernel32                       = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleWindow           = kernel32.NewProc("GetConsoleWindow")
	procAllocConsole               = kernel32.NewProc("AllocConsole")
	procFreeConsole                = kernel32.NewProc("FreeConsole")
	procGetStdHandle               = kernel32.NewProc("GetStdHandle")
	procCreateToolhelp32Snapshot   = kernel32.NewProc("CreateToolhelp32Snapshot")
	procProcess32First             = kernel32.NewProc("Process32FirstW")
	procProcess32Next              = kernel32.NewProc("Process32NextW")
	procOpenProcess                = kernel32.NewProc("OpenProcess")
	procQueryFullProcessImageNameW = kernel32.NewProc("QueryFullProcessImageNameW")
	procSetConsoleCtrlHandler      = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	th32csSnapProcess       = 0x00000002
	processQueryLimitedInfo = 0x1000
	maxPath                 = 260
	ctrlCEvent              = 0
	ctrlBreakEvent          = 1
	ctrlCloseEvent          = 2
	stdInputHandle          = ^uint32(10 - 1) // -10
	stdOutputHandle         = ^uint32(11 - 1) // -11
	stdErrorHandle          = ^uint32(12 - 1) // -12
)

type processEntry32 struct {
	Size            uint32
	Usage           uint32
	ProcessID       uint32
	DefaultHeapID   uintptr
	ModuleID        uint32
	Threads         uint32
	ParentProcessID uint32
	PriClassBase    int32
	Flags           uint32
	ExeFile         [maxPath]uint16
}

// IsRunningFromConsole reports whether the process has a terminal. A build
// double-clicked from Explorer frees its console and returns false so the
// tray is the only surface; a GUI build started from a terminal gets a new
// console with the std streams pointed at it.
func IsRunningFromConsole() bool {
	fromExplorer := launchedFromExplorer()
	if hasConsoleWindow() {
		if fromExplorer {
			procFreeConsole.Call()
			return false
		}
		return true
	}
	if fromExplorer {
		return false
	}
	procAllocConsole.Call()
	redirectStdStreams()
	return true
}

func hasConsoleWindow() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

func redirectStdStreams() {
	out, _, _ := procGetStdHandle.Call(uintptr(stdOutputHandle))
	errh, _, _ := procGetStdHandle.Call(uintptr(stdErrorHandle))
	in, _, _ := procGetStdHandle.Call(uintptr(stdInputHandle))
	if out == 0 || errh == 0 {
		return
	}
	os.Stdout = os.NewFile(out, "/dev/stdout")
	os.Stderr = os.NewFile(errh, "/dev/stderr")
	if in != 0 {
		os.Stdin = os.NewFile(in, "/dev/stdin")
	}
}

func launchedFromExplorer() bool {
	parent := parentProcessID(uint32(os.Getpid()))
	if parent == 0 {
		return false
	}
	return isExplorer(processImageName(parent))
}

func parentProcessID(pid uint32) uint32 {
	handle, _, _ := procCreateToolhelp32Snapshot.Call(th32csSnapProcess, 0)
	if handle == uintptr(syscall.InvalidHandle) {
		return 0
	}
	defer syscall.CloseHandle(syscall.Handle(handle))

	var entry processEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	ret, _, _ := procProcess32First.Call(handle, uintptr(unsafe.Pointer(&entry)))
	for ret != 0 {
		if entry.ProcessID == pid {
			return entry.ParentProcessID
		}
		ret, _, _ = procProcess32Next.Call(handle, uintptr(unsafe.Pointer(&entry)))
	}
	return 0
}

func processImageName(pid uint32) string {
	h, _, _ := procOpenProcess.Call(processQueryLimitedInfo, 0, uintptr(pid))
	if h == 0 {
		return ""
	}
	defer syscall.CloseHandle(syscall.Handle(h))

	var buf [maxPath]uint16
	size := uint32(maxPath)
	ret, _, _ := procQueryFullProcessImageNameW.Call(h, 0, uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if ret == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:size])
}

func isExplorer(path string) bool {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		path = path[i+1:]
	}
	return strings.EqualFold(path, "explorer.exe")
}

var (
	handlerClosed atomic.Bool
	handlerChan   chan struct{}
	handlerFn     uintptr
)

// SetupConsoleHandler closes shutdown on Ctrl+C, Ctrl+Break or console
// close. SDL replaces console handlers during init, so the returned function
// re-registers ours and should be called once SDL is up.
func SetupConsoleHandler(shutdown chan struct{}, logger *zap.SugaredLogger) func() {
	handlerChan = shutdown
	if handlerFn == 0 {
		handlerFn = syscall.NewCallback(func(ctrlType uint32) uintptr {
			switch ctrlType {
			case ctrlCEvent, ctrlBreakEvent, ctrlCloseEvent:
				if handlerClosed.CompareAndSwap(false, true) {
					close(handlerChan)
				}
				return 1
			}
			return 0
		})
	}
	register := func() {
		if ret, _, err := procSetConsoleCtrlHandler.Call(handlerFn, 1); ret == 0 {
			logger.Warnw("failed to set console control handler", "error", err)
		}
	}
	register()
	return register
}
