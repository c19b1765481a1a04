//go:build windows

package ipc

import (
	"fmt"
	"net"
	"reflect"
	"unsafe"

	"github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"
)

var (
	modkernel32                     = windows.NewLazySystemDLL("kernel32.dll")
	procGetNamedPipeClientProcessId = modkernel32.NewProc("GetNamedPipeClientProcessId")
)

// listen creates the named pipe. Only the user who started the helper may
// open it; ReloadConfig and Shutdown additionally check the caller's SID.
func (s *Server) listen() (net.Listener, error) {
	ownerSID, err := getCurrentUserSID()
	if err != nil {
		return nil, err
	}

	cfg := &winio.PipeConfig{
		SecurityDescriptor: fmt.Sprintf("D:P(A;;GA;;;%s)(A;;GA;;;SY)", ownerSID),
		MessageMode:        true,
		InputBufferSize:    4096,
		OutputBufferSize:   4096,
	}

	listener, err := winio.ListenPipe(s.address, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create named pipe: %w", err)
	}

	s.authorize = func(conn net.Conn, op MessageType) error {
		pid, err := getNamedPipeClientPID(conn)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Failed to extract client PID from connection")
			return fmt.Errorf("unauthorized: could not identify caller")
		}
		callerSID, err := getProcessOwnerSID(pid)
		if err != nil {
			return fmt.Errorf("unauthorized: could not identify caller")
		}
		if callerSID != ownerSID {
			return fmt.Errorf("unauthorized: %s is only allowed for the user running the helper", op)
		}
		return nil
	}
	return listener, nil
}

func (s *Server) cleanup() {}

func getCurrentUserSID() (string, error) {
	token, err := windows.OpenCurrentProcessToken()
	if err != nil {
		return "", fmt.Errorf("failed to open process token: %w", err)
	}
	defer token.Close()

	user, err := token.GetTokenUser()
	if err != nil {
		return "", fmt.Errorf("failed to get token user: %w", err)
	}
	return user.User.Sid.String(), nil
}

// getNamedPipeClientPID asks Windows for the PID on the other end of the
// pipe. go-winio keeps the handle unexported, so it is found by reflection.
func getNamedPipeClientPID(conn net.Conn) (uint32, error) {
	handle, found := findHandle(reflect.ValueOf(conn), 0)
	if !found {
		return 0, fmt.Errorf("could not extract handle from connection type %T", conn)
	}

	var clientPID uint32
	r1, _, err := procGetNamedPipeClientProcessId.Call(
		uintptr(handle),
		uintptr(unsafe.Pointer(&clientPID)),
	)
	if r1 == 0 {
		return 0, fmt.Errorf("GetNamedPipeClientProcessId failed: %w", err)
	}
	return clientPID, nil
}

// findHandle walks embedded structs (win32Pipe -> win32File -> handle).
func findHandle(v reflect.Value, depth int) (windows.Handle, bool) {
	if depth > 5 {
		return 0, false
	}

	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0, false
	}

	if f := v.FieldByName("handle"); f.IsValid() {
		switch f.Kind() {
		case reflect.Uintptr, reflect.Uint, reflect.Uint64:
			if f.CanAddr() {
				val := reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
				return windows.Handle(val.Uint()), true
			}
		}
	}

	for i := 0; i < v.NumField(); i++ {
		if h, ok := findHandle(v.Field(i), depth+1); ok {
			return h, true
		}
	}
	return 0, false
}

func getProcessOwnerSID(pid uint32) (string, error) {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	defer windows.CloseHandle(handle)

	var token windows.Token
	if err := windows.OpenProcessToken(handle, windows.TOKEN_QUERY, &token); err != nil {
		return "", fmt.Errorf("failed to open process token: %w", err)
	}
	defer token.Close()

	user, err := token.GetTokenUser()
	if err != nil {
		return "", fmt.Errorf("failed to get token user: %w", err)
	}
	return user.User.Sid.String(), nil
}
