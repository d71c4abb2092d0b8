//go:build windows

package npipe

import "fmt"

// localPipeNamespace is the well-known prefix every symbolic pipe name is
// resolved under for same-machine named pipes (spec §6, "Pipe naming").
const localPipeNamespace = `\\.\pipe\`

// PipeAddr represents the address of a named pipe, as the fully-qualified
// \\.\pipe\<name> string the kernel understands.
type PipeAddr string

// Network returns the address's network name, "pipe".
func (a PipeAddr) Network() string { return "pipe" }

// String returns the address of the pipe.
func (a PipeAddr) String() string { return string(a) }

// pipeAddr builds the fully-qualified local pipe address for a caller-
// supplied symbolic name. A name already carrying the namespace prefix is
// returned unchanged, so callers may pass either "myservice" or
// `\\.\pipe\myservice`.
func pipeAddr(name string) PipeAddr {
	if len(name) >= len(localPipeNamespace) && name[:len(localPipeNamespace)] == localPipeNamespace {
		return PipeAddr(name)
	}
	return PipeAddr(fmt.Sprintf("%s%s", localPipeNamespace, name))
}
