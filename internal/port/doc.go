// Package port implements listen-port availability checks for the serve
// command.
//
// The Scanner asks the OS directly via net.Listen rather than parsing
// /proc/net/* or shelling out to lsof/ss, which may require elevated
// permissions. Serve uses it to fail fast with a clear message when the
// requested port is taken, and to pick a free port when the operator
// passes port 0.
package port
