// Package netutil discovers the machine's LAN IPv4 address and renders
// the share URL as a terminal QR code.
//
// The address is what gets printed in the startup banner and embedded in
// the admin panel URL, so the heuristics favor real LAN interfaces
// (RFC1918, wired/wireless) over VPN tunnels and virtual adapters.
package netutil
