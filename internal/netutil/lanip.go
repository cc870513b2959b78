package netutil

import (
	"net"
	"strings"
)

// vpnOrVirtualKeywords marks interface names that almost never carry the
// address a phone on the same Wi-Fi can reach.
var vpnOrVirtualKeywords = []string{
	"vpn", "wireguard", "tailscale", "zerotier", "hamachi",
	"virtualbox", "vmware", "hyper-v", "vethernet",
	"tap", "tun", "utun", "wintun", "docker", "loopback",
}

// LANIP returns the best-guess LAN IPv4 address of this machine.
//
// Interfaces are scanned and scored: RFC1918 addresses score high, with an
// extra bias toward 192.168.0.0/16 (the common home/small-office range),
// wireless interfaces are preferred, and VPN/virtual adapters are heavily
// penalized. If no candidate is found, a UDP "connection" to a public
// address reveals the source address the OS would route through. The final
// fallback is 127.0.0.1 so callers always get something printable.
func LANIP() string {
	if ip := scanInterfaces(); ip != "" {
		return ip
	}
	if ip := outboundIP(); ip != "" {
		return ip
	}
	return "127.0.0.1"
}

// scanInterfaces walks all up, non-loopback interfaces and returns the
// highest-scoring IPv4 address, or "" when nothing qualifies.
func scanInterfaces() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}

	bestScore := 0
	best := ""
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		nameLower := strings.ToLower(iface.Name)
		for _, addr := range addrs {
			ip4 := addrIPv4(addr)
			if ip4 == nil || ip4.IsLoopback() || ip4.IsLinkLocalUnicast() {
				continue
			}

			score := 1
			if isRFC1918(ip4) {
				score += 100
			}
			if ip4[0] == 192 && ip4[1] == 168 {
				score += 5
			}
			if strings.Contains(nameLower, "wl") || strings.Contains(nameLower, "wi-fi") || strings.Contains(nameLower, "wireless") {
				score += 40
			}
			if iface.Flags&net.FlagPointToPoint != 0 {
				score -= 200
			}
			for _, kw := range vpnOrVirtualKeywords {
				if strings.Contains(nameLower, kw) {
					score -= 1000
					break
				}
			}

			if score > bestScore {
				bestScore = score
				best = ip4.String()
			}
		}
	}
	return best
}

// addrIPv4 extracts the IPv4 address from an interface address, or nil.
func addrIPv4(addr net.Addr) net.IP {
	var ip net.IP
	switch v := addr.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	default:
		return nil
	}
	return ip.To4()
}

// isRFC1918 reports whether ip4 (a 4-byte IP) is a private address.
func isRFC1918(ip4 net.IP) bool {
	switch {
	case ip4[0] == 10:
		return true
	case ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31:
		return true
	case ip4[0] == 192 && ip4[1] == 168:
		return true
	}
	return false
}

// outboundIP discovers the local address the OS would use to reach the
// internet. UDP "dialing" sends no packets; it only selects a route, so
// this works offline as long as a default route exists.
func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer func() { _ = conn.Close() }()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP.To4() != nil {
		return addr.IP.String()
	}
	return ""
}
