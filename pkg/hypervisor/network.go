package hypervisor

import (
	"fmt"
	"net"
)

// MaskToCIDRBits counts the leading one-bits of a dotted-decimal IPv4
// subnet mask (spec §4.7.1 step 10, Testable Property 8).
func MaskToCIDRBits(subnetMask string) (int, error) {
	ip := net.ParseIP(subnetMask).To4()
	if ip == nil {
		return 0, fmt.Errorf("hypervisor: invalid subnet mask %q", subnetMask)
	}
	mask := net.IPMask(ip)
	bits, _ := mask.Size()
	return bits, nil
}

// BuildNetworkConfig renders the "ip=<addr>/<bits>,gw=<gw>" fragment of
// the vm_config payload (spec §4.7.1 step 10).
func BuildNetworkConfig(addr, gateway, subnetMask string) (string, error) {
	bits, err := MaskToCIDRBits(subnetMask)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ip=%s/%d,gw=%s", addr, bits, gateway), nil
}
