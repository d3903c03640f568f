package cache

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/dnsrelay/relay/internal/dns"
)

// LoadHostsFile seeds the cache from a hosts file: one `<ip> <name>` pair
// per line, blank lines and lines starting with `#` ignored (spec §4.C
// "Hosts-file seed", §6 "Hosts file format"). `0.0.0.0` and `::` synthesize
// a blocked A/AAAA record with an infinite TTL (spec §4.C, resolving the
// open question in spec §9 by treating both sentinels the same way); any
// other address seeds a normal, never-expiring A/AAAA record.
//
// Malformed lines are logged and skipped rather than aborting the load
// (spec §7 "HostsParse: log and skip line").
func (c *Cache) LoadHostsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open hosts file %s: %w", path, err)
	}
	defer f.Close()
	return c.loadHosts(f, path)
}

func (c *Cache) loadHosts(r io.Reader, source string) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	loaded := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := c.seedHostsLine(line); err != nil {
			c.logger.Warn("hosts file: skipping line", "source", source, "line", lineNo, "err", err)
			continue
		}
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read hosts file %s: %w", source, err)
	}
	c.logger.Info("hosts file loaded", "source", source, "entries", loaded)
	return nil
}

func (c *Cache) seedHostsLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return fmt.Errorf("expected \"<ip> <name>\", got %d fields", len(fields))
	}
	ipField, name := fields[0], dns.NormalizeName(fields[1])
	if name == "" {
		return fmt.Errorf("empty name")
	}

	ip := net.ParseIP(ipField)
	if ip == nil {
		return fmt.Errorf("invalid IP %q", ipField)
	}

	if v4 := ip.To4(); v4 != nil {
		c.trie.Insert(name, dns.NewIPRecord(dns.RRHeader{Name: name, Type: dns.TypeA, Class: dns.ClassIN}, []byte(v4)), 0, true)
		return nil
	}
	c.trie.Insert(name, dns.NewIPRecord(dns.RRHeader{Name: name, Type: dns.TypeAAAA, Class: dns.ClassIN}, []byte(ip.To16())), 0, true)
	return nil
}
