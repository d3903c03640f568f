package relay

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dnsrelay/relay/internal/cache"
	"github.com/dnsrelay/relay/internal/dns"
	"github.com/dnsrelay/relay/internal/idpool"
	"github.com/dnsrelay/relay/internal/querypool"
	"github.com/stretchr/testify/require"
)

func localAddr(t *testing.T) *net.UDPAddr {
	t.Helper()
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0}
}

// fakeUpstream is a bare UDP echo-style stand-in for the real upstream
// resolver: it answers every query with a fixed A record.
func fakeUpstream(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", localAddr(t))
	require.NoError(t, err)
	go func() {
		buf := make([]byte, maxDatagramSize)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			req, err := dns.ParsePacket(buf[:n])
			if err != nil {
				continue
			}
			reply := dns.Packet{
				Header: dns.Header{
					ID:      req.Header.ID,
					Flags:   dns.SetRCode(dns.RDFlag, dns.RCodeNoError),
					QDCount: 1,
					ANCount: 1,
				},
				Questions: req.Questions,
				Answers: []dns.Record{dns.NewIPRecord(
					dns.RRHeader{Name: req.Questions[0].Name, Type: dns.TypeA, Class: dns.ClassIN, TTL: 60},
					[]byte{9, 9, 9, 9})},
			}
			b, err := reply.Marshal()
			if err != nil {
				continue
			}
			_, _ = conn.WriteToUDP(b, addr)
		}
	}()
	return conn
}

func TestServerEndToEndCacheMissForwardsAndReplies(t *testing.T) {
	upstreamConn := fakeUpstream(t)
	defer upstreamConn.Close()
	upstreamAddr := upstreamConn.LocalAddr().(*net.UDPAddr)

	ids := idpool.New()
	c := cache.New(cache.NewTrie(), nil)
	qp := querypool.New(ids, c, querypool.Config{Timeout: 2 * time.Second, MaxRetries: 1}, nil)

	srv, err := New(localAddr(t), upstreamAddr, qp, nil)
	require.NoError(t, err)
	serverAddr := srv.serverConn.LocalAddr().(*net.UDPAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	clientConn, err := net.ListenUDP("udp", localAddr(t))
	require.NoError(t, err)
	defer clientConn.Close()

	query := dns.Packet{
		Header:    dns.Header{ID: 0x1234, Flags: dns.RDFlag, QDCount: 1},
		Questions: []dns.Question{{Name: "example.com", Type: uint16(dns.TypeA), Class: uint16(dns.ClassIN)}},
	}
	raw, err := query.Marshal()
	require.NoError(t, err)

	_, err = clientConn.WriteToUDP(raw, serverAddr)
	require.NoError(t, err)

	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(3*time.Second)))
	buf := make([]byte, maxDatagramSize)
	n, _, err := clientConn.ReadFromUDP(buf)
	require.NoError(t, err)

	reply, err := dns.ParsePacket(buf[:n])
	require.NoError(t, err)
	require.EqualValues(t, 0x1234, reply.Header.ID)
	require.Equal(t, dns.RCodeNoError, dns.RCodeFromFlags(reply.Header.Flags))
	require.Len(t, reply.Answers, 1)
}

func TestServerEndToEndCacheHitBypassesUpstream(t *testing.T) {
	ids := idpool.New()
	c := cache.New(cache.NewTrie(), nil)
	c.Insert([]dns.Record{dns.NewIPRecord(
		dns.RRHeader{Name: "cached.test", Type: dns.TypeA, Class: dns.ClassIN, TTL: 300}, []byte{1, 2, 3, 4})})
	qp := querypool.New(ids, c, querypool.Config{Timeout: time.Second, MaxRetries: 1}, nil)

	srv, err := New(localAddr(t), &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1}, qp, nil)
	require.NoError(t, err)
	serverAddr := srv.serverConn.LocalAddr().(*net.UDPAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	clientConn, err := net.ListenUDP("udp", localAddr(t))
	require.NoError(t, err)
	defer clientConn.Close()

	query := dns.Packet{
		Header:    dns.Header{ID: 77, Flags: dns.RDFlag, QDCount: 1},
		Questions: []dns.Question{{Name: "cached.test", Type: uint16(dns.TypeA), Class: uint16(dns.ClassIN)}},
	}
	raw, err := query.Marshal()
	require.NoError(t, err)
	_, err = clientConn.WriteToUDP(raw, serverAddr)
	require.NoError(t, err)

	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, maxDatagramSize)
	n, _, err := clientConn.ReadFromUDP(buf)
	require.NoError(t, err)

	reply, err := dns.ParsePacket(buf[:n])
	require.NoError(t, err)
	require.EqualValues(t, 77, reply.Header.ID)
	require.Len(t, reply.Answers, 1)
}
