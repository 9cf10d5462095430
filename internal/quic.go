package internal

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/webtransport-go"
)

// ALPN is the protocol identifier for the raw QUIC transport.
const ALPN = "wsplay"

// quicFrameConn ties the stream's framing to the connection's lifetime.
type quicFrameConn struct {
	FrameConn
	conn quic.Connection
}

func (c *quicFrameConn) Close() error {
	_ = c.FrameConn.Close()
	return c.conn.CloseWithError(0, "closed")
}

// DialQUIC connects to a raw QUIC endpoint and opens the single
// bidirectional stream carrying the tagged frame protocol.
func DialQUIC(ctx context.Context, addr string, insecure bool) (FrameConn, error) {
	conn, err := quic.DialAddr(ctx, addr, &tls.Config{
		InsecureSkipVerify: insecure,
		NextProtos:         []string{ALPN},
	}, &quic.Config{})
	if err != nil {
		return nil, fmt.Errorf("dial quic %s: %w", addr, err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, fmt.Errorf("open quic stream: %w", err)
	}
	return &quicFrameConn{
		FrameConn: NewStreamFrameConn(stream),
		conn:      conn,
	}, nil
}

// wtFrameConn ties the stream's framing to the session's lifetime.
type wtFrameConn struct {
	FrameConn
	session *webtransport.Session
}

func (c *wtFrameConn) Close() error {
	_ = c.FrameConn.Close()
	return c.session.CloseWithError(0, "closed")
}

// DialWebTransport connects to an https:// WebTransport endpoint and opens
// the single bidirectional stream carrying the tagged frame protocol.
func DialWebTransport(ctx context.Context, url string, insecure bool) (FrameConn, error) {
	dialer := webtransport.Dialer{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecure,
		},
	}
	_, session, err := dialer.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial webtransport %s: %w", url, err)
	}
	stream, err := session.OpenStreamSync(ctx)
	if err != nil {
		_ = session.CloseWithError(0, "no stream")
		return nil, fmt.Errorf("open webtransport stream: %w", err)
	}
	return &wtFrameConn{
		FrameConn: NewStreamFrameConn(stream),
		session:   session,
	}, nil
}

// LoadTLSConfig builds a server TLS config from a certificate and key file.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPN, "h3"},
	}, nil
}

// GenerateTLSConfig sets up a bare-bones in-memory TLS config for servers
// without provisioned certificates.
func GenerateTLSConfig() (*tls.Config, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	template := x509.Certificate{SerialNumber: big.NewInt(1)}
	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	tlsCert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		NextProtos:   []string{ALPN, "h3"},
	}, nil
}
