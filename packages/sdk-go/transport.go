package sdk

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	loadClientCertificate = tls.LoadX509KeyPair
	readCABundle          = os.ReadFile
)

// TransportConfig describes optional mutual TLS towards the guardrails service.
// The zero value yields a plain cloned default transport.
type TransportConfig struct {
	ClientCertFile string
	ClientKeyFile  string
	CAFile         string
	ServerName     string
}

func (c TransportConfig) tlsEnabled() bool {
	return c.ClientCertFile != "" || c.ClientKeyFile != "" || c.CAFile != "" || c.ServerName != ""
}

// NewTransport clones http.DefaultTransport, applies cfg and wraps the result
// with OpenTelemetry instrumentation.
func NewTransport(cfg TransportConfig) (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.tlsEnabled() {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

		certPath := strings.TrimSpace(cfg.ClientCertFile)
		keyPath := strings.TrimSpace(cfg.ClientKeyFile)
		if (certPath == "") != (keyPath == "") {
			return nil, fmt.Errorf("aiguardrails: client certificate and key must be configured together")
		}
		if certPath != "" {
			certificate, err := loadClientCertificate(certPath, keyPath)
			if err != nil {
				return nil, fmt.Errorf("aiguardrails: failed to load client certificate: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{certificate}
		}

		if caPath := strings.TrimSpace(cfg.CAFile); caPath != "" {
			caData, err := readCABundle(caPath)
			if err != nil {
				return nil, fmt.Errorf("aiguardrails: failed to read CA certificate: %w", err)
			}
			roots := x509.NewCertPool()
			if !roots.AppendCertsFromPEM(caData) {
				return nil, fmt.Errorf("aiguardrails: failed to parse CA certificate")
			}
			tlsConfig.RootCAs = roots
		}

		if serverName := strings.TrimSpace(cfg.ServerName); serverName != "" {
			tlsConfig.ServerName = serverName
		}

		transport.TLSClientConfig = tlsConfig
	}

	return newInstrumentedTransport(transport), nil
}

type instrumentedTransport struct {
	base *http.Transport
	rt   http.RoundTripper
}

func newInstrumentedTransport(base *http.Transport) http.RoundTripper {
	return &instrumentedTransport{
		base: base,
		rt:   otelhttp.NewTransport(base),
	}
}

func (i *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return i.rt.RoundTrip(req)
}

// Base exposes the wrapped transport.
func (i *instrumentedTransport) Base() *http.Transport {
	return i.base
}
