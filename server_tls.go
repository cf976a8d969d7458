//go:build !tinygo

package sonar

import (
	"golang.org/x/crypto/acme/autocert"
)

// ServeTLS serves HTTPS for host with a Let's Encrypt certificate
func (s *Server) ServeTLS(host string) error {
	Infof("Serving TLS for %s", host)
	return s.Serve(autocert.NewListener(host))
}
