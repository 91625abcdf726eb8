package webserver

import (
	"crypto/tls"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TLSReloader serves the current key pair and swaps it in place when the
// files on disk change, so certificate renewal needs no restart.
type TLSReloader struct {
	certFile string
	keyFile  string
	cert     *tls.Certificate
	mu       sync.RWMutex
	lastMod  time.Time
}

func NewTLSReloader(certFile, keyFile string) (*TLSReloader, error) {
	r := &TLSReloader{certFile: certFile, keyFile: keyFile}
	if err := r.reload(); err != nil {
		return nil, err
	}
	go r.watch()
	return r, nil
}

func (r *TLSReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	if info, err := os.Stat(r.certFile); err == nil {
		r.lastMod = info.ModTime()
	}
	if info, err := os.Stat(r.keyFile); err == nil && info.ModTime().After(r.lastMod) {
		r.lastMod = info.ModTime()
	}

	logrus.Info("TLS certificates loaded")
	return nil
}

func (r *TLSReloader) watch() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		changed := false
		for _, f := range []string{r.certFile, r.keyFile} {
			info, err := os.Stat(f)
			if err != nil {
				logrus.WithError(err).WithField("file", f).Warn("stat certificate file")
				changed = false
				break
			}
			if info.ModTime().After(r.lastMod) {
				changed = true
			}
		}
		if changed {
			if err := r.reload(); err != nil {
				logrus.WithError(err).Error("certificate reload failed")
			}
		}
	}
}

func (r *TLSReloader) GetConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			r.mu.RLock()
			defer r.mu.RUnlock()
			return r.cert, nil
		},
	}
}
