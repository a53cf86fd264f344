package tool

import (
	"crypto/tls"
	"path/filepath"
	"testing"
)

func TestEnsureTlsCertificate(t *testing.T) {
	dir := t.TempDir()
	keyFilename := filepath.Join(dir, "key.pem")
	certFilename := filepath.Join(dir, "cert.pem")

	generated, err := EnsureTlsCertificate("sunface", "Sunface Server", keyFilename, certFilename, []string{"localhost", "127.0.0.1"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !generated {
		t.Errorf("Expected the key pair to be generated")
	}

	if _, err := tls.LoadX509KeyPair(certFilename, keyFilename); err != nil {
		t.Errorf("Unable to load generated key pair: %v", err)
	}

	generated, err = EnsureTlsCertificate("sunface", "Sunface Server", keyFilename, certFilename, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if generated {
		t.Errorf("Expected the existing key pair to be kept")
	}
}
