package tool

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// EnsureTlsCertificate generates a self-signed key pair unless both files are
// already there. It tells whether it generated them.
func EnsureTlsCertificate(organization, serverCommonName, serverKeyFilename, serverCertFilename string, hostnames []string) (bool, error) {
	existServerCert, err := IsFileExists(serverCertFilename)
	if err != nil {
		return false, fmt.Errorf("unable to access %s: %w", serverCertFilename, err)
	}
	existServerKey, err := IsFileExists(serverKeyFilename)
	if err != nil {
		return false, fmt.Errorf("unable to access %s: %w", serverKeyFilename, err)
	}
	if existServerCert && existServerKey {
		return false, nil
	}

	logrus.Info("Missing cert and key files, trying to generate them...")
	err = GenerateTlsCertificate(organization, serverCommonName, serverKeyFilename, serverCertFilename, hostnames)
	if err != nil {
		return false, fmt.Errorf("unable to generate cert and key files: %w", err)
	}
	logrus.Info("Self-signed cert and key files generated")
	return true, nil
}

func GenerateTlsCertificate(
	organization string,
	serverCommonName string,
	serverKeyFilename, serverCertFilename string,
	hostnames []string) error {

	notBefore := time.Now()
	notAfter := notBefore.AddDate(10, 0, 0)

	serverKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return err
	}
	serverTemplate := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{organization},
			CommonName:   serverCommonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	for _, h := range hostnames {
		if ip := net.ParseIP(h); ip != nil {
			serverTemplate.IPAddresses = append(serverTemplate.IPAddresses, ip)
		} else {
			serverTemplate.DNSNames = append(serverTemplate.DNSNames, h)
		}
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &serverTemplate, &serverTemplate, &serverKey.PublicKey, serverKey)
	if err != nil {
		return err
	}

	keyBytes, err := x509.MarshalECPrivateKey(serverKey)
	if err != nil {
		return err
	}
	if err = pemToFile(serverKeyFilename, "EC PRIVATE KEY", keyBytes, 0600); err != nil {
		return err
	}
	return pemToFile(serverCertFilename, "CERTIFICATE", derBytes, 0644)
}

func pemToFile(filename string, blockType string, der []byte, perm os.FileMode) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if err = pem.Encode(file, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
