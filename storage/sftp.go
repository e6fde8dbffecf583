package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh"
)

var nameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

// SFTPStorage stores objects on a remote SFTP server under year/month
// directories. Connections are dialed per operation, the server side is
// expected to serve the remote tree over HTTP at BaseURL.
type SFTPStorage struct {
	RemoteDir string
	BaseURL   string
}

func NewSFTP() (*SFTPStorage, error) {
	s := &SFTPStorage{
		RemoteDir: viper.GetString("sftp.remote_dir"),
		BaseURL:   strings.TrimRight(viper.GetString("sftp.base_url"), "/"),
	}

	// Fail at startup rather than on the first upload
	client, conn, err := s.dial()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SFTP server, %w", err)
	}
	client.Close()
	conn.Close()

	return s, nil
}

func (s *SFTPStorage) dial() (*sftp.Client, *ssh.Client, error) {
	auth, err := authMethods()
	if err != nil {
		return nil, nil, err
	}

	cfg := &ssh.ClientConfig{
		User:            viper.GetString("sftp.username"),
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         20 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", viper.GetString("sftp.host"), viper.GetInt("sftp.port"))

	conn, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	return client, conn, nil
}

func authMethods() ([]ssh.AuthMethod, error) {
	if keyPath := viper.GetString("sftp.private_key_path"); keyPath != "" {
		keyBytes, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH private key, %w", err)
		}

		var signer ssh.Signer
		if pass := viper.GetString("sftp.passphrase"); pass != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(pass))
		} else {
			signer, err = ssh.ParsePrivateKey(keyBytes)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH private key, %w", err)
		}

		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}

	return []ssh.AuthMethod{ssh.Password(viper.GetString("sftp.password"))}, nil
}

func (s *SFTPStorage) Put(ctx context.Context, r io.Reader, nameHint, contentType string, size int64) (string, error) {
	client, conn, err := s.dial()
	if err != nil {
		return "", err
	}
	defer conn.Close()
	defer client.Close()

	ext := path.Ext(nameHint)
	base := nameUnsafe.ReplaceAllString(strings.TrimSuffix(nameHint, ext), "_")

	now := time.Now()
	remoteDir := fmt.Sprintf("%s/%d/%02d", s.RemoteDir, now.Year(), now.Month())
	name := fmt.Sprintf("%d-%06d-%s%s", now.UnixMilli(), rand.Intn(1000000), base, ext)
	remotePath := remoteDir + "/" + name

	if err := client.MkdirAll(remoteDir); err != nil {
		return "", fmt.Errorf("failed to create remote directory, %w", err)
	}

	dst, err := client.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("failed to create remote file, %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to upload file over SFTP, %w", err)
	}

	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize remote file, %w", err)
	}

	return strings.TrimPrefix(remotePath, s.RemoteDir+"/"), nil
}

// SignedGet returns a time-agnostic link under the public base URL. SFTP
// has no presigning, the TTL is accepted for interface parity only.
func (s *SFTPStorage) SignedGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.BaseURL + "/" + key, nil
}

func (s *SFTPStorage) Delete(ctx context.Context, key string) error {
	client, conn, err := s.dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	defer client.Close()

	remotePath := s.RemoteDir + "/" + key

	if _, err := client.Stat(remotePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat remote file, %w", err)
	}

	if err := client.Remove(remotePath); err != nil {
		return fmt.Errorf("failed to delete remote file, %w", err)
	}

	return nil
}
