package publish

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"github.com/btangonan/gif-maker/logger"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type sftpPublisher struct {
	addr      string
	sshConfig *ssh.ClientConfig
	remoteDir string
}

func newSFTPPublisher(cfg map[string]string) (Publisher, error) {
	host := cfg["host"]
	user := cfg["user"]
	remoteDir := cfg["remoteDir"]
	if host == "" || user == "" || remoteDir == "" {
		return nil, fmt.Errorf("sftp publisher requires host, user and remoteDir")
	}
	port := cfg["port"]
	if port == "" {
		port = "22"
	}

	var auths []ssh.AuthMethod
	if privateKey := cfg["privateKey"]; privateKey != "" {
		// try to decode as base64, fall back to raw PEM
		keyBytes, err := base64.StdEncoding.DecodeString(privateKey)
		if err != nil {
			keyBytes = []byte(privateKey)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	} else if password := cfg["password"]; password != "" {
		auths = append(auths, ssh.Password(password))
	} else {
		return nil, fmt.Errorf("no auth method provided; set password or privateKey")
	}

	return &sftpPublisher{
		addr: net.JoinHostPort(host, port),
		sshConfig: &ssh.ClientConfig{
			User:            user,
			Auth:            auths,
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         10 * time.Second,
		},
		remoteDir: remoteDir,
	}, nil
}

func (p *sftpPublisher) Upload(ctx context.Context, name string, reader io.Reader) error {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("dial tcp %s: %w", p.addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, p.addr, p.sshConfig)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake with %s: %w", p.addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)
	defer sshClient.Close()

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("create sftp client: %w", err)
	}
	defer sftpClient.Close()

	if err := mkdirAllSFTP(sftpClient, p.remoteDir); err != nil {
		return fmt.Errorf("ensure remote dir %s: %w", p.remoteDir, err)
	}

	remotePath := path.Join(p.remoteDir, name)
	f, err := sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("copy to remote file %s: %w", remotePath, err)
	}

	logger.Infof("Published '%s' to %s:%s", name, p.addr, remotePath)
	return nil
}

// mkdirAllSFTP mimics os.MkdirAll for an SFTP server by creating each segment of the path.
func mkdirAllSFTP(client *sftp.Client, dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}

	parts := strings.Split(dir, "/")
	cur := ""
	if strings.HasPrefix(dir, "/") {
		cur = "/"
	}

	for _, p := range parts {
		if p == "" {
			continue
		}
		cur = path.Join(cur, p)
		if _, err := client.Stat(cur); err != nil {
			if os.IsNotExist(err) {
				if err := client.Mkdir(cur); err != nil {
					return fmt.Errorf("mkdir %s: %w", cur, err)
				}
			} else {
				return fmt.Errorf("stat %s: %w", cur, err)
			}
		}
	}
	return nil
}
