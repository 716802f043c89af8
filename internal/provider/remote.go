package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultSSHPort is used when a remote target has no explicit port.
const DefaultSSHPort = "22"

// Remote runs a command on another host over SSH and captures its output.
// A new connection is made for every invocation.
type Remote struct {
	// Host is the target in user@host[:port] form. The user defaults to the
	// local user name.
	Host string
	// IdentityFile is a private key path. Empty means use the SSH agent.
	IdentityFile string
	// KnownHosts is the known_hosts file used for host key verification.
	// Empty means ~/.ssh/known_hosts.
	KnownHosts string
	// DialTimeout bounds the TCP connect and handshake. Zero means 10s.
	DialTimeout time.Duration
	// Breaker, when set, skips connection attempts while the host keeps
	// failing to connect.
	Breaker *Breaker
}

// connError marks failures to reach or authenticate with the host, as
// opposed to failures of the remote command.
type connError struct{ err error }

func (e *connError) Error() string { return e.err.Error() }
func (e *connError) Unwrap() error { return e.err }

// Produce runs command with options on the remote host. Options are split
// locally and re-quoted so the remote shell sees the same argv.
func (r *Remote) Produce(ctx context.Context, command, options string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", fail("remote", command, fmt.Errorf("no command configured"))
	}

	args, err := SplitArgs(options)
	if err != nil {
		return "", fail("remote", command, err)
	}

	username, addr, err := ParseTarget(r.Host)
	if err != nil {
		return "", fail("remote", command, err)
	}

	cfg, err := r.clientConfig(username)
	if err != nil {
		return "", fail("remote", command, err)
	}

	if r.Breaker != nil {
		if err := r.Breaker.Allow(); err != nil {
			return "", fail("remote", command, err)
		}
	}
	out, err := r.run(ctx, addr, cfg, joinCommand(command, args))
	if r.Breaker != nil {
		var ce *connError
		if errors.As(err, &ce) {
			r.Breaker.Record(err)
		} else {
			r.Breaker.Record(nil)
		}
	}
	if err != nil {
		return "", fail("remote", command, err)
	}
	return out, nil
}

func (r *Remote) run(ctx context.Context, addr string, cfg *ssh.ClientConfig, cmdline string) (string, error) {
	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", &connError{fmt.Errorf("failed to connect to %s: %w", addr, err)}
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return "", &connError{fmt.Errorf("SSH handshake with %s failed: %w", addr, err)}
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmdline)
	}()

	select {
	case err := <-done:
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) && strings.TrimSpace(stdout.String()) != "" {
				return stdout.String(), nil
			}
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", fmt.Errorf("%w: %s", err, msg)
			}
			return "", err
		}
		return stdout.String(), nil
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		return "", ctx.Err()
	}
}

func (r *Remote) clientConfig(username string) (*ssh.ClientConfig, error) {
	auth, err := r.authMethod()
	if err != nil {
		return nil, err
	}

	knownHostsPath := r.KnownHosts
	if knownHostsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot locate known_hosts: %w", err)
		}
		knownHostsPath = filepath.Join(home, ".ssh", "known_hosts")
	}
	hostKeys, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts: %w", err)
	}

	timeout := r.DialTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}, nil
}

func (r *Remote) authMethod() (ssh.AuthMethod, error) {
	if r.IdentityFile != "" {
		key, err := os.ReadFile(r.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return ssh.PublicKeys(signer), nil
	}

	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil, fmt.Errorf("SSH_AUTH_SOCK not set and no identity file configured")
	}
	return ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
		agentConn, err := net.Dial("unix", socket)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SSH agent: %w", err)
		}
		defer agentConn.Close()

		signers, err := agent.NewClient(agentConn).Signers()
		if err != nil {
			return nil, fmt.Errorf("failed to get signers from SSH agent: %w", err)
		}
		return signers, nil
	}), nil
}

// ParseTarget splits user@host[:port] into a user name and a dialable
// address. A missing user falls back to the current local user.
func ParseTarget(target string) (username, addr string, err error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", "", fmt.Errorf("no remote host configured")
	}

	host := target
	if i := strings.LastIndex(target, "@"); i >= 0 {
		username, host = target[:i], target[i+1:]
	}
	if host == "" {
		return "", "", fmt.Errorf("invalid remote host %q", target)
	}
	if username == "" {
		if u, uerr := user.Current(); uerr == nil {
			username = u.Username
		} else {
			username = os.Getenv("USER")
		}
	}

	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(strings.Trim(host, "[]"), DefaultSSHPort)
	}
	return username, host, nil
}
