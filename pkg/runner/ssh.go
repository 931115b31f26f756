package runner

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/newtron-network/newtroute/pkg/util"
)

// SSHConfig describes how to reach a remote test node.
type SSHConfig struct {
	Host     string
	Port     int // 0 means 22
	User     string
	Password string
	KeyFile  string

	// PromptPassword asks on the terminal when neither Password nor
	// KeyFile is set.
	PromptPassword bool
	Timeout        time.Duration
}

// SSH runs commands on a remote node, one session per command.
type SSH struct {
	host   string
	client *ssh.Client
}

// DialSSH connects to the node described by cfg.
func DialSSH(cfg SSHConfig) (*SSH, error) {
	port := cfg.Port
	if port == 0 {
		port = 22
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}
	config := &ssh.ClientConfig{
		User: cfg.User,
		Auth: auth,
		// Lab/test nodes are recreated constantly; host keys are not stable.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	util.Logger.Warnf("SSH to %s: host key verification disabled (InsecureIgnoreHostKey)", addr)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s@%s: %w", cfg.User, addr, err)
	}
	return &SSH{host: cfg.Host, client: client}, nil
}

func authMethods(cfg SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if cfg.KeyFile != "" {
		key, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading SSH key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parsing SSH key %s: %w", cfg.KeyFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	password := cfg.Password
	if password == "" && cfg.KeyFile == "" && cfg.PromptPassword {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return nil, fmt.Errorf("SSH password required for %s@%s and stdin is not a terminal", cfg.User, cfg.Host)
		}
		fmt.Fprintf(os.Stderr, "%s@%s's password: ", cfg.User, cfg.Host)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		password = string(b)
	}
	if password != "" {
		methods = append(methods, ssh.Password(password))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH credentials for %s@%s", cfg.User, cfg.Host)
	}
	return methods, nil
}

// Host returns the remote host name or address.
func (s *SSH) Host() string { return s.host }

// Close closes the SSH connection.
func (s *SSH) Close() error {
	return s.client.Close()
}

// Run implements Runner. If ctx is cancelled the remote command is killed.
func (s *SSH) Run(ctx context.Context, name string, args ...string) (string, error) {
	argv := append([]string{name}, args...)
	line := commandLine(argv)
	util.WithFields(map[string]interface{}{"host": s.host, "cmd": line}).Debug("exec")

	session, err := s.client.NewSession()
	if err != nil {
		return "", util.NewCommandError(s.host, argv, "", fmt.Errorf("SSH session: %w", err))
	}
	defer session.Close()

	var output bytes.Buffer
	session.Stdout = &output
	session.Stderr = &output

	if err := session.Start(line); err != nil {
		return "", util.NewCommandError(s.host, argv, "", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		session.Close()
		<-done
		return output.String(), util.NewCommandError(s.host, argv, output.String(), ctx.Err())
	case err := <-done:
		if err != nil {
			return output.String(), util.NewCommandError(s.host, argv, output.String(), err)
		}
		return output.String(), nil
	}
}
