// Package fetch clones remote repositories into a local working folder so
// they can be scanned like any other directory.
package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/hashicorp/go-hclog"
	crssh "golang.org/x/crypto/ssh"

	"github.com/scanward/scanward/pkg/shared/errors"
	"github.com/scanward/scanward/pkg/shared/files"
)

// Auth types accepted by Fetch.
const (
	AuthNone   = "none"
	AuthHTTP   = "http"
	AuthSSHKey = "ssh-key"
)

// Options describe one fetch operation.
type Options struct {
	// URL is the repository URL, with or without scheme.
	URL string
	// TargetFolder is where the working copy lands. Empty derives a folder
	// under BaseDir from the repository host and full name.
	TargetFolder string
	// BaseDir roots derived target folders. Empty means ./scanward-repos.
	BaseDir string
	AuthType string
	// Username and Token authenticate http fetches.
	Username string
	Token    string
	// SSHKeyPath and SSHKeyPassword authenticate ssh-key fetches.
	SSHKeyPath     string
	SSHKeyPassword string
	// Depth limits clone history. Zero means a depth-1 clone; scanning only
	// needs the working tree.
	Depth int
}

// Fetch clones the repository and returns the local path of the working copy.
func Fetch(ctx context.Context, logger hclog.Logger, opts Options) (string, error) {
	info, err := vcsurl.Parse(opts.URL)
	if err != nil {
		return "", errors.NewConfigError(fmt.Sprintf("cannot parse repository url %q", opts.URL), err)
	}

	target := opts.TargetFolder
	if target == "" {
		base := opts.BaseDir
		if base == "" {
			base = "scanward-repos"
		}
		target = filepath.Join(base, string(info.Host), info.FullName)
	}
	if err := files.CreateFolderIfNotExists(filepath.Dir(target)); err != nil {
		return "", errors.NewConfigError(fmt.Sprintf("cannot create fetch folder for %q", target), err)
	}

	depth := opts.Depth
	if depth <= 0 {
		depth = 1
	}
	cloneOptions := &git.CloneOptions{
		Depth: depth,
	}

	switch opts.AuthType {
	case AuthSSHKey:
		remote, _ := info.Remote(vcsurl.SSH)
		cloneOptions.URL = remote
		auth, err := sshKeyAuth(opts.SSHKeyPath, opts.SSHKeyPassword)
		if err != nil {
			return "", err
		}
		cloneOptions.Auth = auth
	case AuthHTTP:
		remote, _ := info.Remote(vcsurl.HTTPS)
		cloneOptions.URL = remote
		cloneOptions.Auth = &http.BasicAuth{
			Username: opts.Username,
			Password: opts.Token,
		}
	case AuthNone, "":
		remote, _ := info.Remote(vcsurl.HTTPS)
		cloneOptions.URL = remote
	default:
		return "", errors.NewConfigError(fmt.Sprintf("unknown auth type %q", opts.AuthType), nil)
	}

	logger.Info("fetching repository", "url", cloneOptions.URL, "target", target)
	if _, err := git.PlainCloneContext(ctx, target, false, cloneOptions); err != nil {
		if err == git.ErrRepositoryAlreadyExists {
			logger.Debug("repository already fetched, reusing working copy", "target", target)
			return target, nil
		}
		return "", fmt.Errorf("cloning %q: %w", cloneOptions.URL, err)
	}
	return target, nil
}

// sshKeyAuth builds public key auth from a private key file. The key is
// parsed up front so a bad key or passphrase fails before the network dial.
func sshKeyAuth(keyPath, password string) (*ssh.PublicKeys, error) {
	keyData, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("cannot read ssh key %q", keyPath), err)
	}
	if password == "" {
		if _, err := crssh.ParsePrivateKey(keyData); err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("cannot parse ssh key %q", keyPath), err)
		}
	}

	auth, err := ssh.NewPublicKeys("git", keyData, password)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("cannot build ssh auth from %q", keyPath), err)
	}
	auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
		HostKeyCallback: crssh.InsecureIgnoreHostKey(),
	}
	return auth, nil
}
