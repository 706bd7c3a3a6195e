package fetch

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"

	internalfetch "github.com/scanward/scanward/internal/fetch"
	"github.com/scanward/scanward/pkg/shared/files"
)

// validateFetchArgs validates the arguments provided to the fetch command.
func validateFetchArgs(options *RunOptionsFetch, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("invalid argument(s) received, exactly one URL argument is required")
	}

	switch options.AuthType {
	case internalfetch.AuthNone, internalfetch.AuthHTTP, internalfetch.AuthSSHKey:
	default:
		return fmt.Errorf("unknown auth-type: %v", options.AuthType)
	}

	if options.AuthType == internalfetch.AuthSSHKey {
		if options.SSHKey == "" {
			return fmt.Errorf("you must specify ssh-key with auth-type 'ssh-key'")
		}

		expandedPath, err := files.ExpandPath(options.SSHKey)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", options.SSHKey, err)
		}
		if err := files.ValidatePath(expandedPath); err != nil {
			return fmt.Errorf("failed to validate path %q: %w", expandedPath, err)
		}

		keyData, err := os.ReadFile(expandedPath)
		if err != nil {
			return fmt.Errorf("failed to read SSH key file: %w", err)
		}
		if _, err := ssh.ParsePrivateKey(keyData); err != nil {
			if _, ok := err.(*ssh.PassphraseMissingError); !ok {
				return fmt.Errorf("invalid SSH key format: %w", err)
			}
		}
		options.SSHKey = expandedPath
	}

	if options.AuthType == internalfetch.AuthHTTP && options.Token == "" {
		return fmt.Errorf("you must specify token with auth-type 'http'")
	}

	return nil
}
