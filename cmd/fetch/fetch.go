package fetch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scanward/scanward/internal/fetch"
	"github.com/scanward/scanward/pkg/shared"
	"github.com/scanward/scanward/pkg/shared/config"
	"github.com/scanward/scanward/pkg/shared/logger"
)

// RunOptionsFetch holds the arguments for the fetch command.
type RunOptionsFetch struct {
	AuthType     string
	SSHKey       string
	Username     string
	Token        string
	TargetFolder string
}

var (
	AppConfig         *config.Config
	fetchOptions      RunOptionsFetch
	exampleFetchUsage = `  # Fetch a public repository over https
  scanward fetch https://github.com/example/project

  # Fetch with an ssh key
  scanward fetch --auth-type ssh-key --ssh-key ~/.ssh/id_ed25519 git@github.com:example/project.git

  # Fetch a private repository over https with a token
  scanward fetch --auth-type http --username ci --token $GIT_TOKEN https://github.com/example/project

  # Fetch into a specific folder, then scan it
  scanward fetch --target /tmp/project https://github.com/example/project
  scanward scan /tmp/project`
)

var FetchCmd = &cobra.Command{
	Use:                   "fetch [--auth-type TYPE] [--ssh-key PATH] [--target PATH] URL",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleFetchUsage,
	Short:                 "Fetches a remote repository so it can be scanned locally",
	RunE:                  runFetchCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runFetchCommand executes the fetch command.
func runFetchCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-fetch")

	if err := validateFetchArgs(&fetchOptions, args); err != nil {
		logger.Error("invalid fetch arguments", "error", err)
		return err
	}

	target, err := fetch.Fetch(cmd.Context(), logger, fetch.Options{
		URL:          args[0],
		TargetFolder: fetchOptions.TargetFolder,
		AuthType:     fetchOptions.AuthType,
		Username:     fetchOptions.Username,
		Token:        fetchOptions.Token,
		SSHKeyPath:   fetchOptions.SSHKey,
	})
	if err != nil {
		logger.Error("fetch command failed", "error", err)
		return err
	}

	fmt.Println(target)
	logger.Info("fetch command completed successfully", "target", target)
	return nil
}

func init() {
	FetchCmd.Flags().StringVarP(&fetchOptions.AuthType, "auth-type", "a", "none", "Type of authentication (none, http, ssh-key).")
	FetchCmd.Flags().StringVarP(&fetchOptions.SSHKey, "ssh-key", "k", "", "Path to an SSH key.")
	FetchCmd.Flags().StringVarP(&fetchOptions.Username, "username", "u", "", "Username for http authentication.")
	FetchCmd.Flags().StringVarP(&fetchOptions.Token, "token", "t", "", "Token or password for http authentication.")
	FetchCmd.Flags().StringVar(&fetchOptions.TargetFolder, "target", "", "Folder to clone into (default: derived from the repository URL).")
	FetchCmd.Flags().BoolP("help", "h", false, "Show help for the fetch command.")
}
