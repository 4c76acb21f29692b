package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lesson-quiz-service/internal/config"
	"lesson-quiz-service/internal/identity"
)

// NewIdentityCmd prints (and optionally names) the device identity used to
// key quiz attempts. The id is generated on first use and stays stable.
func NewIdentityCmd(configPath *string) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Show or name this device's quiz identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			path := cfg.Identity.Path
			if path == "" {
				path = ".quiz/identity.json"
			}

			store := identity.NewFileStore(path)

			var id identity.DeviceIdentity
			if name != "" {
				id, err = store.SetDisplayName(name)
			} else {
				id, err = store.Load()
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "userId: %s\n", id.UserID)
			if id.DisplayName != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "displayName: %s\n", id.DisplayName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name to record for the ranking")
	return cmd
}
