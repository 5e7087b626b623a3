package command

import (
	"time"

	commandHandler "keyhub/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(
	NewCommand,
	commandHandler.NewMaintenanceHandler,
	commandHandler.NewTokenHandler,
)

type Command struct {
	maintenanceHandler *commandHandler.MaintenanceHandler
	tokenHandler       *commandHandler.TokenHandler
}

// NewCommand .
func NewCommand(
	maintenanceHandler *commandHandler.MaintenanceHandler,
	tokenHandler *commandHandler.TokenHandler,
) *Command {
	return &Command{
		maintenanceHandler: maintenanceHandler,
		tokenHandler:       tokenHandler,
	}
}

// run 每個子指令各自建立一次依賴，結束時釋放連線
func run(newCmd func() (*Command, func(), error), fn func(*Command, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		command, cleanup, err := newCmd()
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(command, cmd, args)
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	var (
		role string
		ttl  time.Duration
	)
	adminToken := &cobra.Command{
		Use:   "admin-token <username>",
		Short: "issue an admin JWT",
		Args:  cobra.ExactArgs(1),
		RunE: run(newCmd, func(c *Command, cmd *cobra.Command, args []string) error {
			return c.tokenHandler.IssueAdmin(cmd, args, role, ttl)
		}),
	}
	adminToken.Flags().StringVar(&role, "role", "admin", "admin or readonly")
	adminToken.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "repair-index <ownerId>",
			Short: "rebuild the owner index of one owner",
			Args:  cobra.ExactArgs(1),
			RunE: run(newCmd, func(c *Command, cmd *cobra.Command, args []string) error {
				return c.maintenanceHandler.RepairIndex(cmd, args)
			}),
		},
		&cobra.Command{
			Use:   "purge <ownerId>",
			Short: "hard delete every key and execution record of one owner",
			Args:  cobra.ExactArgs(1),
			RunE: run(newCmd, func(c *Command, cmd *cobra.Command, args []string) error {
				return c.maintenanceHandler.Purge(cmd, args)
			}),
		},
		&cobra.Command{
			Use:   "refresh-config",
			Short: "reload the key policy from the store and print it",
			Args:  cobra.NoArgs,
			RunE: run(newCmd, func(c *Command, cmd *cobra.Command, args []string) error {
				return c.maintenanceHandler.RefreshConfig(cmd, args)
			}),
		},
		adminToken,
	)
}
