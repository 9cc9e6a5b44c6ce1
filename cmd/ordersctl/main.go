// Command ordersctl is the operator's terminal for the order-management API:
// it submits intake drafts and drives orders through their lifecycle.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/coordinator"
	"github.com/kendall-kelly/formalwear-orders-api/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries what every subcommand shares once the root flags are parsed
type cli struct {
	apiURL     string
	token      string
	assumeYes  bool
	httpClient *http.Client

	cfg    *config.ClientConfig
	log    *zap.Logger
	client *services.OrderAPIClient
}

// setup loads the client configuration. Flags win over the environment.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.OrderAPIURL = c.apiURL
	}
	if cmd.Flags().Changed("token") {
		cfg.OrderAPIToken = c.token
	}

	logger, err := config.NewLogger(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.log = logger
	c.client = services.NewOrderAPIClient(services.Session{
		BaseURL: cfg.OrderAPIURL,
		Token:   cfg.OrderAPIToken,
	}, c.httpClient)
	return nil
}

func (c *cli) confirmer(cmd *cobra.Command) coordinator.Confirmer {
	if c.assumeYes {
		return coordinator.AlwaysConfirm{}
	}
	return newPromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
}

func (c *cli) coordinator(cmd *cobra.Command) *coordinator.Coordinator {
	return coordinator.New(c.client, c.client, c.confirmer(cmd), coordinator.WithLogger(c.log))
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ordersctl",
		Short:         "Operate formal-wear service orders",
		Long:          `ordersctl submits intake drafts to the order-management API and moves orders through production, pickup and return.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "order API base URL (default $ORDER_API_URL)")
	rootCmd.PersistentFlags().StringVar(&c.token, "token", "", "bearer token (default $ORDER_API_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&c.assumeYes, "yes", "y", false, "do not ask before irreversible actions")

	rootCmd.AddCommand(newIntakeCmd(c))
	rootCmd.AddCommand(newExportCmd(c))
	rootCmd.AddCommand(newActionsCmd(c))
	rootCmd.AddCommand(newAssignCmd(c))
	rootCmd.AddCommand(newStartCmd(c))
	rootCmd.AddCommand(newReadyCmd(c))
	rootCmd.AddCommand(newPickupCmd(c))
	rootCmd.AddCommand(newReturnedCmd(c))
	rootCmd.AddCommand(newRefuseCmd(c))
	rootCmd.AddCommand(newReopenCmd(c))
	rootCmd.AddCommand(newBoardCmd(c))
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	rootCmd := newRootCmd(c)
	err := rootCmd.ExecuteContext(ctx)
	if c.log != nil {
		c.log.Sync()
	}
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
		stop()
		os.Exit(1)
	}
}
