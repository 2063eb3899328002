package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kdrama-dashboard/internal/cli"
	"kdrama-dashboard/internal/logging"
	"kdrama-dashboard/internal/quiz"
	"kdrama-dashboard/internal/userclient"
)

const defaultHTTPTimeout = 5 * time.Second

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var serverURL string
	var sessionID string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the episode-count quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			out := cmd.OutOrStdout()

			if serverURL != "" {
				client := userclient.NewHTTPClient(serverURL, sessionID, &http.Client{Timeout: defaultHTTPTimeout})
				if err := cli.Run(cmd.Context(), in, out, client); err != nil {
					return userclient.DescribeError(err, serverURL)
				}
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			data, err := ctx.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			engine, err := ctx.newEngine(data)
			if err != nil {
				return err
			}

			// Local play logs nothing so the quiz output stays readable.
			service := quiz.NewService(engine, quiz.NewMemoryStore(cfg.SessionTTL()), nil, logging.Discard())
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			return cli.Run(cmd.Context(), in, out, cli.NewLocalDriver(service, sessionID))
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Play against a running kdrama server instead of a local dataset")
	cmd.Flags().StringVar(&sessionID, "session", "", "Resume a session id (remote play only keeps sessions across runs)")
	return cmd
}
