package cmd

import (
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/priyxstudio/pathway/router/tokens"
)

var tokenArgs struct {
	user string
	ttl  time.Duration
}

func newTokenCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "token",
		Short: "Issues a bearer token for a user, signed with the configured secret.",
		PreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
			initLogging()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			token, err := tokens.Issue(tokenArgs.user, tokenArgs.ttl)
			if err != nil {
				log.WithField("error", err).Fatal("failed to issue token")
			}
			fmt.Println(token)
		},
	}

	command.Flags().StringVar(&tokenArgs.user, "user", "", "the id of the user the token is issued for")
	command.Flags().DurationVar(&tokenArgs.ttl, "ttl", 24*time.Hour, "how long the token stays valid")
	_ = command.MarkFlagRequired("user")

	return command
}
