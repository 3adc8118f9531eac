package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-chat-auth"
	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create a credentials account",
		Long: `Create a credentials account for email.

The password is read from the first line of standard input:

  echo "$PASSWORD" | chat-auth register alice@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			return runRegister(cmd, app, args[0])
		},
	}
	return cmd
}

func runRegister(cmd *cobra.Command, app *App, email string) error {
	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	registrar := auth.NewRegistrar(app.repo.Users(), app.snapshot).
		WithLogger(app.GetLogger("register"))

	user, err := registrar.Register(cmd.Context(), email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", user.Email, user.ID)
	return nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", auth.ErrNoEmptyString
	}
	return password, nil
}
