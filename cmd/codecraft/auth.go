package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to the remote store",
	Long:  `Sign in to the remote store. The password is read from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account on the remote store",
	Long:  `Create an account on the remote store. The password is read from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored credential",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	password, err := readPassword()
	if err != nil {
		return err
	}
	if err := a.client.Login(cmd.Context(), args[0], password); err != nil {
		return fmt.Errorf("signing in: %w", err)
	}
	printInfo("Signed in as %s", args[0])
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	password, err := readPassword()
	if err != nil {
		return err
	}
	if err := a.client.Register(cmd.Context(), args[0], password); err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	printInfo("Registered and signed in as %s", args[0])
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.client.Logout(); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	printInfo("Signed out")
	return nil
}
