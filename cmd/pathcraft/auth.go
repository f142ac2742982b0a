package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and save the access token",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(2),
	RunE:  runRegister,
}

var registerFullName string

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the saved access token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	registerCmd.Flags().StringVar(&registerFullName, "name", "", "full name")
	rootCmd.AddCommand(loginCmd, registerCmd, whoamiCmd, logoutCmd)
}

func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	username := args[0]
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	client, cfg, dir, err := newClient()
	if err != nil {
		return err
	}

	token, err := client.Login(cmd.Context(), username, password)
	if err != nil {
		return err
	}

	cfg.Username = username
	cfg.Token = token
	if err := cfg.Save(dir); err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(map[string]string{"username": username, "status": "logged in"})
	}
	fmt.Printf("Logged in as %s\n", username)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	username, email := args[0], args[1]
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	client, _, _, err := newClient()
	if err != nil {
		return err
	}

	user, err := client.Register(cmd.Context(), username, email, registerFullName, password)
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(user)
	}
	fmt.Printf("Registered %s. Run 'pathcraft login %s' to sign in.\n", user.Username, user.Username)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	user, err := client.Me(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(user)
	}
	fmt.Printf("%s", user.Username)
	if user.FullName != "" {
		fmt.Printf(" (%s)", user.FullName)
	}
	fmt.Printf(" <%s>\n", user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Token = ""
	if err := cfg.Save(dir); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}
