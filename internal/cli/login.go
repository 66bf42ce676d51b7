package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"teamassist/internal/domain"
	"teamassist/internal/port"
)

// PasswordEnv lets scripts sign in without a prompt.
const PasswordEnv = "TEAMASSIST_PASSWORD"

var loginUser string

// login authenticates --user against the directory, prompting for the
// password on a terminal.
func login() (domain.User, error) {
	dir, err := loadDirectory()
	if err != nil {
		return domain.User{}, err
	}
	return signIn(dir)
}

func signIn(dir port.UserDirectory) (domain.User, error) {
	var err error
	username := strings.TrimSpace(loginUser)
	if username == "" {
		username, err = prompt("Username: ")
		if err != nil {
			return domain.User{}, err
		}
	}

	password, err := readPassword()
	if err != nil {
		return domain.User{}, err
	}

	user, err := dir.Authenticate(username, password)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func readPassword() (string, error) {
	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		return pw, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt("")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) (string, error) {
	if label != "" {
		fmt.Fprint(os.Stderr, label)
	}
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
