// cmd/zserve-passwd/main.go prints a bcrypt hash for the auth.users map.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errEmptyPassword    = errors.New("password is empty")
	errNotTerminal      = errors.New("stdin is not a terminal")
)

// passwordReader reads one password without echo.
type passwordReader func(prompt string) ([]byte, error)

func main() {
	user := flag.String("user", "", "User name to print with the hash")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	hash, err := run(terminalReader, *cost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	writeEntry(os.Stdout, *user, hash)
}

func terminalReader(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errNotTerminal
	}

	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	return term.ReadPassword(fd)
}

func run(read passwordReader, cost int) ([]byte, error) {
	first, err := read("Password: ")
	if err != nil {
		return nil, err
	}

	if len(first) == 0 {
		return nil, errEmptyPassword
	}

	second, err := read("Confirm: ")
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(first, second) {
		return nil, errPasswordMismatch
	}

	return bcrypt.GenerateFromPassword(first, cost)
}

func writeEntry(w io.Writer, user string, hash []byte) {
	if user == "" {
		fmt.Fprintln(w, string(hash))
		return
	}

	fmt.Fprintf(w, "%q: %q\n", user, string(hash))
}
