// Command hashpw reads a password from the terminal and prints its bcrypt
// hash, for seeding user rows by hand.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/opavlenko/taskhub/internal/server/auth"
)

func main() {
	cost := flag.Int("cost", 0, "bcrypt cost (0 means the library default)")
	flag.Parse()

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}
	if len(password) == 0 {
		log.Fatal("empty password")
	}

	hasher := auth.NewPasswordHasher(*cost)
	hash, err := hasher.Hash(string(password))
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	fmt.Println(hash)
}
