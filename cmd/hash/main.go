// Package main is an ops utility that bcrypt-hashes a password read from its
// argument, for manually seeding or resetting accounts in the users table
// without running the full server.
package main

import (
	"fmt"
	"os"

	"github.com/skills-hub/skills-hub/internal/auth"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <password>\n", os.Args[0])
		os.Exit(1)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
