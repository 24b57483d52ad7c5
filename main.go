// ABOUTME: Entry point for the freelance CLI
// ABOUTME: Browses, posts and bids on marketplace projects from the terminal

package main

import (
	"fmt"
	"os"

	"github.com/Modhak129/WEB-freelance/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
