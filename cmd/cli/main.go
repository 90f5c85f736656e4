package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/reelguess/cmd/cli/catalogimport"
	"github.com/myrjola/reelguess/cmd/cli/play"
	"github.com/spf13/cobra"
	"os"
)

func init() {
	// The .env file is optional, flags and the environment work without it.
	_ = godotenv.Load()
	rootCmd.AddGroup(play.Group)
	rootCmd.AddCommand(play.Play)
	rootCmd.AddGroup(catalogimport.Group)
	rootCmd.AddCommand(catalogimport.Import)
}

var rootCmd = &cobra.Command{
	Use:  "reelguess-cli",
	Long: `Command line utilities for Reelguess, the movie guessing game.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
