package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	backendMode string
	useCloud    bool
	startMuted  bool
	bindAddr    string
)

var rootCmd = &cobra.Command{
	Use:   "nova",
	Short: "Nova - streaming voice chat assistant",
	Long: `Nova streams replies from a local or cloud language model, renders them
as they arrive and speaks each finished sentence in an English or Hindi voice.

Configuration is read from the environment and an optional .env file
(NOVA_* keys, DATABASE_URL). Flags override selected keys.`,
	SilenceUsage: true,
	RunE:         runChat,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat in the terminal (default)",
	RunE:  runChat,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat engine over HTTP and websockets",
	RunE:  runServe,
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List synthesis voices and the voice chosen per language",
	RunE:  runVoices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendMode, "backend", "", "backend mode: auto, http, openai, mock (overrides NOVA_BACKEND_MODE)")

	for _, cmd := range []*cobra.Command{rootCmd, chatCmd} {
		cmd.Flags().BoolVar(&useCloud, "cloud", false, "start with the cloud model")
		cmd.Flags().BoolVar(&startMuted, "mute", false, "start with speech muted")
	}
	serveCmd.Flags().StringVar(&bindAddr, "addr", "", "listen address (overrides NOVA_BIND_ADDR)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(voicesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
