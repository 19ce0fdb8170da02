// Command pedis-cli sends a single command to a running pedis server and
// prints the reply, using the same INLINE framing and reply grammar
// internal/protocol parses and builds server-side.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ehrlich-b/pedis/internal/protocol"
)

var (
	flagHost string
	flagPort int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pedis-cli [command] [args...]",
		Short: "Send one command to a pedis server and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}

	rootCmd.Flags().StringVar(&flagHost, "host", "127.0.0.1", "server host")
	rootCmd.Flags().IntVar(&flagPort, "port", 6379, "server port")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pedis-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", flagHost, flagPort))
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	line := strings.Join(args, " ")
	if _, err := fmt.Fprintf(conn, "%s\r\n", line); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	reply, err := protocol.ReadReply(bufio.NewReader(conn))
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	fmt.Print(reply)
	return nil
}
