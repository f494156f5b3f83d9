// File: cmd/netsock-echo/main.go
// Command netsock-echo runs the echo-server harness or sends a one-shot
// round-trip probe against it.
// License: Apache-2.0

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/struven/netsock/address"
	"github.com/struven/netsock/control"
	"github.com/struven/netsock/server"
	"github.com/struven/netsock/sockets"
)

func main() {
	rootCmd := &cobra.Command{Use: "netsock-echo"}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the echo server",
		RunE:  runServe,
	}
	serveCmd.Flags().String("config", "", "Path to a YAML config file")
	serveCmd.Flags().String("listen", "127.0.0.1:7777", "TCP listen address")
	serveCmd.Flags().String("unix", "", "Unix-domain socket path (overrides --listen)")
	serveCmd.Flags().Int("buffer-size", 4096, "Per-connection FIFO capacity in bytes")
	serveCmd.Flags().Duration("idle-timeout", 0, "Per-connection idle timeout (0 = unbounded)")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Send one message and verify the echo",
		RunE:  runPing,
	}
	pingCmd.Flags().String("addr", "127.0.0.1:7777", "Server address host:port")
	pingCmd.Flags().String("unix", "", "Unix-domain socket path (overrides --addr)")
	pingCmd.Flags().String("message", "hello", "Payload to send")
	pingCmd.Flags().Duration("timeout", 5*time.Second, "Connect timeout")

	rootCmd.AddCommand(serveCmd, pingCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func runServe(cmd *cobra.Command, _ []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	log, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var cfg *control.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if cfg, err = control.LoadConfig(path); err != nil {
			return err
		}
	} else {
		cfg = control.DefaultConfig()
		cfg.Listen, _ = cmd.Flags().GetString("listen")
		cfg.UnixPath, _ = cmd.Flags().GetString("unix")
		cfg.BufferSize, _ = cmd.Flags().GetInt("buffer-size")
		idle, _ := cmd.Flags().GetDuration("idle-timeout")
		cfg.IdleTimeout = control.Duration(idle)
	}

	srv, err := server.New(cfg, server.WithLogger(log))
	if err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	return srv.Close()
}

func runPing(cmd *cobra.Command, _ []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	message, _ := cmd.Flags().GetString("message")

	var (
		addr address.Addr
		err  error
	)
	if path, _ := cmd.Flags().GetString("unix"); path != "" {
		addr, err = address.ParseUnix(path)
	} else {
		cfg := control.DefaultConfig()
		cfg.Listen, _ = cmd.Flags().GetString("addr")
		addr, err = cfg.Address()
	}
	if err != nil {
		return err
	}

	ss := sockets.NewStreamSocket()
	defer func() { _ = ss.Close() }()
	if err := ss.ConnectTimeout(addr, timeout); err != nil {
		return err
	}
	if err := ss.SetReceiveTimeout(timeout); err != nil {
		return err
	}

	if _, err := ss.SendBytes([]byte(message)); err != nil {
		return err
	}
	reply := make([]byte, len(message))
	got := 0
	for got < len(reply) {
		n, err := ss.ReceiveBytes(reply[got:])
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("server closed the connection after %d bytes", got)
		}
		got += n
	}
	if string(reply) != message {
		return fmt.Errorf("echo mismatch: sent %q, got %q", message, reply)
	}
	fmt.Printf("echoed %d bytes from %s\n", got, addr)
	return nil
}
