package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/phsym/console-slog"
)

var (
	version    string
	listenAddr string = "127.0.0.1:7939"
)

func main() {
	opts, optind, err := getopt.Getopts(os.Args, "dl:")
	if err != nil {
		slog.Error("usage: stackwm [-d] [-l addr] [command]", "error", err)
		os.Exit(1)
	}
	level := slog.LevelInfo
	for _, opt := range opts {
		switch opt.Option {
		case 'd':
			level = slog.LevelDebug
		case 'l':
			listenAddr = opt.Value
		}
	}
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))

	// With an argument we are the remote control: write the command
	// property and get out.
	if args := os.Args[optind:]; len(args) > 0 {
		os.Exit(runCommandMode(args[0]))
	}

	if version != "" {
		slog.Info("stackwm", "version", version)
	}
	wm := NewWM()
	if err := wm.Init(); err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer wm.Deinit()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		// Route shutdown through the command mailbox: the property
		// write is also the event that unblocks WaitForEvent.
		if err := sendCommand(wm.xc, wm.xroot.Root, "quit"); err != nil {
			slog.Error("could not deliver quit", "error", err)
			os.Exit(1)
		}
	}()

	wm.api = NewAPIServer(wm, listenAddr)
	go wm.api.Start()

	for {
		err := wm.handleEvent()
		switch err {
		case errQuit:
			return
		case nil:
		default:
			slog.Warn("handler error", "error", err)
		}
	}
}

func runCommandMode(cmd string) int {
	xc, err := xgb.NewConn()
	if err != nil {
		slog.Error("cannot open display", "error", err)
		return 1
	}
	defer xc.Close()
	root := xproto.Setup(xc).DefaultScreen(xc).Root
	if err := sendCommand(xc, root, cmd); err != nil {
		slog.Error("could not send command", "cmd", cmd, "error", err)
		return 1
	}
	return 0
}
