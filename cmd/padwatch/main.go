// Command padwatch connects to a running padnav and prints controller
// state and navigation intents as they arrive.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/lxzan/gws"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/soar/padnav/internal/hub"
	"github.com/soar/padnav/internal/logging"
)

type options struct {
	addr      string
	vibrate   string
	intensity float64
	calibrate bool
	rescan    bool
	logLevel  string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("padwatch", pflag.ContinueOnError)
	fs.StringVar(&o.addr, "addr", "localhost:8080", "padnav address")
	fs.StringVar(&o.vibrate, "vibrate", "", "send a vibrate command with this pattern on connect")
	fs.Float64Var(&o.intensity, "intensity", 1, "intensity for --vibrate")
	fs.BoolVar(&o.calibrate, "calibrate", false, "run haptics calibration on connect")
	fs.BoolVar(&o.rescan, "rescan", false, "ask padnav to rescan controllers on connect")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

// commands returns the client messages to send once connected.
func (o options) commands() []hub.ClientMessage {
	var out []hub.ClientMessage
	if o.rescan {
		out = append(out, hub.ClientMessage{Type: hub.CmdRescan})
	}
	if o.vibrate != "" {
		intensity := o.intensity
		out = append(out, hub.ClientMessage{Type: hub.CmdVibrate, Pattern: o.vibrate, Intensity: &intensity})
	}
	if o.calibrate {
		out = append(out, hub.ClientMessage{Type: hub.CmdCalibrate})
	}
	return out
}

type watcher struct {
	gws.BuiltinEventHandler
	out      io.Writer
	logger   *zap.SugaredLogger
	commands []hub.ClientMessage
	closed   chan error
}

func (w *watcher) OnOpen(socket *gws.Conn) {
	for _, cmd := range w.commands {
		data, err := json.Marshal(cmd)
		if err != nil {
			w.logger.Warnw("encode command", "error", err)
			continue
		}
		if err := socket.WriteMessage(gws.OpcodeText, data); err != nil {
			w.logger.Warnw("send command", "type", cmd.Type, "error", err)
		}
	}
}

func (w *watcher) OnClose(socket *gws.Conn, err error) {
	w.closed <- err
}

func (w *watcher) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	var msg hub.WSMessage
	if err := json.Unmarshal(message.Bytes(), &msg); err != nil {
		w.logger.Debugw("undecodable message", "error", err)
		return
	}
	if line := describe(msg); line != "" {
		fmt.Fprintln(w.out, line)
	}
}

// describe renders one server message as a single line.
func describe(msg hub.WSMessage) string {
	switch msg.Type {
	case hub.TypeFull:
		if msg.Data == nil {
			return ""
		}
		if !msg.Data.Connected {
			return fmt.Sprintf("#%d no controller (tracked %d)", msg.Seq, msg.Data.Tracked)
		}
		family := ""
		if msg.Data.Family != nil {
			family = msg.Data.Family.String()
		}
		return fmt.Sprintf("#%d %s %q slot %d haptics=%t (tracked %d)",
			msg.Seq, family, msg.Data.DeviceID, msg.Data.Slot, msg.Data.Haptics, msg.Data.Tracked)
	case hub.TypeIntent:
		if msg.Intents == nil {
			return ""
		}
		names := make([]string, 0, 2)
		for _, i := range msg.Intents.Active() {
			names = append(names, i.String())
		}
		return fmt.Sprintf("#%d %s", msg.Seq, strings.Join(names, " "))
	case hub.TypeAck:
		if msg.Error != "" {
			return fmt.Sprintf("%s failed: %s", msg.Command, msg.Error)
		}
		return msg.Command + " ok"
	}
	return ""
}

func run(o options, out io.Writer, logger *zap.SugaredLogger) error {
	w := &watcher{
		out:      out,
		logger:   logger,
		commands: o.commands(),
		closed:   make(chan error, 1),
	}
	socket, _, err := gws.NewClient(w, &gws.ClientOption{
		Addr: "ws://" + o.addr + "/ws",
	})
	if err != nil {
		return errors.Wrapf(err, "connect %s", o.addr)
	}
	go socket.ReadLoop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	select {
	case <-sig:
		socket.WriteClose(1000, nil)
		return nil
	case err := <-w.closed:
		var ce *gws.CloseError
		if err == nil || errors.As(err, &ce) {
			return nil
		}
		return errors.Wrap(err, "connection closed")
	}
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.New(o.logLevel, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(o, os.Stdout, logger); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
