package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/shlex"
	"github.com/rs/zerolog"

	"github.com/tinyrtc/drivers/ds3231"
	"github.com/tinyrtc/drivers/internal/config"
)

type tool struct {
	rtc *ds3231.Device
	cfg config.Config
	log zerolog.Logger
	in  io.Reader
	out io.Writer
}

// now is replaced in tests.
var now = time.Now

func (t *tool) exec(ctx context.Context, args []string, inShell bool) error {
	switch args[0] {
	case "get":
		return t.get(args[1:])
	case "set":
		return t.set(args[1:])
	case "sync":
		return t.sync(ctx, args[1:])
	case "status":
		return t.status(args[1:])
	case "clear":
		return t.clear(args[1:])
	case "shell":
		if inShell {
			return errors.New("already in a shell")
		}
		return t.shell(ctx)
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func noArgs(cmd string, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%s takes no arguments", cmd)
	}
	return nil
}

func (t *tool) get(args []string) error {
	if err := noArgs("get", args); err != nil {
		return err
	}
	dt, err := t.rtc.ReadDateTime()
	if errors.Is(err, ds3231.ErrStaleClock) {
		return fmt.Errorf("%w (set the time, then run clear)", err)
	}
	if err != nil {
		return err
	}
	// fields are printed as stored; dt.Time() would normalize dates such as 31 February
	fmt.Fprintf(t.out, "%04d-%02d-%02dT%02d:%02d:%02dZ %s\n",
		dt.Year(), dt.Month(), dt.Day(), dt.Hour(), dt.Minute(), dt.Second(), time.Weekday(dt.Weekday()-1))
	return nil
}

func (t *tool) set(args []string) error {
	if len(args) != 1 {
		return errors.New("set takes one argument: an RFC 3339 time or now")
	}
	var when time.Time
	if args[0] == "now" {
		when = now()
	} else {
		var err error
		when, err = time.Parse(time.RFC3339, args[0])
		if err != nil {
			return fmt.Errorf("parse time: %w", err)
		}
	}
	return t.write(when, "command line")
}

func (t *tool) sync(ctx context.Context, args []string) error {
	if err := noArgs("sync", args); err != nil {
		return err
	}
	when, err := queryNTP(ctx, t.cfg.NTPServer, t.cfg.NTPTimeout)
	if err != nil {
		return err
	}
	return t.write(when, t.cfg.NTPServer)
}

func (t *tool) write(when time.Time, source string) error {
	when = when.UTC().Truncate(time.Second)
	if err := t.rtc.Set(when); err != nil {
		return err
	}
	t.log.Info().Time("time", when).Str("source", source).Msg("clock set")

	lost, err := t.rtc.LostPower()
	if err != nil {
		return err
	}
	if lost {
		t.log.Warn().Msg("oscillator stop flag still set, run clear once the time is correct")
	}
	return nil
}

func (t *tool) status(args []string) error {
	if err := noArgs("status", args); err != nil {
		return err
	}
	lost, err := t.rtc.LostPower()
	if err != nil {
		return err
	}
	if lost {
		fmt.Fprintln(t.out, "oscillator stopped: time is not valid")
	} else {
		fmt.Fprintln(t.out, "oscillator running")
	}
	return nil
}

func (t *tool) clear(args []string) error {
	if err := noArgs("clear", args); err != nil {
		return err
	}
	if err := t.rtc.ClearOscillatorStop(); err != nil {
		return err
	}
	t.log.Info().Msg("oscillator stop flag cleared")
	return nil
}

// shell runs commands read line by line until end of input or exit. Errors are reported and the shell continues.
func (t *tool) shell(ctx context.Context) error {
	scanner := bufio.NewScanner(t.in)
	for {
		fmt.Fprint(t.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(t.out)
			return scanner.Err()
		}
		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(t.out, "error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}
		if err := t.exec(ctx, args, true); err != nil {
			fmt.Fprintf(t.out, "error: %v\n", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
