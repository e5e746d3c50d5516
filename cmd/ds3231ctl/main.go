// ds3231ctl reads and sets a DS3231 real-time clock attached to a Linux host's I2C bus.
//
//	ds3231ctl [flags] get            print the clock's time
//	ds3231ctl [flags] set <time|now> set the clock to an RFC 3339 time or the host's time
//	ds3231ctl [flags] sync           set the clock from an NTP server
//	ds3231ctl [flags] status         report the oscillator stop flag
//	ds3231ctl [flags] clear          clear the oscillator stop flag
//	ds3231ctl [flags] shell          read commands from standard input
//
// Settings come from an optional YAML file (--config) and are overridden by flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/tinyrtc/drivers"
	"github.com/tinyrtc/drivers/ds3231"
	"github.com/tinyrtc/drivers/i2cdev"
	"github.com/tinyrtc/drivers/internal/config"
	"github.com/tinyrtc/drivers/internal/log"
	"github.com/tinyrtc/drivers/internal/sntp"
)

// openBus and queryNTP are replaced in tests.
var (
	openBus = func(path string) (drivers.I2C, io.Closer, error) {
		bus, err := i2cdev.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return bus, bus, nil
	}
	queryNTP = sntp.Query
)

var errUsage = errors.New("usage: ds3231ctl [flags] get|set|sync|status|clear|shell")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("ds3231ctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	configPath := flagSet.StringP("config", "c", "", "path to YAML config file")
	busPath := flagSet.String("bus", "", "i2c adapter device (default /dev/i2c-1)")
	address := flagSet.Uint8("address", 0, "i2c address of the clock (default 0x68)")
	century := flagSet.Uint8("base-century", 0, "first century of the representable 200 years: 19, 20 or 21 (default 20)")
	hourMode := flagSet.String("hour-mode", "", "hours register format for writes: 12h or 24h (default 24h)")
	ignoreOSF := flagSet.Bool("ignore-osf", false, "read the time even when the oscillator stop flag is set")
	ntpServer := flagSet.String("ntp-server", "", "NTP server used by sync (default pool.ntp.org)")
	logLevel := flagSet.String("log-level", "", "log level (default info)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(stdout, errUsage)
			fmt.Fprint(stdout, flagSet.FlagUsages())
			return nil
		}
		return err
	}
	if flagSet.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("bus") {
		cfg.Bus = *busPath
	}
	if flagSet.Changed("address") {
		cfg.Address = *address
	}
	if flagSet.Changed("base-century") {
		cfg.BaseCentury = *century
	}
	if flagSet.Changed("hour-mode") {
		cfg.HourMode = *hourMode
	}
	if flagSet.Changed("ignore-osf") {
		cfg.IgnoreOscillatorStop = *ignoreOSF
	}
	if flagSet.Changed("ntp-server") {
		cfg.NTPServer = *ntpServer
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	driverConfig, err := cfg.Driver()
	if err != nil {
		return err
	}

	logger := log.New(log.Config{Level: cfg.LogLevel, Output: stderr, Service: "ds3231ctl", Console: true})

	bus, closer, err := openBus(cfg.Bus)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Debug().Err(err).Str("bus", cfg.Bus).Msg("close i2c adapter")
		}
	}()
	logger.Debug().Str("bus", cfg.Bus).Uint8("address", cfg.Address).Msg("opened i2c adapter")

	rtc := ds3231.New(bus)
	if err := rtc.Configure(driverConfig); err != nil {
		return err
	}

	t := &tool{
		rtc: &rtc,
		cfg: cfg,
		log: log.WithComponent(logger, "ds3231"),
		in:  stdin,
		out: stdout,
	}
	return t.exec(ctx, flagSet.Args(), false)
}
