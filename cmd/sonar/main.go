//go:build !tinygo

// Command sonar runs the distance meter on simulated hardware and serves it
// over HTTP: the LCD as an image, and readings over a websocket.
//
// Usage:
//
//	sonar [flags]
//
// Arguments in $SONAR_ARGS are parsed ahead of the command line, so
// command line flags win.
//
// Examples:
//
//	# obstacle 42.5 cm away, readings every 2s
//	sonar -distance 42.5 -config sonar.yaml
//
//	# publish readings to a broker too
//	sonar -mqtt tcp://localhost:1883 -log-level debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/shlex"

	"github.com/merliot/sonar"
	"github.com/merliot/sonar/meter"
)

type options struct {
	id, model, name string
	addr            string
	tlsHost         string
	config          string
	distance        float64
	user, passwd    string
	hub             string
	mqtt            string
	mqttTopic       string
	logLevel        string
}

// arguments returns the command line with the words of env in front
func arguments(env string, argv []string) ([]string, error) {
	words, err := shlex.Split(env)
	if err != nil {
		return nil, fmt.Errorf("SONAR_ARGS: %w", err)
	}
	return append(words, argv...), nil
}

func parse(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("sonar", flag.ContinueOnError)
	fs.StringVar(&o.id, "id", "sonar_01", "Thing id")
	fs.StringVar(&o.model, "model", "sonar", "Thing model")
	fs.StringVar(&o.name, "name", "bench", "Thing name")
	fs.StringVar(&o.addr, "addr", sonar.GetEnv("SONAR_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&o.tlsHost, "tls", "", "Serve HTTPS for this host name with an ACME certificate")
	fs.StringVar(&o.config, "config", "", "YAML config file")
	fs.Float64Var(&o.distance, "distance", 100, "Simulated obstacle distance in cm; negative for no echo")
	fs.StringVar(&o.user, "user", sonar.GetEnv("SONAR_USER", ""), "Basic auth user; empty turns auth off")
	fs.StringVar(&o.passwd, "passwd", sonar.GetEnv("SONAR_PASSWD", ""), "Basic auth password")
	fs.StringVar(&o.hub, "hub", "", "Hub websocket URL to dial, e.g. ws://hub:8000/ws/")
	fs.StringVar(&o.mqtt, "mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	fs.StringVar(&o.mqttTopic, "mqtt-topic", "", "MQTT topic; default sonar/<id>")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.mqttTopic == "" {
		o.mqttTopic = "sonar/" + o.id
	}
	return o, nil
}

func run(o options) error {
	if err := sonar.SetLogLevel(o.logLevel); err != nil {
		return err
	}

	cfg := meter.DefaultConfig()
	if o.config != "" {
		var err error
		if cfg, err = meter.LoadConfig(o.config); err != nil {
			return err
		}
	}

	hw, _, err := meter.NewSimHardware(cfg, o.distance)
	if err != nil {
		return fmt.Errorf("hardware: %w", err)
	}
	m := meter.New(o.id, o.model, o.name, cfg, hw)

	server := sonar.NewServer(m)
	server.Addr = o.addr
	server.BasicAuth(o.user, o.passwd)

	if o.hub != "" {
		if err := server.Dial(o.user, o.passwd, o.hub); err != nil {
			return fmt.Errorf("hub: %w", err)
		}
	}

	if o.mqtt != "" {
		sock, err := sonar.ConnectMQTT(server.Bus, sonar.MQTTConfig{
			Broker:   o.mqtt,
			ClientID: o.id,
			Topic:    o.mqttTopic,
			User:     o.user,
			Passwd:   o.passwd,
		})
		if err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		defer sock.Close()
	}

	errs := make(chan error, 1)
	go func() {
		if o.tlsHost != "" {
			errs <- server.ServeTLS(o.tlsHost)
			return
		}
		sonar.Infof("Listening on %s", o.addr)
		errs <- server.ListenAndServe()
	}()

	go server.Run()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case s := <-sig:
		sonar.Infof("Got %s, shutting down", s)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
	return nil
}

func main() {
	args, err := arguments(os.Getenv("SONAR_ARGS"), os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	o, err := parse(args)
	if err != nil {
		os.Exit(2)
	}
	if err := run(o); err != nil {
		fmt.Fprintln(os.Stderr, "sonar:", err)
		os.Exit(1)
	}
}
