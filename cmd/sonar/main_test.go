package main

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestArguments(t *testing.T) {
	c := qt.New(t)
	args, err := arguments(`-name "front door" -distance 12`, []string{"-distance", "40"})
	c.Assert(err, qt.IsNil)
	c.Assert(args, qt.DeepEquals, []string{"-name", "front door", "-distance", "12", "-distance", "40"})

	o, err := parse(args)
	c.Assert(err, qt.IsNil)
	// the command line wins
	c.Assert(o.distance, qt.Equals, 40.0)
	c.Assert(o.name, qt.Equals, "front door")
	c.Assert(o.mqttTopic, qt.Equals, "sonar/sonar_01")

	_, err = arguments(`-name "unterminated`, nil)
	c.Assert(err, qt.ErrorMatches, "SONAR_ARGS: .*")
}

func TestParseDefaults(t *testing.T) {
	c := qt.New(t)
	t.Setenv("SONAR_ADDR", ":9090")
	o, err := parse(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(o.addr, qt.Equals, ":9090")
	c.Assert(o.logLevel, qt.Equals, "info")
	c.Assert(o.hub, qt.Equals, "")

	_, err = parse([]string{"-bogus"})
	c.Assert(err, qt.Not(qt.IsNil))
}
