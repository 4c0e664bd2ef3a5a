// Command snmpcheck is a one-shot Nagios-compatible SNMPv2c health probe.
// It walks the detected device's vendor MIBs via plugins/detect and prints
// a single Nagios plugin output line, exiting with the corresponding
// status code. Grounded on nssct/main.py.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/nssct/snmpcheck/backend/mockbackend"
	"github.com/nssct/snmpcheck/backend/netbackend"
	"github.com/nssct/snmpcheck/controller"
	"github.com/nssct/snmpcheck/internal/problog"
	"github.com/nssct/snmpcheck/plugins/detect"
	"github.com/nssct/snmpcheck/report"
	"github.com/nssct/snmpcheck/snmpengine"
)

// finish prints coll's Nagios output line and exits with its state code,
// mirroring nssct/main.py's finish().
func finish(coll *report.Collector) {
	fmt.Println(coll.String())
	os.Exit(int(coll.State()))
}

// exitUnknown masks every startup failure to UNKNOWN, mirroring
// nssct/main.py's CustomParser.exit: a probe that cannot even start must
// never be mistaken by Nagios for a down host or service.
func exitUnknown(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(int(report.UNKNOWN))
}

func main() {
	agent := flag.String("agent", "", "check the given SNMP agent")
	mock := flag.String("mock", "", "check a recorded snmpwalk text file instead of a live agent")
	community := flag.String("community", "public", "SNMP community to use when -agent is given")
	bulk := flag.Int("bulk", -1, "use the bulk engine with N additional lookahead GETNEXTs (-1 disables bulk)")
	cache := flag.Bool("cache", false, "cache SNMP results so repeated plugin queries for the same object are coalesced")
	level := flag.String("level", "info", "log level: debug, info, warn, error")
	timeout := flag.Duration("timeout", 5*time.Second, "per-request SNMP timeout when -agent is given")
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		// flag has already printed the error and usage to stderr.
		os.Exit(int(report.UNKNOWN))
	}

	if (*agent == "") == (*mock == "") {
		exitUnknown("exactly one of -agent or -mock is required")
	}

	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		exitUnknown("invalid -level %q: %v", *level, err)
	}
	zl = zl.Level(lvl)
	log := problog.Zerolog{L: zl}

	coll := report.NewCollector()

	var back snmpengine.Backend
	if *mock != "" {
		data, err := os.ReadFile(*mock)
		if err != nil {
			exitUnknown("reading -mock file %q: %v", *mock, err)
		}
		mb, err := mockbackend.FromText(string(data))
		if err != nil {
			exitUnknown("parsing -mock file %q: %v", *mock, err)
		}
		back = mb
	} else {
		b, err := netbackend.New(netbackend.Config{
			Agent:     *agent,
			Community: *community,
			Timeout:   *timeout,
		}, log)
		if err != nil {
			var dnsErr *net.DNSError
			if errors.As(err, &dnsErr) {
				coll.AddAlert(report.NewAlert(report.UNKNOWN, "resolution of %s failed: %v", *agent, dnsErr))
				finish(coll)
			}
			exitUnknown("connecting to agent %s: %v", *agent, err)
		}
		defer b.Close()
		back = b
	}

	var eng snmpengine.Engine
	if *bulk >= 0 {
		eng = snmpengine.NewBulkEngine(back, *bulk, 0, log)
	} else {
		eng = snmpengine.NewSimpleEngine(back, log)
	}
	if *cache {
		eng = snmpengine.NewCachingEngine(eng, log)
	}

	ctl := controller.New(eng, log)
	ctl.Run(coll, []controller.Plugin{detect.Plugin})
	finish(coll)
}
