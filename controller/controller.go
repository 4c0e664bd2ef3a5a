// Package controller drives plugins against an Engine: it starts each
// plugin as a coroutine, pumps the engine's Step until every plugin has
// finished, and detects plugins that stall forever awaiting a Future the
// engine can no longer advance (spec.md §4.5).
package controller

import (
	"reflect"
	"runtime"

	"github.com/nssct/snmpcheck/future"
	"github.com/nssct/snmpcheck/internal/problog"
	"github.com/nssct/snmpcheck/report"
	"github.com/nssct/snmpcheck/snmpengine"
)

// Plugin is a suspendable check: it runs on its own goroutine (via
// future.RunCoroutine), issuing SNMP queries through ctl.Engine() and
// recording findings on coll, suspending at every future.AwaitOn(co, ...)
// call.
type Plugin func(ctl *Controller, coll *report.Collector, co *future.Coroutine) error

// Controller owns the Engine every started plugin queries, and tracks the
// set of plugins still running.
type Controller struct {
	engine  snmpengine.Engine
	log     problog.Logger
	pending map[*future.Future[struct{}]]string // plugin Future -> name, for diagnostics
}

// New returns a Controller driving engine. A nil log disables logging.
func New(engine snmpengine.Engine, log problog.Logger) *Controller {
	if log == nil {
		log = problog.NoOp
	}
	return &Controller{engine: engine, log: log, pending: make(map[*future.Future[struct{}]]string)}
}

// Engine returns the Engine plugins should issue Get/GetNext calls against.
func (c *Controller) Engine() snmpengine.Engine {
	return c.engine
}

// pluginName derives a diagnostic label for a Plugin value. Go cannot name
// a func value the way Python can repr a function object, so this looks up
// the package-qualified name of the plugin's underlying function in the
// runtime symbol table (closures get a compiler-generated ".funcN" suffix).
func pluginName(p Plugin) string {
	return runtime.FuncForPC(reflect.ValueOf(p).Pointer()).Name()
}

// StartPlugin invokes plugin as a coroutine, immediately running it up to
// its first suspension point or return. Any failure captured up to that
// first suspension point is recorded as a maximum-severity alert rather
// than propagated, matching nssct/controller.py's start_plugin: a
// misbehaving plugin must not abort the rest of the run.
func (c *Controller) StartPlugin(coll *report.Collector, plugin Plugin) {
	name := pluginName(plugin)
	c.log.Debug("starting plugin", "plugin", name)

	fut := future.RunCoroutine(func(co *future.Coroutine) error {
		return plugin(c, coll, co)
	})

	c.pending[fut] = name
	fut.AddDoneCallback(func(fut *future.Future[struct{}]) {
		delete(c.pending, fut)
		if _, err := fut.Outcome(); err != nil {
			c.log.Error("plugin failed", err, "plugin", name)
			coll.AddAlert(report.NewAlert(report.CRITICAL, "plugin %s failed to complete with error %v", name, err))
			return
		}
		c.log.Debug("plugin completed", "plugin", name)
	})
}

// Run starts every plugin, then repeatedly calls Engine().Step() until
// either every plugin has finished (success) or Step reports no further
// work while plugins remain pending (a stall): some plugin is awaiting a
// Future that will never complete. A stall is recorded as a maximum
// severity alert naming the stuck plugins, and Run returns.
func (c *Controller) Run(coll *report.Collector, plugins []Plugin) {
	for _, p := range plugins {
		c.StartPlugin(coll, p)
	}

	workLeft := c.engine.Step()
	for len(c.pending) > 0 {
		if !workLeft {
			names := make([]string, 0, len(c.pending))
			for _, name := range c.pending {
				names = append(names, name)
			}
			c.log.Warn("plugins stalled", "plugins", names)
			coll.AddAlert(report.NewAlert(report.CRITICAL, "plugin(s) %v stalled awaiting a Future that never completed", names))
			return
		}
		workLeft = c.engine.Step()
	}
}
