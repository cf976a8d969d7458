package sonar

// Runner runs a thing on a board with no HTTP server.  The bus still routes
// the thing's own msgs, so uplinks such as MQTT can be plugged in.
type Runner struct {
	*Bus
	thinger  Thinger
	injector *Injector
}

func NewRunner(thinger Thinger) *Runner {
	var r Runner
	r.thinger = thinger
	r.Bus = NewBus("runner bus", route(thinger), nil, nil)
	r.injector = NewInjector("runner injector", r.Bus)
	return &r
}

func (r *Runner) Run() {
	r.thinger.SetFlag(ThingFlagMetal)
	r.thinger.Run(r.injector)
}
