// Package idle provides an idle-callback loop for hosts that have no native
// one. It implements fiber.IdleRequester.
//
// A Loop runs in frames. Each frame grants a fixed budget that is shared by
// the idle callbacks queued when the frame starts; callbacks requested
// during a frame run in the next one. A callback that waited longer than its
// timeout hint receives a deadline whose DidTimeout reports true.
//
// Everything a Loop runs, idle callbacks and dispatched functions alike,
// runs on the goroutine that called Run. Code that owns a fiber.Scheduler
// can therefore confine it to the loop:
//
//	loop := idle.New()
//	s := fiber.New(adapter, fiber.WithIdle(loop, 0))
//	go loop.Run(ctx)
//	loop.Do(ctx, func() { s.Render(container, tree...) })
package idle
