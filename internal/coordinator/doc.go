// Package coordinator schedules periodic census runs for the serve command.
//
// Every tick runs a complete, independent census: a fresh run collects all
// sources, a fresh counter registry is filled from it, and the pair is
// published as the current Snapshot. A failed or cancelled run leaves the
// previous snapshot in place. Nothing is carried from one run to the next.
//
//	coord := coordinator.New(collect, 15*time.Minute)
//	go coord.Start(ctx)
//	defer coord.Stop()
//
//	snap := coord.Latest() // nil until the first run completed
package coordinator
