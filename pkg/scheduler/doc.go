// Package scheduler implements the single-threaded event loop that drives
// deferred widget work.
//
// Work arrives in three shapes, mirroring a browser task queue:
//
//   - tasks queued with [Scheduler.Post], run in FIFO order
//   - fixed-delay timers from [Scheduler.AfterFunc], run in due order
//   - layout-frame callbacks from [Scheduler.RequestFrame], run once per frame
//     after tickers have stepped and the document has been laid out
//
// There is no cancellation. Callbacks that may have been superseded must
// check their own relevance when they fire.
//
// Tests drive the loop with a manual clock and [Scheduler.Advance]; tools use
// [Scheduler.Run] against the system clock.
package scheduler
