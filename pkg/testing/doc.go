// Package testing provides a deterministic harness for switcher and tree
// tests.
//
// # Quick Start
//
// Create a tester, build components, and drive time explicitly:
//
//	func TestSwap(t *testing.T) {
//	    tester := switchtest.NewTesterWithT(t)
//	    sw := switcher.New(tester.Registry(), tester.Scheduler(), tester.Document(), switcher.Options{
//	        TransitionTime: 300 * time.Millisecond,
//	    })
//	    tester.Mount(sw)
//	    page := tester.NewBox("page", 200, 80)
//
//	    tester.Reconcile(func(latent *component.LatentSet) error {
//	        return sw.UpdateContent(latent, page.ID().Ptr())
//	    })
//	    tester.Pump()
//
//	    if !tester.Find(switchtest.ByClass("active")).Exists() {
//	        t.Error("expected an active container")
//	    }
//	}
//
// # Time
//
// The tester installs a [FakeClock] as the animation clock and drives the
// scheduler with it. [Tester.Advance] runs every timer and frame that falls
// inside the window at its own instant; [Tester.PumpAndSettle] runs until no
// work remains.
//
// # Snapshot Testing
//
// Capture and compare tree snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/swap.snapshot.json")
//
// Update snapshots with:
//
//	SWITCHER_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import switchtest "github.com/go-drift/switcher/pkg/testing"
package testing
