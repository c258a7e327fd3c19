// Package fiber is an incremental tree reconciler.
//
// A render pass turns a virtual node tree (package vdom) into a tree of
// render nodes, one per position, linked by Child, Sibling and Return
// pointers. The traversal is driven by an explicit cursor instead of
// recursion, so a pass can stop after any work unit and resume later:
//
//	s := fiber.New(adapter)
//	s.Render(container, vdom.Div(vdom.Text("hello")))
//	for s.Pending() {
//	    s.WorkLoop(fiber.Budget(5 * time.Millisecond))
//	}
//
// Each render node is matched against the node at the same position in the
// last committed tree (its alternate) and tagged Placement, Update or
// Deletion. Completed nodes are threaded into an effect list in postorder.
// When the walk finishes, the commit phase removes deleted nodes and then
// applies the effect list to the host through a host.Adapter, without
// yielding.
//
// Scheduling a new root while a pass is in progress discards the partial
// pass. Nothing reaches the host until commit.
//
// A Scheduler is single-threaded. Hosts with an idle callback primitive pass
// it via WithIdle and the scheduler requests slices on its own.
package fiber
