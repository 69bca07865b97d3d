// Package pipeline runs the multi-step database flows behind each route:
// an ordered list of named steps sharing one typed per-request context,
// stopping at the first step that returns an error. Domain outcomes are
// reported as *Failure; anything else is a store-level error and is
// forwarded unchanged to the flow's terminal handler.
package pipeline

// Step is one unit of work in a flow: a query against the store, a
// decision over a previously filled context slot, or a mutation.
type Step struct {
	Name string
	Run  func(c *Context) error
}

// Run executes the steps in declared order. A step that returns a non-nil
// error short-circuits the pipeline; the remaining steps are skipped and
// the error is returned as-is. Run never interprets the error itself.
func Run(c *Context, steps ...Step) error {
	for _, s := range steps {
		if err := s.Run(c); err != nil {
			return err
		}
	}
	return nil
}
