/*
Package sandbox runs the widget bundle inside a goja VM with a stub host.

# Overview

The runtime exposes what the bundle expects from an agent host and nothing
more:

  - window (the global object) with addEventListener
  - document.getElementById("root") returning a recording element
  - window.openai with toolOutput, theme and sendFollowupMessage

require, process, module and exports are removed, and timers never fire.
Every call is bounded by Config.Timeout and by context cancellation.

# Usage Example

	rt, err := sandbox.New(sandbox.DefaultConfig(), sandbox.Host{Theme: "light"})
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.Execute(ctx, bundle)
	// res.RootHTML holds what the bundle rendered into #root.

State persists across Execute, Call and SetGlobals so a bundle can be loaded
once and then driven through its exported handlers.
*/
package sandbox
