// Package pkg provides the libraries behind seamless, the dashboard widget
// placement and layout persistence engine.
//
// # Overview
//
// A board is a set of widgets shown on a responsive grid. Each breakpoint
// (wide, medium, narrow by default) has its own column count and its own
// layout. New widgets get the first free 1×1 cell; widgets the user has moved
// or resized keep their rectangles; deleting a widget frees its cells without
// moving anything else. Drags and resizes are persisted once the user stops
// interacting, and every session of the same board sees the result.
//
// # Architecture
//
// The flow of one board view:
//
//	store.Repository ──ReadLayouts──▶ board.View
//	                                     │ Render
//	                                     ▼
//	                              grid.Synchronizer ──▶ focus.Controller
//	                                     │                  (grow / scroll)
//	                              Interact
//	                                     ▼
//	                              commit.Pipeline ──WriteLayout──▶ store.Repository
//	                                                                 │ Subscribe
//	                                     board.View ◀──ApplyRemote───┘
//
// # Main Packages
//
// [grid] - Rectangles, layouts, breakpoints, the occupancy map and the
// first-fit allocator. [grid.Synchronizer] reconciles a stored layout with
// the current widget set.
//
// [focus] - Detects a widget added by the local user, grows the grid when the
// widget landed below the visible rows and reports the scroll target that
// reveals it.
//
// [commit] - Buffers interaction snapshots per breakpoint and writes them once
// a quiescence window has passed.
//
// [store] - Layout repositories: memory, file (fsnotify), SQLite, Redis
// (pub/sub) and MongoDB (change streams).
//
// [board] - Boards, widgets, YAML board files and the View that ties the
// packages above together.
//
// [httpapi] - HTTP API for reading, writing, placing and following layouts.
//
// [config] - TOML configuration.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for metrics and tracing.
//
// # Quick Start
//
//	repo := store.NewMemoryStore()
//	b, _ := board.LoadFile("board.yaml")
//	v, _ := board.Open(ctx, repo, b, board.Options{Width: 1300, Height: 800})
//	defer v.Close()
//
//	r := v.Render()
//	for _, rect := range r.Layout {
//	    fmt.Printf("%s at (%d,%d)\n", rect.WidgetID, rect.X, rect.Y)
//	}
//
// # Testing
//
//	go test ./...
//	MONGO_URI=mongodb://localhost:27017/?replicaSet=rs0 go test -tags integration ./pkg/store/...
//
// [grid]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/grid
// [grid.Synchronizer]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/grid#Synchronizer
// [focus]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/focus
// [commit]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/commit
// [store]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/store
// [board]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/board
// [httpapi]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/httpapi
// [config]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/config
// [errors]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/errors
// [observability]: https://pkg.go.dev/github.com/lemu/seamless-sea-sub003/pkg/observability
package pkg
