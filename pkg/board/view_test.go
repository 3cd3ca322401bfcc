package board

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
	"github.com/lemu/seamless-sea-sub003/pkg/store"
)

var created = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// countingRepo counts writes that reach the repository.
type countingRepo struct {
	store.Repository
	mu     sync.Mutex
	writes int
}

func (r *countingRepo) WriteLayout(ctx context.Context, boardID, bp string, l grid.Layout) error {
	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
	return r.Repository.WriteLayout(ctx, boardID, bp, l)
}

func (r *countingRepo) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func newRepo(t *testing.T) *countingRepo {
	t.Helper()
	repo := &countingRepo{Repository: store.NewMemoryStore()}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testBoard(n int) *Board {
	b := &Board{ID: "voyage-desk"}
	for i := 0; i < n; i++ {
		b.Widgets = append(b.Widgets, Widget{
			ID:        fmt.Sprintf("w%02d", i),
			Type:      TypeTable,
			CreatedAt: created.Add(time.Duration(i) * time.Minute),
		})
	}
	return b
}

// Viewports: 340px tall holds three 100px rows with 10px margins.
const (
	wideWidth   = 1300
	narrowWidth = 500
	threeRows   = 340
)

func openView(t *testing.T, repo store.Repository, b *Board, width int) *View {
	t.Helper()
	v, err := Open(context.Background(), repo, b, Options{
		RowHeight:   100,
		RowMargin:   10,
		CommitDelay: time.Hour,
		Width:       width,
		Height:      threeRows,
	})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestViewPlacesWidgetsWithoutPersisting(t *testing.T) {
	repo := newRepo(t)
	v := openView(t, repo, testBoard(3), wideWidth)

	got := v.Render()
	if got.Breakpoint.Name != grid.Wide || got.MaxRows != 3 {
		t.Fatalf("Render() breakpoint %s rows %d, want wide/3", got.Breakpoint.Name, got.MaxRows)
	}
	want := grid.Layout{
		{WidgetID: "w00", X: 0, Y: 0, W: 1, H: 1},
		{WidgetID: "w01", X: 1, Y: 0, W: 1, H: 1},
		{WidgetID: "w02", X: 2, Y: 0, W: 1, H: 1},
	}
	if diff := cmp.Diff(want, got.Layout); diff != "" {
		t.Errorf("Render() layout mismatch (-want +got):\n%s", diff)
	}
	if n := repo.Writes(); n != 0 {
		t.Errorf("automatic placement wrote %d layouts, want 0", n)
	}
}

func TestViewKeepsStoredRects(t *testing.T) {
	repo := newRepo(t)
	stored := grid.Layout{{WidgetID: "w00", X: 0, Y: 0, W: 2, H: 2}}
	if err := repo.WriteLayout(context.Background(), "voyage-desk", grid.Wide, stored); err != nil {
		t.Fatal(err)
	}

	v := openView(t, repo, testBoard(2), wideWidth)
	got := v.Render().Layout
	want := grid.Layout{
		{WidgetID: "w00", X: 0, Y: 0, W: 2, H: 2},
		{WidgetID: "w01", X: 2, Y: 0, W: 1, H: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() layout mismatch (-want +got):\n%s", diff)
	}
}

func TestViewInteractPersistsOnFlush(t *testing.T) {
	repo := newRepo(t)
	v := openView(t, repo, testBoard(2), wideWidth)
	v.Render()

	moved := grid.Layout{
		{WidgetID: "w00", X: 4, Y: 1, W: 3, H: 2},
		{WidgetID: "w01", X: 0, Y: 0, W: 1, H: 1},
	}
	if err := v.Interact(moved); err != nil {
		t.Fatalf("Interact() error: %v", err)
	}
	if diff := cmp.Diff(moved, v.Render().Layout); diff != "" {
		t.Errorf("Render() after Interact mismatch (-want +got):\n%s", diff)
	}
	if n := repo.Writes(); n != 0 {
		t.Fatalf("wrote %d layouts before quiescence, want 0", n)
	}

	if err := v.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	ls, err := repo.ReadLayouts(context.Background(), "voyage-desk")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(moved, ls[grid.Wide]); diff != "" {
		t.Errorf("stored layout mismatch (-want +got):\n%s", diff)
	}
}

func TestViewRejectsBadInteractions(t *testing.T) {
	v := openView(t, newRepo(t), testBoard(2), wideWidth)
	before := v.Render().Layout

	err := v.Interact(grid.Layout{{WidgetID: "w00", X: 0, Y: 0, W: 0, H: 1}})
	if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("Interact(zero width) error = %v, want INVALID_SNAPSHOT", err)
	}
	err = v.Interact(grid.Layout{{WidgetID: "w00", X: v.Active().Columns, Y: 0, W: 1, H: 1}})
	if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("Interact(past last column) error = %v, want INVALID_SNAPSHOT", err)
	}
	err = v.Interact(grid.Layout{{WidgetID: "w00", X: 0, Y: 0, W: 1, H: math.MaxInt32}})
	if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Errorf("Interact(max height) error = %v, want INVALID_SNAPSHOT", err)
	}
	err = v.InteractAll(grid.Layouts{"tablet": before})
	if !errors.Is(err, errors.ErrCodeInvalidBreakpoint) {
		t.Errorf("InteractAll(unknown breakpoint) error = %v, want INVALID_BREAKPOINT", err)
	}

	if diff := cmp.Diff(before, v.Render().Layout); diff != "" {
		t.Errorf("rejected interaction changed the layout (-want +got):\n%s", diff)
	}
}

func TestViewAddRevealsWidget(t *testing.T) {
	v := openView(t, newRepo(t), testBoard(2), wideWidth)
	v.Render()

	done := 0
	w := Widget{ID: "rates", Type: TypeChart, CreatedAt: created.Add(time.Hour)}
	if err := v.BeginAdd(w, func() { done++ }); err != nil {
		t.Fatalf("BeginAdd() error: %v", err)
	}
	if err := v.BeginAdd(NewWidget(TypeChart, ""), nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second BeginAdd() error = %v, want INVALID_INPUT", err)
	}

	got := v.Render()
	if got.Scroll == nil || got.Scroll.WidgetID != "rates" {
		t.Fatalf("Render() scroll = %+v, want target rates", got.Scroll)
	}
	if got.Scroll.Top != 10 || got.Scroll.Height != 100 {
		t.Errorf("scroll target = %+v, want top 10 height 100", got.Scroll)
	}
	if done != 1 || v.Adding() {
		t.Errorf("completion ran %d times, adding=%v", done, v.Adding())
	}

	if again := v.Render(); again.Scroll != nil {
		t.Errorf("second Render() scrolled again to %+v", again.Scroll)
	}
}

func TestViewRemoveCancelsPendingAdd(t *testing.T) {
	v := openView(t, newRepo(t), testBoard(2), wideWidth)
	v.Render()

	done := 0
	w := Widget{ID: "rates", Type: TypeChart, CreatedAt: created.Add(time.Hour)}
	if err := v.BeginAdd(w, func() { done++ }); err != nil {
		t.Fatalf("BeginAdd() error: %v", err)
	}
	if err := v.RemoveWidget("rates"); err != nil {
		t.Fatalf("RemoveWidget() error: %v", err)
	}
	if v.Adding() {
		t.Fatal("Adding() = true after removing the widget being added")
	}
	if got := v.Render(); got.Scroll != nil || done != 0 {
		t.Errorf("Render() scroll = %+v, completions = %d; want none", got.Scroll, done)
	}

	next := Widget{ID: "bunkers", Type: TypeChart, CreatedAt: created.Add(2 * time.Hour)}
	if err := v.BeginAdd(next, func() { done++ }); err != nil {
		t.Fatalf("BeginAdd() after cancelled add error: %v", err)
	}
	got := v.Render()
	if got.Scroll == nil || got.Scroll.WidgetID != "bunkers" {
		t.Errorf("Render() scroll = %+v, want target bunkers", got.Scroll)
	}
	if done != 1 {
		t.Errorf("completions = %d, want 1", done)
	}
}

func TestViewRemoveOtherWidgetKeepsAdd(t *testing.T) {
	v := openView(t, newRepo(t), testBoard(2), wideWidth)
	v.Render()

	if err := v.BeginAdd(Widget{ID: "rates", Type: TypeChart, CreatedAt: created.Add(time.Hour)}, nil); err != nil {
		t.Fatalf("BeginAdd() error: %v", err)
	}
	if err := v.RemoveWidget("w00"); err != nil {
		t.Fatalf("RemoveWidget() error: %v", err)
	}
	if !v.Adding() {
		t.Error("removing another widget cancelled the add")
	}
}

func TestViewAddGrowsFullGrid(t *testing.T) {
	// Four columns, three rows: twelve widgets fill the grid.
	v := openView(t, newRepo(t), testBoard(12), narrowWidth)
	if got := v.Render(); got.MaxRows != 3 || got.Breakpoint.Columns != 4 {
		t.Fatalf("Render() = %d rows x %d cols, want 3x4", got.MaxRows, got.Breakpoint.Columns)
	}

	w := Widget{ID: "w12", Type: TypeChart, CreatedAt: created.Add(time.Hour)}
	if err := v.BeginAdd(w, nil); err != nil {
		t.Fatal(err)
	}
	got := v.Render()

	r, ok := got.Layout.Find("w12")
	if !ok || r != (grid.Rect{WidgetID: "w12", X: 0, Y: 3, W: 1, H: 1}) {
		t.Fatalf("w12 placed at %+v (found %v), want (0,3)", r, ok)
	}
	if got.MaxRows != 5 {
		t.Errorf("MaxRows = %d, want 5 (one row for the widget, one to scroll past it)", got.MaxRows)
	}
	if got.Scroll == nil || got.Scroll.Top != 3*110+10 {
		t.Errorf("scroll = %+v, want top %d", got.Scroll, 3*110+10)
	}
}

func TestViewRemoteAddDoesNotScroll(t *testing.T) {
	v := openView(t, newRepo(t), testBoard(2), wideWidth)
	v.Render()

	// Another session added a widget; the board model picks it up.
	if err := v.Board().Add(Widget{ID: "remote", Type: TypeChart, CreatedAt: created.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	got := v.Render()
	if got.Scroll != nil {
		t.Errorf("Render() scrolled to %+v without an add in progress", got.Scroll)
	}
	if _, ok := got.Layout.Find("remote"); !ok {
		t.Error("remote widget was not placed")
	}
}

func TestViewRemoveDoesNotCompact(t *testing.T) {
	v := openView(t, newRepo(t), testBoard(3), wideWidth)
	v.Render()

	if err := v.RemoveWidget("w01"); err != nil {
		t.Fatalf("RemoveWidget() error: %v", err)
	}
	want := grid.Layout{
		{WidgetID: "w00", X: 0, Y: 0, W: 1, H: 1},
		{WidgetID: "w02", X: 2, Y: 0, W: 1, H: 1},
	}
	if diff := cmp.Diff(want, v.Render().Layout); diff != "" {
		t.Errorf("Render() after remove mismatch (-want +got):\n%s", diff)
	}
	if err := v.RemoveWidget("w01"); !errors.Is(err, errors.ErrCodeWidgetNotFound) {
		t.Errorf("RemoveWidget(missing) error = %v, want WIDGET_NOT_FOUND", err)
	}
}

func TestViewResize(t *testing.T) {
	v := openView(t, newRepo(t), testBoard(2), wideWidth)
	wide := v.Render()

	v.Resize(narrowWidth, 120)
	narrow := v.Render()
	if narrow.Breakpoint.Name != grid.Narrow {
		t.Fatalf("breakpoint after resize = %s, want narrow", narrow.Breakpoint.Name)
	}
	if narrow.MaxRows != 1 {
		t.Errorf("narrow MaxRows = %d, want 1 (one row fits 120px)", narrow.MaxRows)
	}

	v.Resize(wideWidth, 120)
	if got := v.MaxRows(grid.Wide); got != wide.MaxRows {
		t.Errorf("wide MaxRows shrank to %d, want %d", got, wide.MaxRows)
	}
	v.Resize(wideWidth, 800)
	if got := v.MaxRows(grid.Wide); got != 7 {
		t.Errorf("wide MaxRows after growing viewport = %d, want 7", got)
	}
}

func TestViewBreakpointsIndependent(t *testing.T) {
	v := openView(t, newRepo(t), testBoard(2), wideWidth)
	v.Render()
	moved := grid.Layout{
		{WidgetID: "w00", X: 6, Y: 0, W: 6, H: 2},
		{WidgetID: "w01", X: 0, Y: 0, W: 6, H: 2},
	}
	if err := v.Interact(moved); err != nil {
		t.Fatal(err)
	}

	v.Resize(narrowWidth, threeRows)
	narrow := v.Render().Layout
	want := grid.Layout{
		{WidgetID: "w00", X: 0, Y: 0, W: 1, H: 1},
		{WidgetID: "w01", X: 1, Y: 0, W: 1, H: 1},
	}
	if diff := cmp.Diff(want, narrow); diff != "" {
		t.Errorf("narrow layout mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(moved, v.Layout(grid.Wide)); diff != "" {
		t.Errorf("wide layout changed by narrow render (-want +got):\n%s", diff)
	}
}

func TestViewApplyRemote(t *testing.T) {
	repo := newRepo(t)
	v := openView(t, repo, testBoard(2), wideWidth)
	v.Render()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := v.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	// Another session moves w00.
	remote := grid.Layout{
		{WidgetID: "w00", X: 5, Y: 2, W: 2, H: 1},
		{WidgetID: "w01", X: 1, Y: 0, W: 1, H: 1},
	}
	if err := repo.WriteLayout(context.Background(), "voyage-desk", grid.Wide, remote); err != nil {
		t.Fatal(err)
	}

	select {
	case ls := <-updates:
		v.ApplyRemote(ls)
	case <-time.After(5 * time.Second):
		t.Fatal("no update from subscription")
	}
	if diff := cmp.Diff(remote, v.Render().Layout); diff != "" {
		t.Errorf("Render() after remote change mismatch (-want +got):\n%s", diff)
	}
}

func TestViewApplyRemoteKeepsPendingInteraction(t *testing.T) {
	v := openView(t, newRepo(t), testBoard(1), wideWidth)
	v.Render()

	local := grid.Layout{{WidgetID: "w00", X: 3, Y: 0, W: 1, H: 1}}
	if err := v.Interact(local); err != nil {
		t.Fatal(err)
	}
	v.ApplyRemote(grid.Layouts{grid.Wide: {{WidgetID: "w00", X: 9, Y: 0, W: 1, H: 1}}})

	if diff := cmp.Diff(local, v.Render().Layout); diff != "" {
		t.Errorf("remote change overrode a pending interaction (-want +got):\n%s", diff)
	}
}

func TestViewClose(t *testing.T) {
	repo := newRepo(t)
	v := openView(t, repo, testBoard(1), wideWidth)
	v.Render()

	if err := v.Interact(grid.Layout{{WidgetID: "w00", X: 3, Y: 0, W: 1, H: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := v.Interact(grid.Layout{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Interact() after Close error = %v, want INVALID_INPUT", err)
	}
	if n := repo.Writes(); n != 0 {
		t.Errorf("Close committed %d layouts, want pending dropped", n)
	}
}

func TestOpenRejectsInvalidBoard(t *testing.T) {
	_, err := Open(context.Background(), newRepo(t), &Board{ID: ""}, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidBoard) {
		t.Errorf("Open() error = %v, want INVALID_BOARD", err)
	}
}
