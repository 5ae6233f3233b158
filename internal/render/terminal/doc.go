// Package terminal paints highlighted text onto a tcell screen.
//
// A Theme maps scope names to tcell styles, falling back from a dotted
// scope to its parents ("title.class" uses "title" when it has no style
// of its own). Painter lays a scope tree out as styled cells, and Pager
// shows them in a scrollable full-screen view that can be reloaded while
// open.
package terminal
