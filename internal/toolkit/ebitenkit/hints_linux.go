//go:build linux && !noebiten

package ebitenkit

import (
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// hinter sets EWMH _NET_WM_STATE hints on the active X11 window. It caches
// the X11 connection and interned atoms.
type hinter struct {
	mu    sync.Mutex
	conn  *xgb.Conn
	atoms map[string]xproto.Atom
}

var theHinter = &hinter{atoms: make(map[string]xproto.Atom)}

// applyWindowHints adds skip-taskbar and above states to the window just
// shown. It is a no-op without an X11 display.
func applyWindowHints(skipTaskbar, keepAbove bool) error {
	var names []string
	if skipTaskbar {
		names = append(names, "_NET_WM_STATE_SKIP_TASKBAR")
	}
	if keepAbove {
		names = append(names, "_NET_WM_STATE_ABOVE")
	}
	if len(names) == 0 {
		return nil
	}
	return theHinter.apply(names)
}

func (h *hinter) apply(names []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		conn, err := xgb.NewConn()
		if err != nil {
			return nil // no X11
		}
		h.conn = conn
	}

	window, err := h.activeWindow()
	if err != nil || window == xproto.WindowNone {
		return nil
	}

	stateAtom, err := h.atom("_NET_WM_STATE")
	if err != nil {
		return nil
	}
	atomAtom, err := h.atom("ATOM")
	if err != nil {
		return nil
	}

	set := make(map[xproto.Atom]bool)
	current, _ := h.windowState(window, stateAtom, atomAtom)
	for _, a := range current {
		set[a] = true
	}
	for _, name := range names {
		if a, err := h.atom(name); err == nil {
			set[a] = true
		}
	}

	data := make([]byte, 0, len(set)*4)
	for a := range set {
		var b [4]byte
		xgb.Put32(b[:], uint32(a))
		data = append(data, b[:]...)
	}
	xproto.ChangeProperty(h.conn, xproto.PropModeReplace, window,
		stateAtom, atomAtom, 32, uint32(len(set)), data)
	return nil
}

func (h *hinter) atom(name string) (xproto.Atom, error) {
	if a, ok := h.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(h.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	h.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// activeWindow returns _NET_ACTIVE_WINDOW, falling back to the input focus.
func (h *hinter) activeWindow() (xproto.Window, error) {
	setup := xproto.Setup(h.conn)
	if len(setup.Roots) == 0 {
		return xproto.WindowNone, nil
	}
	root := setup.Roots[0].Root

	if active, err := h.atom("_NET_ACTIVE_WINDOW"); err == nil {
		reply, err := xproto.GetProperty(h.conn, false, root, active,
			xproto.AtomWindow, 0, 1).Reply()
		if err == nil && reply != nil && len(reply.Value) >= 4 {
			return xproto.Window(xgb.Get32(reply.Value)), nil
		}
	}

	focus, err := xproto.GetInputFocus(h.conn).Reply()
	if err != nil {
		return xproto.WindowNone, err
	}
	return focus.Focus, nil
}

func (h *hinter) windowState(window xproto.Window, stateAtom, atomAtom xproto.Atom) ([]xproto.Atom, error) {
	reply, err := xproto.GetProperty(h.conn, false, window, stateAtom,
		atomAtom, 0, 256).Reply()
	if err != nil || reply == nil {
		return nil, err
	}
	atoms := make([]xproto.Atom, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		atoms = append(atoms, xproto.Atom(xgb.Get32(reply.Value[i:])))
	}
	return atoms, nil
}

// closeWindowHints releases the X11 connection, if any.
func closeWindowHints() {
	theHinter.close()
}

// close drops the X11 connection and the atom cache.
func (h *hinter) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn != nil {
		h.conn.Close()
		h.conn = nil
	}
	h.atoms = make(map[string]xproto.Atom)
}
