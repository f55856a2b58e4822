// Package glx blends frames on the GPU with OpenGL and presents them in a
// desktop window that sits below all other windows. Importing it registers
// the "glx" backend.
package glx

/*
#cgo LDFLAGS: -lGL -lX11
#include <X11/Xlib.h>
#include <X11/Xatom.h>
#include <X11/Xutil.h>
#include <GL/gl.h>
#include <GL/glx.h>
#include <poll.h>
#include <stdlib.h>
#include <sys/socket.h>

static int connection_dead(Display* dpy) {
    struct pollfd pfd;
    pfd.fd = ConnectionNumber(dpy);
    pfd.events = POLLIN;
    pfd.revents = 0;
    if (poll(&pfd, 1, 0) < 0) return 1;
    if (pfd.revents & (POLLHUP | POLLERR | POLLNVAL)) return 1;
    if (pfd.revents & POLLIN) {
        char c;
        if (recv(pfd.fd, &c, 1, MSG_PEEK | MSG_DONTWAIT) == 0) return 1;
    }
    return 0;
}

static void root_size(Display* dpy, int* w, int* h) {
    XWindowAttributes attrs;
    XGetWindowAttributes(dpy, DefaultRootWindow(dpy), &attrs);
    *w = attrs.width;
    *h = attrs.height;
}

// drain_events empties the event queue and reports whether the window was
// exposed.
static int drain_events(Display* dpy) {
    int exposed = 0;
    XEvent ev;
    while (XPending(dpy) > 0) {
        XNextEvent(dpy, &ev);
        if (ev.type == Expose && ev.xexpose.count == 0) exposed = 1;
    }
    return exposed;
}

static XVisualInfo* choose_visual(Display* dpy, int screen) {
    int attribs[] = {
        GLX_RGBA,
        GLX_RED_SIZE, 8,
        GLX_GREEN_SIZE, 8,
        GLX_BLUE_SIZE, 8,
        GLX_DOUBLEBUFFER,
        None
    };
    return glXChooseVisual(dpy, screen, attribs);
}

static void set_atom(Display* dpy, Window win, const char* prop, const char* const* values, int n) {
    Atom atoms[4];
    for (int i = 0; i < n && i < 4; i++) {
        atoms[i] = XInternAtom(dpy, values[i], False);
    }
    XChangeProperty(dpy, win, XInternAtom(dpy, prop, False), XA_ATOM, 32,
                    PropModeReplace, (unsigned char*)atoms, n);
}

// create_desktop_window opens a window of the desktop type that stays below
// everything else on every workspace.
static Window create_desktop_window(Display* dpy, int screen, XVisualInfo* vi, int w, int h) {
    Window root = RootWindow(dpy, screen);
    XSetWindowAttributes attrs;
    attrs.colormap = XCreateColormap(dpy, root, vi->visual, AllocNone);
    attrs.background_pixel = BlackPixel(dpy, screen);
    attrs.border_pixel = 0;
    attrs.event_mask = ExposureMask;

    Window win = XCreateWindow(dpy, root, 0, 0, w, h, 0, vi->depth, InputOutput,
                               vi->visual, CWColormap | CWBackPixel | CWBorderPixel | CWEventMask, &attrs);

    const char* type[] = {"_NET_WM_WINDOW_TYPE_DESKTOP"};
    set_atom(dpy, win, "_NET_WM_WINDOW_TYPE", type, 1);
    const char* state[] = {"_NET_WM_STATE_BELOW", "_NET_WM_STATE_STICKY"};
    set_atom(dpy, win, "_NET_WM_STATE", state, 2);

    XStoreName(dpy, win, "wallfade");
    XMapWindow(dpy, win);
    XLowerWindow(dpy, win);
    XFlush(dpy);
    return win;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/matjam/wallfade/internal/render"
)

func init() {
	render.RegisterBackend("glx", open)
}

func open(opts render.BackendOptions) (render.Device, render.Surface, error) {
	s, err := NewSurface(opts)
	if err != nil {
		return nil, nil, err
	}
	return newDevice(s), s, nil
}

// Surface is a render.Surface backed by a double-buffered GLX window. The
// OpenGL context is bound to the OS thread that created the surface, so the
// surface and its device must only be used from that goroutine.
type Surface struct {
	dpy    *C.Display
	win    C.Window
	glctx  C.GLXContext
	width  int
	height int
	frame  *frame
	events chan render.Event
	closed bool
	dead   bool

	// programs compiled on this context, deleted on Close.
	programs []uint32
}

type frame struct {
	w, h int
}

func (f *frame) Size() (int, int) { return f.w, f.h }

// NewSurface opens the default display and creates the desktop window. It
// locks the calling goroutine to its OS thread.
func NewSurface(opts render.BackendOptions) (*Surface, error) {
	runtime.LockOSThread()

	dpy := C.XOpenDisplay(nil)
	if dpy == nil {
		return nil, errors.New("unable to open X11 display")
	}
	screen := C.XDefaultScreen(dpy)

	var cw, ch C.int
	C.root_size(dpy, &cw, &ch)
	w, h := int(cw), int(ch)
	if opts.Width > 0 && opts.Height > 0 {
		w, h = opts.Width, opts.Height
	}
	if w == 0 || h == 0 {
		C.XCloseDisplay(dpy)
		return nil, errors.New("unable to get screen dimensions")
	}

	vi := C.choose_visual(dpy, screen)
	if vi == nil {
		C.XCloseDisplay(dpy)
		return nil, errors.New("no suitable GLX visual")
	}
	defer C.XFree(unsafe.Pointer(vi))

	win := C.create_desktop_window(dpy, screen, vi, C.int(w), C.int(h))
	glctx := C.glXCreateContext(dpy, vi, nil, C.True)
	if glctx == nil {
		C.XDestroyWindow(dpy, win)
		C.XCloseDisplay(dpy)
		return nil, errors.New("failed to create GLX context")
	}
	C.glXMakeCurrent(dpy, C.GLXDrawable(win), glctx)

	if err := gl.Init(); err != nil {
		C.glXMakeCurrent(dpy, 0, nil)
		C.glXDestroyContext(dpy, glctx)
		C.XDestroyWindow(dpy, win)
		C.XCloseDisplay(dpy)
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	gl.ClearColor(0, 0, 0, 1)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	s := &Surface{
		dpy:    dpy,
		win:    win,
		glctx:  glctx,
		events: make(chan render.Event, 4),
	}
	s.resize(w, h)
	log.Debug("opened GLX surface",
		"width", w, "height", h,
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"version", gl.GoStr(gl.GetString(gl.VERSION)))
	return s, nil
}

func (s *Surface) resize(w, h int) {
	s.width, s.height = w, h
	s.frame = &frame{w: w, h: h}
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (s *Surface) Size() (int, int) { return s.width, s.height }

func (s *Surface) Configure(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	if err := s.check(); err != nil {
		return err
	}
	C.XResizeWindow(s.dpy, s.win, C.uint(width), C.uint(height))
	C.XFlush(s.dpy)
	s.resize(width, height)
	return nil
}

// Acquire returns the back buffer. A screen whose size no longer matches
// the window is reported as a Configure event, and the frame is withheld
// until the surface has been reconfigured. Pending window exposures are
// reported as an Expose event.
func (s *Surface) Acquire() (render.Frame, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if C.drain_events(s.dpy) != 0 {
		s.emit(render.Expose{})
	}
	var cw, ch C.int
	C.root_size(s.dpy, &cw, &ch)
	if w, h := int(cw), int(ch); w != s.width || h != s.height {
		s.emit(render.Configure{Width: w, Height: h})
		return nil, render.ErrSurfaceUnavailable
	}
	return s.frame, nil
}

// Present swaps the back buffer onto the window.
func (s *Surface) Present(f render.Frame) error {
	if err := s.check(); err != nil {
		return err
	}
	if fr, ok := f.(*frame); !ok || fr != s.frame {
		return errors.New("frame does not belong to this surface")
	}
	C.glXSwapBuffers(s.dpy, C.GLXDrawable(s.win))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%w: GL error 0x%x", render.ErrDeviceLost, code)
	}
	return nil
}

func (s *Surface) Events() <-chan render.Event { return s.events }

// Close destroys the GL context and the window and disconnects from the
// display.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.dead {
		for _, p := range s.programs {
			gl.DeleteProgram(p)
		}
		C.glXMakeCurrent(s.dpy, 0, nil)
		C.glXDestroyContext(s.dpy, s.glctx)
		C.XDestroyWindow(s.dpy, s.win)
		C.XCloseDisplay(s.dpy)
	}
	s.programs = nil
	s.dpy = nil
	runtime.UnlockOSThread()
	return nil
}

// live reports whether GL calls can still be made.
func (s *Surface) live() bool {
	return !s.closed && !s.dead
}

func (s *Surface) check() error {
	if s.closed {
		return render.ErrSurfaceClosed
	}
	if s.dead || C.connection_dead(s.dpy) != 0 {
		s.dead = true
		s.emit(render.Closed{Err: errors.New("X11 connection lost")})
		return render.ErrSurfaceClosed
	}
	return nil
}

func (s *Surface) emit(ev render.Event) {
	select {
	case s.events <- ev:
	default:
	}
}
