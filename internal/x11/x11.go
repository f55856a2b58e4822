// Package x11 presents frames blended on the CPU by installing them as the
// X11 root window background. Importing it registers the "x11" backend.
package x11

/*
#cgo LDFLAGS: -lX11
#include <X11/Xlib.h>
#include <X11/Xatom.h>
#include <X11/Xutil.h>
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

static void set_root_atoms(Display* dpy, Window root, Pixmap pixmap) {
    Atom xroot = XInternAtom(dpy, "_XROOTPMAP_ID", False);
    Atom esetroot = XInternAtom(dpy, "ESETROOT_PMAP_ID", False);
    XChangeProperty(dpy, root, xroot, XA_PIXMAP, 32, PropModeReplace, (unsigned char*)&pixmap, 1);
    XChangeProperty(dpy, root, esetroot, XA_PIXMAP, 32, PropModeReplace, (unsigned char*)&pixmap, 1);
}

// set_root_pixmap copies a BGRX buffer into a new pixmap and makes it the
// root window background. The previous pixmap, if any, is freed.
static Pixmap set_root_pixmap(Display* dpy, Pixmap old, char* data, int w, int h) {
    int screen = DefaultScreen(dpy);
    Window root = RootWindow(dpy, screen);
    int depth = DefaultDepth(dpy, screen);

    XImage* img = XCreateImage(dpy, DefaultVisual(dpy, screen), depth, ZPixmap, 0,
                               data, w, h, 32, w * 4);
    if (img == NULL) return 0;

    Pixmap pixmap = XCreatePixmap(dpy, root, w, h, depth);
    XPutImage(dpy, pixmap, DefaultGC(dpy, screen), img, 0, 0, 0, 0, w, h);
    img->data = NULL;
    XDestroyImage(img);

    set_root_atoms(dpy, root, pixmap);
    XSetWindowBackgroundPixmap(dpy, root, pixmap);
    XClearWindow(dpy, root);
    if (old != 0) XFreePixmap(dpy, old);
    XFlush(dpy);
    return pixmap;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/charmbracelet/log"

	"github.com/matjam/wallfade/internal/render"
)

func init() {
	render.RegisterBackend("x11", open)
}

func open(opts render.BackendOptions) (render.Device, render.Surface, error) {
	s, err := NewRootSurface(opts)
	if err != nil {
		return nil, nil, err
	}
	return render.NewCPUDevice(), s, nil
}

// RootSurface is a render.Surface whose frames become the root window
// background. It is used from a single goroutine.
type RootSurface struct {
	dpy    *C.Display
	width  int
	height int
	depth  int
	frame  *frame
	bgrx   []byte
	pixmap C.Pixmap
	events chan render.Event
	closed bool
	dead   bool
}

type frame struct {
	img *image.RGBA
}

func (f *frame) Size() (int, int)  { return f.img.Rect.Dx(), f.img.Rect.Dy() }
func (f *frame) RGBA() *image.RGBA { return f.img }

// NewRootSurface opens the default display. The surface covers the whole
// screen unless opts asks for a size.
func NewRootSurface(opts render.BackendOptions) (*RootSurface, error) {
	dpy := C.XOpenDisplay(nil)
	if dpy == nil {
		return nil, errors.New("unable to open X11 display")
	}
	screen := C.XDefaultScreen(dpy)
	depth := int(C.XDefaultDepth(dpy, screen))
	if depth != 24 && depth != 32 {
		C.XCloseDisplay(dpy)
		return nil, fmt.Errorf("unsupported display depth %d", depth)
	}
	// Keep the root pixmap alive after we disconnect.
	C.XSetCloseDownMode(dpy, C.RetainPermanent)

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

	s := &RootSurface{
		dpy:    dpy,
		depth:  depth,
		events: make(chan render.Event, 4),
	}
	s.resize(w, h)
	log.Debug("opened X11 root surface", "width", w, "height", h, "depth", depth)
	return s, nil
}

func (s *RootSurface) resize(w, h int) {
	s.width, s.height = w, h
	s.frame = &frame{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	s.bgrx = make([]byte, w*h*4)
}

func (s *RootSurface) Size() (int, int) { return s.width, s.height }

func (s *RootSurface) Configure(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	s.resize(width, height)
	return nil
}

// Acquire returns the frame buffer. A screen whose size no longer matches
// the surface is reported as a Configure event, and the frame is withheld
// until the surface has been reconfigured.
func (s *RootSurface) Acquire() (render.Frame, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	var cw, ch C.int
	C.root_size(s.dpy, &cw, &ch)
	if w, h := int(cw), int(ch); w != s.width || h != s.height {
		s.emit(render.Configure{Width: w, Height: h})
		return nil, render.ErrSurfaceUnavailable
	}
	return s.frame, nil
}

func (s *RootSurface) Present(f render.Frame) error {
	if err := s.check(); err != nil {
		return err
	}
	fr, ok := f.(*frame)
	if !ok || fr != s.frame {
		return errors.New("frame does not belong to this surface")
	}

	img, w := fr.img, s.width
	render.ParallelRows(s.height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			src := img.Pix[y*img.Stride : y*img.Stride+w*4]
			dst := s.bgrx[y*w*4 : (y+1)*w*4]
			for i := 0; i < len(src); i += 4 {
				dst[i+0] = src[i+2]
				dst[i+1] = src[i+1]
				dst[i+2] = src[i+0]
				dst[i+3] = 0xff
			}
		}
	})

	p := C.set_root_pixmap(s.dpy, s.pixmap, (*C.char)(unsafe.Pointer(&s.bgrx[0])), C.int(s.width), C.int(s.height))
	if p == 0 {
		return errors.New("failed to create XImage")
	}
	s.pixmap = p
	return nil
}

func (s *RootSurface) Events() <-chan render.Event { return s.events }

// Close disconnects from the display, leaving the last frame installed as
// the background.
func (s *RootSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.dead {
		C.XCloseDisplay(s.dpy)
	}
	s.dpy = nil
	return nil
}

func (s *RootSurface) check() error {
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

func (s *RootSurface) emit(ev render.Event) {
	select {
	case s.events <- ev:
	default:
	}
}
