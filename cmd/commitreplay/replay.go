// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	comp "github.com/Elias-Graf/cosmic-comp"
	"github.com/Elias-Graf/cosmic-comp/backend"
	"github.com/Elias-Graf/cosmic-comp/config"
	"github.com/Elias-Graf/cosmic-comp/gpuimport"
	"github.com/Elias-Graf/cosmic-comp/internal/logging"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/screencopy"
	"github.com/Elias-Graf/cosmic-comp/shell"
	"github.com/Elias-Graf/cosmic-comp/surface"
)

// replayer drives a compositor from a script.
type replayer struct {
	cfg *config.Config
	out io.Writer
	log *slog.Logger

	compositor *surface.Compositor
	shell      *shell.Shell
	backend    backend.Backend
	gpus       []*backend.GPU
	state      *comp.State
	seat       *shell.Seat

	outputs  map[string]*output.Output
	surfaces map[string]*surface.Surface
	names    map[surface.ID]string
	windows  map[string]*shell.Window
	sessions map[string]*screencopy.Session
	order    []string

	snapshotDir string
}

func newReplayer(cfg *config.Config, logger *slog.Logger, out io.Writer) (*replayer, error) {
	logger = logging.OrNop(logger)
	r := &replayer{
		cfg:      cfg,
		out:      out,
		log:      logger,
		shell:    shell.New(),
		outputs:  make(map[string]*output.Output),
		surfaces: make(map[string]*surface.Surface),
		names:    make(map[surface.ID]string),
		windows:  make(map[string]*shell.Window),
		sessions: make(map[string]*screencopy.Session),
	}
	r.compositor = surface.NewCompositor(r)
	r.shell.SetLogger(logger)

	bcfg := backend.Config{OutputNodes: make(map[string]string), Logger: logger}
	for _, n := range cfg.Nodes {
		api, err := config.ParseAPI(n.API)
		if err != nil {
			return nil, err
		}
		typ, err := config.ParseAdapterType(n.Adapter)
		if err != nil {
			return nil, err
		}
		gpu, err := openGPU(n.GPU, api)
		if err != nil {
			r.close()
			return nil, fmt.Errorf("node %s: %w", n.Path, err)
		}
		if gpu != nil {
			r.gpus = append(r.gpus, gpu)
			logger.Info("gpu opened", "node", n.Path, "adapter", gpu.Adapter)
		}
		bcfg.Nodes = append(bcfg.Nodes, backend.NodeConfig{
			Node: gpuimport.Node{Path: n.Path, API: api},
			Device: backend.StaticDevice{
				Info:   gpucontext.AdapterInfo{Name: n.Name, Type: typ},
				Format: gputypes.TextureFormatRGBA8Unorm,
			},
			GPU: gpu,
		})
	}

	for _, oc := range cfg.Outputs {
		o := output.New(oc.Name, oc.Geometry())
		o.SetScale(oc.Scale)
		r.outputs[oc.Name] = o
		r.shell.AddOutput(o, oc.Workspaces[0])
		for _, ws := range oc.Workspaces[1:] {
			if _, err := r.shell.AddWorkspace(o, ws); err != nil {
				return nil, err
			}
		}
		if oc.Node != "" {
			bcfg.OutputNodes[oc.Name] = oc.Node
		}
	}
	r.seat = shell.NewSeat(cfg.Seat, r.outputs[cfg.Outputs[0].Name])

	b, err := backend.New(cfg.Backend, bcfg)
	if err != nil {
		r.close()
		return nil, err
	}
	r.backend = b
	r.state = comp.New(r.shell, b, comp.WithLogger(logger))
	logger.Info("backend selected", "backend", b.Name())
	return r, nil
}

func (r *replayer) run() error {
	defer r.close()
	for i, ev := range r.cfg.Script {
		if err := r.apply(ev); err != nil {
			return fmt.Errorf("script event %d (%s): %w", i, ev.Op, err)
		}
	}
	r.summary()
	return nil
}

func (r *replayer) apply(ev config.Event) error {
	switch ev.Op {
	case config.OpToplevel:
		s, err := r.create(ev.Surface)
		if err != nil {
			return err
		}
		top, err := r.compositor.NewToplevel(s)
		if err != nil {
			return err
		}
		top.SetTitle(ev.Title)
		w := shell.NewWindow(top)
		r.windows[ev.Surface] = w
		r.shell.AddPendingWindow(w, r.seat)

	case config.OpPopup:
		parent, err := r.lookup(ev.Parent)
		if err != nil {
			return err
		}
		s, err := r.create(ev.Surface)
		if err != nil {
			return err
		}
		p, err := r.compositor.NewPopup(s, parent, ev.Rect())
		if err != nil {
			return err
		}
		r.shell.Popups().Track(p)

	case config.OpLayer:
		s, err := r.create(ev.Surface)
		if err != nil {
			return err
		}
		layer, _ := config.ParseLayer(ev.Layer)
		anchor, _ := config.ParseAnchor(ev.Anchor)
		l, err := r.compositor.NewLayerSurface(s, r.outputs[ev.Output], ev.Namespace, surface.LayerState{
			Layer:         layer,
			Anchor:        anchor,
			Size:          image.Point(ev.Size),
			ExclusiveZone: ev.ExclusiveZone,
		})
		if err != nil {
			return err
		}
		r.shell.AddPendingLayer(l)

	case config.OpAttach:
		s, err := r.lookup(ev.Surface)
		if err != nil {
			return err
		}
		if ev.Size.X == 0 || ev.Size.Y == 0 {
			s.Attach(nil)
			return nil
		}
		c, _ := config.ParseColor(ev.Color)
		s.Attach(surface.NewShmBuffer(fill(image.Point(ev.Size), c)))

	case config.OpDamage:
		s, err := r.lookup(ev.Surface)
		if err != nil {
			return err
		}
		s.Damage()

	case config.OpCommit:
		s, err := r.lookup(ev.Surface)
		if err != nil {
			return err
		}
		r.state.Commit(s)
		r.state.Dispatch()

	case config.OpDestroy:
		s, err := r.lookup(ev.Surface)
		if err != nil {
			return err
		}
		r.state.Destroy(s)
		r.compositor.Destroy(s)
		delete(r.surfaces, ev.Surface)
		delete(r.windows, ev.Surface)

	case config.OpCapture:
		return r.capture(ev)

	case config.OpClose:
		sess, ok := r.sessions[ev.Session]
		if !ok {
			return fmt.Errorf("unknown session %q", ev.Session)
		}
		r.state.CloseSession(sess)

	case config.OpActivate:
		ws, ok := r.shell.WorkspaceByName(ev.Workspace)
		if !ok {
			return fmt.Errorf("unknown workspace %q", ev.Workspace)
		}
		return r.shell.Activate(r.outputs[ev.Output], ws.Handle())

	case config.OpFocus:
		r.seat.SetActiveOutput(r.outputs[ev.Output])

	case config.OpResize, config.OpResizeEnd:
		s, err := r.lookup(ev.Surface)
		if err != nil {
			return err
		}
		e, ok := r.shell.ElementForSurface(s)
		if !ok {
			return fmt.Errorf("surface %q is not mapped", ev.Surface)
		}
		if ev.Op == config.OpResizeEnd {
			e.EndResize()
			return nil
		}
		edges, _ := config.ParseEdges(ev.Edges)
		e.StartResize(edges)

	case config.OpDispatch:
		r.state.Dispatch()

	case config.OpFlush:
		n := r.backend.Flush(r.state.Software(), r.state.Scheduler())
		fmt.Fprintf(r.out, "flush frames=%d\n", n)

	default:
		return fmt.Errorf("unknown op %q", ev.Op)
	}
	return nil
}

// capture queues a capture attempt for the session named in ev, creating
// the session on first use.
func (r *replayer) capture(ev config.Event) error {
	var (
		typ   screencopy.SessionType
		queue *screencopy.Queue
		size  image.Point
	)
	switch ev.Target {
	case config.TargetOutput:
		o := r.outputs[ev.Output]
		typ = screencopy.OutputTarget{Output: o}
		queue = r.shell.OutputQueue(o)
		size = o.PixelSize()
	case config.TargetWorkspace:
		o := r.outputs[ev.Output]
		ws, ok := r.shell.WorkspaceByName(ev.Workspace)
		if !ok {
			return fmt.Errorf("unknown workspace %q", ev.Workspace)
		}
		typ = screencopy.WorkspaceTarget{Output: o, Workspace: ws.Handle()}
		queue = ws.PendingBuffers()
		size = o.PixelSize()
	case config.TargetWindow:
		w, ok := r.windows[ev.Surface]
		if !ok {
			return fmt.Errorf("surface %q is not a window", ev.Surface)
		}
		typ = screencopy.WindowTarget{Surface: w.Surface()}
		queue = w.PendingBuffers()
		size = w.Size()
	}
	if ev.Size.X > 0 && ev.Size.Y > 0 {
		size = image.Point(ev.Size)
	}

	sess, ok := r.sessions[ev.Session]
	if !ok {
		sess = screencopy.NewSession(typ, r)
		r.sessions[ev.Session] = sess
		r.order = append(r.order, ev.Session)
	}
	params := screencopy.NewBufferParams(image.NewRGBA(image.Rectangle{Max: size}))
	params.Age = ev.Age
	return queue.Push(sess, params)
}

// close releases imported textures and the opened GPUs.
func (r *replayer) close() {
	if c, ok := r.backend.(interface{ Close() }); ok {
		c.Close()
	}
	for _, g := range r.gpus {
		g.Close()
	}
	r.gpus = nil
}

func openGPU(mode string, api gputypes.Backend) (*backend.GPU, error) {
	switch mode {
	case config.GPUNoop:
		return backend.OpenGPU(&noop.API{})
	case config.GPUHAL:
		return backend.OpenGPUFor(api)
	default:
		return nil, nil
	}
}

func (r *replayer) create(name string) (*surface.Surface, error) {
	if _, dup := r.surfaces[name]; dup {
		return nil, fmt.Errorf("surface %q already exists", name)
	}
	s := r.compositor.CreateSurface()
	r.surfaces[name] = s
	r.names[s.ID()] = name
	return s, nil
}

func (r *replayer) lookup(name string) (*surface.Surface, error) {
	s, ok := r.surfaces[name]
	if !ok {
		return nil, fmt.Errorf("unknown surface %q", name)
	}
	return s, nil
}

func (r *replayer) sessionName(s *screencopy.Session) string {
	for name, x := range r.sessions {
		if x == s {
			return name
		}
	}
	return "?"
}

// Configure prints configures sent to clients.
func (r *replayer) Configure(ev surface.ConfigureEvent) {
	fmt.Fprintf(r.out, "configure surface=%s serial=%d size=%dx%d\n", r.names[ev.Surface], ev.Serial, ev.Size.X, ev.Size.Y)
}

// Ready prints a delivered capture and writes its snapshot.
func (r *replayer) Ready(s *screencopy.Session, params screencopy.BufferParams) {
	name := r.sessionName(s)
	fmt.Fprintf(r.out, "capture session=%s ready frame=%d\n", name, s.Frames())
	if r.snapshotDir == "" {
		return
	}
	path := filepath.Join(r.snapshotDir, fmt.Sprintf("%s-%03d.png", name, s.Frames()))
	if err := savePNG(path, params.Buffer); err != nil {
		r.log.Warn("snapshot failed", "session", name, "err", err)
	}
}

// Failed prints a failed capture.
func (r *replayer) Failed(s *screencopy.Session, reason screencopy.FailureReason) {
	fmt.Fprintf(r.out, "capture session=%s failed reason=%v\n", r.sessionName(s), reason)
}

func (r *replayer) summary() {
	names := make([]string, 0, len(r.surfaces))
	for name := range r.surfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := r.surfaces[name]
		state := "pending"
		if _, ok := r.shell.ElementForSurface(s); ok {
			state = "mapped"
		} else if _, ok := r.shell.LayerOutputForSurface(s); ok {
			state = "mapped"
		} else if _, ok := r.shell.FindPopup(s); ok && s.InitialConfigureSent() {
			state = "popup"
		}
		fmt.Fprintf(r.out, "surface %s %s commits=%d\n", name, state, s.Commits())
	}
	for _, name := range r.order {
		s := r.sessions[name]
		line := fmt.Sprintf("session %s %v frames=%d", name, s.State(), s.Frames())
		if s.State() == screencopy.StateFailed {
			line += fmt.Sprintf(" reason=%v", s.Reason())
		}
		if !s.Alive() {
			line += " closed"
		}
		fmt.Fprintln(r.out, line)
	}
}

func fill(size image.Point, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
