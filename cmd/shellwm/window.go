package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/1broseidon/shellwm/internal/geometry"
	"github.com/1broseidon/shellwm/internal/ipc"
	"github.com/1broseidon/shellwm/internal/wm"
)

// minTitleWidth keeps the title column readable on narrow terminals.
const minTitleWidth = 8

func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses args and requires exactly want positional arguments.
// It returns a non-negative exit code when the caller should stop.
func parseArgs(fs *flag.FlagSet, args []string, want int) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != want {
		fmt.Fprintf(os.Stderr, "%s expects %d argument(s), got %d\n", fs.Name(), want, fs.NArg())
		fs.Usage()
		return 2
	}
	return -1
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printWindowResult prints the window a command returned, or a note that
// the id is not open.
func printWindowResult(id string, w *wm.Window, asJSON bool) int {
	if asJSON {
		if err := writeJSON(os.Stdout, ipc.WindowData{Found: w != nil, Window: w}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	if w == nil {
		fmt.Printf("%s: not open\n", id)
		return 0
	}
	writeWindowDetail(os.Stdout, *w)
	return 0
}

func writeWindowDetail(w io.Writer, win wm.Window) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", win.ID)
	fmt.Fprintf(tw, "title:\t%s\n", win.Title)
	fmt.Fprintf(tw, "component:\t%s\n", win.Component)
	fmt.Fprintf(tw, "state:\t%s\n", windowState(win))
	fmt.Fprintf(tw, "position:\t%s\n", formatPoint(win.Position))
	fmt.Fprintf(tw, "size:\t%s\n", formatSize(win.Size))
	if win.OriginalPosition != nil && win.OriginalSize != nil {
		fmt.Fprintf(tw, "original:\t%s @ %s\n", formatSize(*win.OriginalSize), formatPoint(*win.OriginalPosition))
	}
	fmt.Fprintf(tw, "z_index:\t%d\n", win.ZIndex)
	if len(win.Props) > 0 {
		props, _ := json.Marshal(win.Props)
		fmt.Fprintf(tw, "props:\t%s\n", props)
	}
	tw.Flush()
}

func windowState(w wm.Window) string {
	state := w.State().String()
	if w.Focused {
		state += ",focused"
	}
	return state
}

func formatPoint(p geometry.Point) string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

func formatSize(s geometry.Size) string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// parsePoint parses "X,Y".
func parsePoint(s string) (geometry.Point, error) {
	x, y, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("invalid position %q (want X,Y)", s)
	}
	px, err := strconv.Atoi(strings.TrimSpace(x))
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid position %q: %w", s, err)
	}
	py, err := strconv.Atoi(strings.TrimSpace(y))
	if err != nil {
		return geometry.Point{}, fmt.Errorf("invalid position %q: %w", s, err)
	}
	return geometry.Point{X: px, Y: py}, nil
}

// parseSize parses "WxH". Both dimensions must be positive.
func parseSize(s string) (geometry.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return geometry.Size{}, fmt.Errorf("invalid size %q (want WxH)", s)
	}
	sw, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	sh, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return geometry.Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if sw <= 0 || sh <= 0 {
		return geometry.Size{}, fmt.Errorf("invalid size %q: width and height must be > 0", s)
	}
	return geometry.Size{Width: sw, Height: sh}, nil
}

func runList(args []string) int {
	fs := newFlagSet("list", "Usage: shellwm list [--json]\n\nList open windows, topmost first.")
	asJSON := fs.Bool("json", false, "Print JSON even on a terminal")
	if code := parseArgs(fs, args, 0); code >= 0 {
		return code
	}

	data, err := ipc.NewClient().List()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fd := int(os.Stdout.Fd())
	if *asJSON || !term.IsTerminal(fd) {
		if err := writeJSON(os.Stdout, data); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	width := 0
	if w, _, err := term.GetSize(fd); err == nil {
		width = w
	}
	writeWindowTable(os.Stdout, data, width)
	return 0
}

// writeWindowTable prints windows in stacking order, topmost first. A
// positive width truncates titles so rows fit the terminal.
func writeWindowTable(w io.Writer, data *ipc.WindowsData, width int) {
	if len(data.Windows) == 0 {
		fmt.Fprintln(w, "no windows open")
		return
	}

	byID := make(map[string]wm.Window, len(data.Windows))
	for _, win := range data.Windows {
		byID[win.ID] = win
	}
	ordered := make([]wm.Window, 0, len(data.Windows))
	for _, id := range data.Stack {
		if win, ok := byID[id]; ok {
			ordered = append(ordered, win)
			delete(byID, id)
		}
	}
	// Anything missing from the stack keeps open order at the bottom.
	for _, win := range data.Windows {
		if _, ok := byID[win.ID]; ok {
			ordered = append(ordered, win)
		}
	}

	titleWidth := 0
	if width > 0 {
		fixed := 0
		for _, win := range ordered {
			row := len(win.ID) + len(win.Component) + len(windowState(win)) +
				len(formatPoint(win.Position)) + len(formatSize(win.Size)) + len(strconv.Itoa(win.ZIndex))
			fixed = max(fixed, row)
		}
		// Six column gaps of two spaces.
		titleWidth = max(minTitleWidth, width-fixed-12)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Z\tID\tTITLE\tCOMPONENT\tSTATE\tPOSITION\tSIZE")
	for _, win := range ordered {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			win.ZIndex, win.ID, truncate(win.Title, titleWidth), win.Component,
			windowState(win), formatPoint(win.Position), formatSize(win.Size))
	}
	tw.Flush()
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func runGet(args []string) int {
	fs := newFlagSet("get", "Usage: shellwm get [--json] <id>\n\nShow one window.")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code := parseArgs(fs, args, 1); code >= 0 {
		return code
	}
	id := fs.Arg(0)

	w, err := ipc.NewClient().Find(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if w == nil && !*asJSON {
		fmt.Fprintf(os.Stderr, "%s: not open\n", id)
		return 1
	}
	return printWindowResult(id, w, *asJSON)
}

func runOpen(args []string) int {
	fs := newFlagSet("open", "Usage: shellwm open [options]\n\nOpen a window, or focus it if the id is already open.")
	id := fs.String("id", "", "Window id (default: random UUID)")
	title := fs.String("title", "", "Window title")
	component := fs.String("component", "", "Component kind (selects the default size)")
	propsJSON := fs.String("props", "", "Component props as a JSON object")
	sizeFlag := fs.String("size", "", "Initial size WxH")
	posFlag := fs.String("position", "", "Initial position X,Y")
	center := fs.Bool("center", false, "Center in the viewport")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code := parseArgs(fs, args, 0); code >= 0 {
		return code
	}

	p := ipc.OpenPayload{
		ID:        strings.TrimSpace(*id),
		Title:     *title,
		Component: *component,
		Center:    *center,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if *propsJSON != "" {
		if err := json.Unmarshal([]byte(*propsJSON), &p.Props); err != nil {
			fmt.Fprintf(os.Stderr, "invalid --props: %v\n", err)
			return 2
		}
	}
	if *sizeFlag != "" {
		size, err := parseSize(*sizeFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		p.Size = &size
	}
	if *posFlag != "" {
		pos, err := parsePoint(*posFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		p.Position = &pos
	}

	w, err := ipc.NewClient().Open(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printWindowResult(p.ID, w, *asJSON)
}

// runWindowCommand handles the single-id lifecycle commands.
func runWindowCommand(name string, args []string) int {
	fs := newFlagSet(name, fmt.Sprintf("Usage: shellwm %s [--json] <id>", name))
	asJSON := fs.Bool("json", false, "Print JSON")
	if code := parseArgs(fs, args, 1); code >= 0 {
		return code
	}
	id := fs.Arg(0)
	client := ipc.NewClient()

	var (
		w   *wm.Window
		err error
	)
	switch name {
	case "close":
		err = client.Close(id)
	case "focus":
		w, err = client.Focus(id)
	case "minimize":
		w, err = client.Minimize(id)
	case "maximize":
		w, err = client.Maximize(id)
	case "restore":
		w, err = client.Restore(id)
	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n", name)
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if name == "close" {
		if !*asJSON {
			fmt.Printf("%s: closed\n", id)
		}
		return 0
	}
	return printWindowResult(id, w, *asJSON)
}

func runMove(args []string) int {
	fs := newFlagSet("move", "Usage: shellwm move [--json] <id> <X,Y>")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code := parseArgs(fs, args, 2); code >= 0 {
		return code
	}
	pos, err := parsePoint(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	w, err := ipc.NewClient().UpdateBounds(fs.Arg(0), &pos, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printWindowResult(fs.Arg(0), w, *asJSON)
}

func runResize(args []string) int {
	fs := newFlagSet("resize", "Usage: shellwm resize [--json] <id> <WxH>")
	asJSON := fs.Bool("json", false, "Print JSON")
	if code := parseArgs(fs, args, 2); code >= 0 {
		return code
	}
	size, err := parseSize(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	w, err := ipc.NewClient().UpdateBounds(fs.Arg(0), nil, &size)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return printWindowResult(fs.Arg(0), w, *asJSON)
}
