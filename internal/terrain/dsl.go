package terrain

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// ParseError reports a malformed template line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Span is a numeric range; primitives draw a uniform value from it at
// execution time. Min == Max encodes a single value.
type Span struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func span(v float64) Span { return Span{v, v} }

// Sample draws a value from the span.
func (s Span) Sample(rng *rand.Rand) float64 {
	if s.Max <= s.Min {
		return s.Min
	}
	return s.Min + rng.Float64()*(s.Max-s.Min)
}

func (s Span) scale(k float64) Span { return Span{s.Min * k, s.Max * k} }

// Op enumerates the closed set of template commands.
type Op uint8

const (
	OpMountain Op = iota
	OpHill
	OpPit
	OpRange
	OpTrough
	OpStrait
	OpAdd
	OpMultiply
	OpSmooth
	OpErode
	OpMask
	OpInvert
	OpNormalize
	OpSetSeaLevel
	OpAdjustSeaRatio
)

// MaskMode selects the radial shaping curve of a Mask command.
type MaskMode uint8

const (
	EdgeFade MaskMode = iota
	CenterBoost
	RadialGradient
)

// InvertAxis selects the mirror axis of an Invert command.
type InvertAxis uint8

const (
	InvertX InvertAxis = iota
	InvertY
	InvertBoth
)

// StraitDir selects the orientation of a Strait cut.
type StraitDir uint8

const (
	Vertical StraitDir = iota
	Horizontal
)

// Command is one template instruction. Which fields are meaningful depends
// on Op; unused fields stay zero. Positions, radii, lengths and widths are
// normalized map fractions, amounts are raw height units, angles radians.
type Command struct {
	Op Op `json:"op"`

	Count  int  `json:"count,omitempty"`
	Amount Span `json:"amount,omitempty"`
	X      Span `json:"x,omitempty"`
	Y      Span `json:"y,omitempty"`
	Radius Span `json:"radius,omitempty"`
	Length Span `json:"length,omitempty"`
	Width  Span `json:"width,omitempty"`
	Angle  Span `json:"angle,omitempty"`

	Value      float64    `json:"value,omitempty"`
	Iterations int        `json:"iterations,omitempty"`
	Mode       MaskMode   `json:"mode,omitempty"`
	Axis       InvertAxis `json:"axis,omitempty"`
	Dir        StraitDir  `json:"dir,omitempty"`
	Position   float64    `json:"position,omitempty"`

	Rain       float64 `json:"rain,omitempty"`
	Capacity   float64 `json:"capacity,omitempty"`
	Deposition float64 `json:"deposition,omitempty"`
}

// Template is a parsed terrain program.
type Template struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Commands    []Command `json:"commands"`
}

func parseNum(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", s)
	}
	return v, nil
}

func parseSpan(s string) (Span, error) {
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		if len(parts) != 2 {
			return Span{}, fmt.Errorf("invalid range format: %s", s)
		}
		lo, err := parseNum(parts[0])
		if err != nil {
			return Span{}, err
		}
		hi, err := parseNum(parts[1])
		if err != nil {
			return Span{}, err
		}
		return Span{lo, hi}, nil
	}
	v, err := parseNum(s)
	if err != nil {
		return Span{}, err
	}
	return span(v), nil
}

// parseCount accepts an integer or a range, taking the range midpoint.
func parseCount(s string) (int, error) {
	sp, err := parseSpan(s)
	if err != nil {
		return 0, err
	}
	return int((sp.Min + sp.Max) / 2), nil
}

func percentSpan(s string) (Span, error) {
	sp, err := parseSpan(s)
	if err != nil {
		return Span{}, err
	}
	return sp.scale(1.0 / 100), nil
}

// Parse reads a template from DSL text. Each non-empty line that is not a
// '#' or '//' comment is one command; command names are case-insensitive
// and numeric arguments accept "min-max" ranges.
func Parse(name, description, text string) (*Template, error) {
	t := &Template{Name: name, Description: description}
	for i, line := range strings.Split(text, "\n") {
		cmd, err := parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		if cmd != nil {
			t.Commands = append(t.Commands, *cmd)
		}
	}
	return t, nil
}

func parseLine(line string, lineNum int) (*Command, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return nil, nil
	}
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	fail := func(msg string) (*Command, error) {
		return nil, &ParseError{Line: lineNum, Message: fmt.Sprintf("%s: %s", msg, line)}
	}

	switch name {
	case "hill", "pit":
		if len(args) < 4 {
			return fail(fields[0] + " requires: count amount x y [radius]")
		}
		count, err := parseCount(args[0])
		if err != nil {
			return fail(err.Error())
		}
		amount, err := parseSpan(args[1])
		if err != nil {
			return fail(err.Error())
		}
		x, err := percentSpan(args[2])
		if err != nil {
			return fail(err.Error())
		}
		y, err := percentSpan(args[3])
		if err != nil {
			return fail(err.Error())
		}
		radius := Span{0.08, 0.15}
		if len(args) > 4 {
			if radius, err = percentSpan(args[4]); err != nil {
				return fail(err.Error())
			}
		}
		op := OpHill
		if name == "pit" {
			op = OpPit
		}
		return &Command{Op: op, Count: count, Amount: amount, X: x, Y: y, Radius: radius}, nil

	case "range", "trough":
		if len(args) < 4 {
			return fail(fields[0] + " requires: count amount x y [length] [width] [angle]")
		}
		count, err := parseCount(args[0])
		if err != nil {
			return fail(err.Error())
		}
		amount, err := parseSpan(args[1])
		if err != nil {
			return fail(err.Error())
		}
		x, err := percentSpan(args[2])
		if err != nil {
			return fail(err.Error())
		}
		y, err := percentSpan(args[3])
		if err != nil {
			return fail(err.Error())
		}
		length := Span{0.2, 0.5}
		width := Span{0.02, 0.05}
		angle := Span{0, 2 * math.Pi}
		if len(args) > 4 {
			if length, err = percentSpan(args[4]); err != nil {
				return fail(err.Error())
			}
		}
		if len(args) > 5 {
			if width, err = percentSpan(args[5]); err != nil {
				return fail(err.Error())
			}
		}
		if len(args) > 6 {
			if angle, err = parseSpan(args[6]); err != nil {
				return fail(err.Error())
			}
		}
		op := OpRange
		if name == "trough" {
			op = OpTrough
		}
		return &Command{Op: op, Count: count, Amount: amount, X: x, Y: y, Length: length, Width: width, Angle: angle}, nil

	case "mountain", "mt":
		if len(args) < 4 {
			return fail("Mountain requires: height x y radius")
		}
		h, err := parseNum(args[0])
		if err != nil {
			return fail(err.Error())
		}
		x, err := parseNum(args[1])
		if err != nil {
			return fail(err.Error())
		}
		y, err := parseNum(args[2])
		if err != nil {
			return fail(err.Error())
		}
		r, err := parseNum(args[3])
		if err != nil {
			return fail(err.Error())
		}
		return &Command{Op: OpMountain, Amount: span(h), X: span(x / 100), Y: span(y / 100), Radius: span(r / 100)}, nil

	case "strait":
		if len(args) < 2 {
			return fail("Strait requires: width direction [position] [depth]")
		}
		w, err := parseNum(args[0])
		if err != nil {
			return fail(err.Error())
		}
		dir := Horizontal
		if d := strings.ToLower(args[1]); d == "v" || d == "vertical" {
			dir = Vertical
		}
		position := 0.5
		if len(args) > 2 {
			p, err := parseNum(args[2])
			if err != nil {
				return fail(err.Error())
			}
			position = p / 100
		}
		depth := 30.0
		if len(args) > 3 {
			if depth, err = parseNum(args[3]); err != nil {
				return fail(err.Error())
			}
		}
		return &Command{Op: OpStrait, Width: span(w / 100), Dir: dir, Position: position, Value: depth}, nil

	case "add":
		if len(args) == 0 {
			return fail("Add requires: value")
		}
		v, err := parseNum(args[0])
		if err != nil {
			return fail(err.Error())
		}
		return &Command{Op: OpAdd, Value: v}, nil

	case "multiply", "mult":
		if len(args) == 0 {
			return fail("Multiply requires: factor")
		}
		v, err := parseNum(args[0])
		if err != nil {
			return fail(err.Error())
		}
		return &Command{Op: OpMultiply, Value: v}, nil

	case "smooth":
		if len(args) == 0 {
			return fail("Smooth requires: iterations")
		}
		n, err := parseCount(args[0])
		if err != nil {
			return fail(err.Error())
		}
		return &Command{Op: OpSmooth, Iterations: n}, nil

	case "erode":
		if len(args) == 0 {
			return fail("Erode requires: iterations [rain] [capacity] [deposition]")
		}
		n, err := parseCount(args[0])
		if err != nil {
			return fail(err.Error())
		}
		c := &Command{Op: OpErode, Iterations: n, Rain: 1, Capacity: 0.1, Deposition: 0.5}
		if len(args) > 1 {
			if c.Rain, err = parseNum(args[1]); err != nil {
				return fail(err.Error())
			}
		}
		if len(args) > 2 {
			if c.Capacity, err = parseNum(args[2]); err != nil {
				return fail(err.Error())
			}
		}
		if len(args) > 3 {
			if c.Deposition, err = parseNum(args[3]); err != nil {
				return fail(err.Error())
			}
		}
		return c, nil

	case "mask":
		if len(args) == 0 {
			return fail("Mask requires: mode [strength]")
		}
		var mode MaskMode
		switch strings.ToLower(args[0]) {
		case "1", "edge", "edgefade":
			mode = EdgeFade
		case "2", "center", "centerboost":
			mode = CenterBoost
		default:
			mode = RadialGradient
		}
		strength := 0.5
		if len(args) > 1 {
			v, err := parseNum(args[1])
			if err != nil {
				return fail(err.Error())
			}
			strength = v
		}
		return &Command{Op: OpMask, Mode: mode, Value: strength}, nil

	case "invert":
		prob := 0.5
		if len(args) > 0 {
			v, err := parseNum(args[0])
			if err != nil {
				return fail(err.Error())
			}
			prob = v
		}
		axis := InvertBoth
		if len(args) > 1 {
			switch strings.ToLower(args[1]) {
			case "x":
				axis = InvertX
			case "y":
				axis = InvertY
			}
		}
		return &Command{Op: OpInvert, Axis: axis, Value: prob}, nil

	case "normalize", "norm":
		return &Command{Op: OpNormalize}, nil

	case "sealevel":
		if len(args) == 0 {
			return fail("SeaLevel requires: level")
		}
		v, err := parseNum(args[0])
		if err != nil {
			return fail(err.Error())
		}
		return &Command{Op: OpSetSeaLevel, Value: v}, nil

	case "searatio", "sea", "ocean":
		if len(args) == 0 {
			return fail("SeaRatio requires: ratio")
		}
		v, err := parseNum(args[0])
		if err != nil {
			return fail(err.Error())
		}
		if v > 1 {
			v /= 100
		}
		return &Command{Op: OpAdjustSeaRatio, Value: v}, nil
	}
	return fail("unknown command: " + name)
}

// Serialize renders the template back to DSL text. The output parses to a
// semantically equal template, though formatting may differ from the input.
func (t *Template) Serialize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(&b, "# %s\n", t.Description)
	}
	b.WriteString("\n")
	for _, c := range t.Commands {
		b.WriteString(c.serialize())
		b.WriteString("\n")
	}
	return b.String()
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func fmtSpan(s Span) string {
	if s.Min == s.Max {
		return fmtNum(s.Min)
	}
	return fmtNum(s.Min) + "-" + fmtNum(s.Max)
}

func fmtPercent(s Span) string {
	return fmtSpan(s.scale(100))
}

func (c Command) serialize() string {
	switch c.Op {
	case OpHill, OpPit:
		name := "Hill"
		if c.Op == OpPit {
			name = "Pit"
		}
		return fmt.Sprintf("%s %d %s %s %s %s", name, c.Count, fmtSpan(c.Amount),
			fmtPercent(c.X), fmtPercent(c.Y), fmtPercent(c.Radius))
	case OpRange, OpTrough:
		name := "Range"
		if c.Op == OpTrough {
			name = "Trough"
		}
		return fmt.Sprintf("%s %d %s %s %s %s %s %s", name, c.Count, fmtSpan(c.Amount),
			fmtPercent(c.X), fmtPercent(c.Y), fmtPercent(c.Length), fmtPercent(c.Width), fmtSpan(c.Angle))
	case OpMountain:
		return fmt.Sprintf("Mountain %s %s %s %s", fmtNum(c.Amount.Min),
			fmtNum(c.X.Min*100), fmtNum(c.Y.Min*100), fmtNum(c.Radius.Min*100))
	case OpStrait:
		dir := "horizontal"
		if c.Dir == Vertical {
			dir = "vertical"
		}
		return fmt.Sprintf("Strait %s %s %s %s", fmtNum(c.Width.Min*100), dir,
			fmtNum(c.Position*100), fmtNum(c.Value))
	case OpAdd:
		return "Add " + fmtNum(c.Value)
	case OpMultiply:
		return "Multiply " + fmtNum(c.Value)
	case OpSmooth:
		return fmt.Sprintf("Smooth %d", c.Iterations)
	case OpErode:
		return fmt.Sprintf("Erode %d %s %s %s", c.Iterations, fmtNum(c.Rain),
			fmtNum(c.Capacity), fmtNum(c.Deposition))
	case OpMask:
		mode := "radial"
		switch c.Mode {
		case EdgeFade:
			mode = "edge"
		case CenterBoost:
			mode = "center"
		}
		return fmt.Sprintf("Mask %s %s", mode, fmtNum(c.Value))
	case OpInvert:
		axis := "both"
		switch c.Axis {
		case InvertX:
			axis = "x"
		case InvertY:
			axis = "y"
		}
		return fmt.Sprintf("Invert %s %s", fmtNum(c.Value), axis)
	case OpNormalize:
		return "Normalize"
	case OpSetSeaLevel:
		return "SeaLevel " + fmtNum(c.Value)
	case OpAdjustSeaRatio:
		return "SeaRatio " + fmtNum(c.Value)
	}
	return ""
}
