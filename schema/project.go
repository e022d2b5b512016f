package schema

import (
	"github.com/reoring/ncconf/document"
)

// Config is the typed, lossy projection of a canonical document. Fields the
// projection does not model are kept in Extras (top level) or in the Extras of
// the nearest typed section, so Project(d).Document() is Equal to d.
type Config struct {
	Name    string
	Board   string
	Version string
	Axes    []AxisConfig

	// AxesExtras keeps axes entries that are not maps.
	AxesExtras *document.Map

	Homing  *GlobalHomingConfig
	Spindle *SpindleConfig

	// Extras holds every top-level entry not projected above, in
	// document order (io, uart, control, macros, sd and unknown keys).
	Extras *document.Map
}

// AxisConfig is one entry of the axes map.
type AxisConfig struct {
	ID                    string
	StepsPerMM            *float64
	MaxRateMMPerMin       *float64
	AccelerationMMPerSec2 *float64
	MaxTravelMM           *float64
	SoftLimits            *bool
	Homing                *HomingConfig
	Motors                []MotorConfig // motor0, motor1 in order when present
	Extras                *document.Map
}

// HomingConfig is the per-axis homing block.
type HomingConfig struct {
	Cycle             *float64
	PositiveDirection *bool
	FeedMMPerMin      *float64
	SeekMMPerMin      *float64
	Extras            *document.Map
}

// MotorConfig is a motor0/motor1 block.
type MotorConfig struct {
	Key          string
	StepPin      string
	DirectionPin string
	DisablePin   string
	Drivers      []DriverConfig
	Extras       *document.Map
}

// DriverConfig is one tmc_* sub-map.
type DriverConfig struct {
	Model      string // e.g. "tmc_2209"
	Microsteps *float64
	RunMode    string
	Extras     *document.Map
}

// GlobalHomingConfig is the top-level homing block.
type GlobalHomingConfig struct {
	Cycle  []float64
	Extras *document.Map
}

// SpindleConfig is the spindle block.
type SpindleConfig struct {
	PWMHz        *float64
	OutputPin    string
	EnablePin    string
	DirectionPin string
	Extras       *document.Map
}

// Project builds the typed view of doc. Wrongly typed recognized fields are
// left unset and their raw value moves to the section's Extras; call Validate
// first when that matters.
func Project(doc document.Value) Config {
	r := newReader(doc)
	c := Config{
		Name:    r.str("name"),
		Board:   r.str("board"),
		Version: r.str("version"),
	}
	if axes := r.take("axes"); axes.Kind() == document.KindMap {
		odd := document.NewBuilder()
		for id, av := range axes.Map().All() {
			if av.Kind() != document.KindMap {
				odd.Set(id, av)
				continue
			}
			c.Axes = append(c.Axes, projectAxis(id, av))
		}
		c.AxesExtras = odd.Map()
	} else if !axes.IsAbsent() {
		r.keep("axes", axes)
	}
	if h := r.take("homing"); h.Kind() == document.KindMap {
		hr := newReader(h)
		g := &GlobalHomingConfig{}
		if cyc := hr.take("cycle"); numericArray(cyc) {
			g.Cycle = make([]float64, 0, cyc.Len())
			for _, it := range cyc.Items() {
				n, _ := it.AsNumber()
				g.Cycle = append(g.Cycle, n)
			}
		} else if !cyc.IsAbsent() {
			hr.keep("cycle", cyc)
		}
		g.Extras = hr.rest()
		c.Homing = g
	} else if !h.IsAbsent() {
		r.keep("homing", h)
	}
	if s := r.take("spindle"); s.Kind() == document.KindMap {
		sr := newReader(s)
		c.Spindle = &SpindleConfig{
			PWMHz:        sr.num("pwm_hz"),
			OutputPin:    sr.str("output_pin"),
			EnablePin:    sr.str("enable_pin"),
			DirectionPin: sr.str("direction_pin"),
		}
		c.Spindle.Extras = sr.rest()
	} else if !s.IsAbsent() {
		r.keep("spindle", s)
	}
	c.Extras = r.rest()
	return c
}

func projectAxis(id string, v document.Value) AxisConfig {
	r := newReader(v)
	a := AxisConfig{
		ID:                    id,
		StepsPerMM:            r.num("steps_per_mm"),
		MaxRateMMPerMin:       r.num("max_rate_mm_per_min"),
		AccelerationMMPerSec2: r.num("acceleration_mm_per_sec2"),
		MaxTravelMM:           r.num("max_travel_mm"),
		SoftLimits:            r.boolean("soft_limits"),
	}
	if h := r.take("homing"); h.Kind() == document.KindMap {
		hr := newReader(h)
		a.Homing = &HomingConfig{
			Cycle:             hr.num("cycle"),
			PositiveDirection: hr.boolean("positive_direction"),
			FeedMMPerMin:      hr.num("feed_mm_per_min"),
			SeekMMPerMin:      hr.num("seek_mm_per_min"),
		}
		a.Homing.Extras = hr.rest()
	} else if !h.IsAbsent() {
		r.keep("homing", h)
	}
	for _, key := range []string{"motor0", "motor1"} {
		m := r.take(key)
		if m.Kind() != document.KindMap {
			if !m.IsAbsent() {
				r.keep(key, m)
			}
			continue
		}
		a.Motors = append(a.Motors, projectMotor(key, m))
	}
	a.Extras = r.rest()
	return a
}

func projectMotor(key string, v document.Value) MotorConfig {
	r := newReader(v)
	m := MotorConfig{
		Key:          key,
		StepPin:      r.str("step_pin"),
		DirectionPin: r.str("direction_pin"),
		DisablePin:   r.str("disable_pin"),
	}
	for _, model := range TMCModels {
		d := r.take(model)
		if d.Kind() != document.KindMap {
			if !d.IsAbsent() {
				r.keep(model, d)
			}
			continue
		}
		dr := newReader(d)
		dc := DriverConfig{Model: model, Microsteps: dr.num("microsteps"), RunMode: dr.str("run_mode")}
		dc.Extras = dr.rest()
		m.Drivers = append(m.Drivers, dc)
	}
	m.Extras = r.rest()
	return m
}

// Microsteps returns the first driver microstep setting of the axis, if any.
func (a AxisConfig) Microsteps() (float64, bool) {
	for _, m := range a.Motors {
		for _, d := range m.Drivers {
			if d.Microsteps != nil {
				return *d.Microsteps, true
			}
		}
	}
	return 0, false
}

// Document rebuilds a Document from the projection. Typed fields come first
// in canonical order, followed by the extras; keys whose typed value was not
// set are omitted.
func (c Config) Document() document.Value {
	b := document.NewBuilder()
	setStr(b, "name", c.Name)
	setStr(b, "board", c.Board)
	setStr(b, "version", c.Version)
	if c.Axes != nil || c.AxesExtras != nil {
		ab := document.NewBuilder()
		for _, a := range c.Axes {
			ab.Set(a.ID, a.document())
		}
		appendExtras(ab, c.AxesExtras)
		b.Set("axes", ab.Value())
	}
	if c.Homing != nil {
		hb := document.NewBuilder()
		if c.Homing.Cycle != nil {
			items := make([]document.Value, len(c.Homing.Cycle))
			for i, n := range c.Homing.Cycle {
				items[i] = document.Number(n)
			}
			hb.Set("cycle", document.Array(items...))
		}
		appendExtras(hb, c.Homing.Extras)
		b.Set("homing", hb.Value())
	}
	if s := c.Spindle; s != nil {
		sb := document.NewBuilder()
		setNum(sb, "pwm_hz", s.PWMHz)
		setStr(sb, "output_pin", s.OutputPin)
		setStr(sb, "enable_pin", s.EnablePin)
		setStr(sb, "direction_pin", s.DirectionPin)
		appendExtras(sb, s.Extras)
		b.Set("spindle", sb.Value())
	}
	appendExtras(b, c.Extras)
	return b.Value()
}

func (a AxisConfig) document() document.Value {
	b := document.NewBuilder()
	setNum(b, "steps_per_mm", a.StepsPerMM)
	setNum(b, "max_rate_mm_per_min", a.MaxRateMMPerMin)
	setNum(b, "acceleration_mm_per_sec2", a.AccelerationMMPerSec2)
	setNum(b, "max_travel_mm", a.MaxTravelMM)
	if a.SoftLimits != nil {
		b.Set("soft_limits", document.Bool(*a.SoftLimits))
	}
	if h := a.Homing; h != nil {
		hb := document.NewBuilder()
		setNum(hb, "cycle", h.Cycle)
		if h.PositiveDirection != nil {
			hb.Set("positive_direction", document.Bool(*h.PositiveDirection))
		}
		setNum(hb, "feed_mm_per_min", h.FeedMMPerMin)
		setNum(hb, "seek_mm_per_min", h.SeekMMPerMin)
		appendExtras(hb, h.Extras)
		b.Set("homing", hb.Value())
	}
	for _, m := range a.Motors {
		mb := document.NewBuilder()
		setStr(mb, "step_pin", m.StepPin)
		setStr(mb, "direction_pin", m.DirectionPin)
		setStr(mb, "disable_pin", m.DisablePin)
		for _, d := range m.Drivers {
			db := document.NewBuilder()
			setNum(db, "microsteps", d.Microsteps)
			setStr(db, "run_mode", d.RunMode)
			appendExtras(db, d.Extras)
			mb.Set(d.Model, db.Value())
		}
		appendExtras(mb, m.Extras)
		b.Set(m.Key, mb.Value())
	}
	appendExtras(b, a.Extras)
	return b.Value()
}

func numericArray(v document.Value) bool {
	if v.Kind() != document.KindArray {
		return false
	}
	for _, it := range v.Items() {
		if it.Kind() != document.KindNumber {
			return false
		}
	}
	return true
}

// reader pulls typed fields out of a map and remembers what is left.
type reader struct {
	src   document.Value
	taken map[string]bool
	kept  map[string]document.Value
}

func newReader(v document.Value) *reader {
	return &reader{src: v, taken: map[string]bool{}, kept: map[string]document.Value{}}
}

func (r *reader) take(key string) document.Value {
	r.taken[key] = true
	return r.src.Get(key)
}

// keep returns a taken key to the extras bag.
func (r *reader) keep(key string, v document.Value) { r.kept[key] = v }

func (r *reader) str(key string) string {
	v := r.take(key)
	if s, ok := v.AsString(); ok && s != "" {
		return s
	}
	if !v.IsAbsent() {
		r.keep(key, v)
	}
	return ""
}

func (r *reader) num(key string) *float64 {
	v := r.take(key)
	if n, ok := v.AsNumber(); ok {
		return &n
	}
	if !v.IsAbsent() {
		r.keep(key, v)
	}
	return nil
}

func (r *reader) boolean(key string) *bool {
	v := r.take(key)
	if b, ok := v.AsBool(); ok {
		return &b
	}
	if !v.IsAbsent() {
		r.keep(key, v)
	}
	return nil
}

// rest returns the untaken entries plus kept ones, in source order.
func (r *reader) rest() *document.Map {
	b := document.NewBuilder()
	for k, v := range r.src.Map().All() {
		if kv, ok := r.kept[k]; ok {
			b.Set(k, kv)
			continue
		}
		if !r.taken[k] {
			b.Set(k, v)
		}
	}
	return b.Map()
}

func setStr(b *document.Builder, key, s string) {
	if s != "" {
		b.Set(key, document.String(s))
	}
}

func setNum(b *document.Builder, key string, n *float64) {
	if n != nil {
		b.Set(key, document.Number(*n))
	}
}

func appendExtras(b *document.Builder, m *document.Map) {
	for k, v := range m.All() {
		b.Set(k, v)
	}
}
