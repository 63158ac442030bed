package input

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Action is a scripted player gesture.
type Action string

const (
	ActionClick   Action = "click"
	ActionDrag    Action = "drag"
	ActionCommand Action = "command"
	ActionWait    Action = "wait"
)

// Step is one scripted gesture in world coordinates. Drag uses From and To,
// the other actions use From only. Wait idles for Ticks ticks.
type Step struct {
	Action Action     `yaml:"action"`
	From   mgl64.Vec3 `yaml:"from"`
	To     mgl64.Vec3 `yaml:"to"`
	Ticks  int        `yaml:"ticks"`
}

// Projector maps world points to screen points.
type Projector interface {
	WorldToScreen(p mgl64.Vec3) (mgl64.Vec2, bool)
}

// DragTicks is the number of held samples a scripted drag spreads its motion
// over.
const DragTicks = 4

// Compile turns a script into one sample per tick.
func Compile(steps []Step, proj Projector) ([]PointerSample, error) {
	var out []PointerSample
	var last mgl64.Vec2
	for i, st := range steps {
		switch Action(strings.ToLower(string(st.Action))) {
		case ActionClick:
			p, err := project(proj, st.From, i)
			if err != nil {
				return nil, err
			}
			out = append(out,
				PointerSample{Position: p, Left: Down()},
				PointerSample{Position: p, Left: Up()},
			)
			last = p
		case ActionDrag:
			a, err := project(proj, st.From, i)
			if err != nil {
				return nil, err
			}
			b, err := project(proj, st.To, i)
			if err != nil {
				return nil, err
			}
			out = append(out, PointerSample{Position: a, Left: Down()})
			for k := 1; k <= DragTicks; k++ {
				t := float64(k) / DragTicks
				out = append(out, PointerSample{Position: a.Add(b.Sub(a).Mul(t)), Left: Hold()})
			}
			out = append(out, PointerSample{Position: b, Left: Up()})
			last = b
		case ActionCommand:
			p, err := project(proj, st.From, i)
			if err != nil {
				return nil, err
			}
			out = append(out,
				PointerSample{Position: p, Right: Down()},
				PointerSample{Position: p, Right: Up()},
			)
			last = p
		case ActionWait:
			for k := 0; k < st.Ticks; k++ {
				out = append(out, Idle(last))
			}
		default:
			return nil, fmt.Errorf("%w: step %d: %q", ErrUnknownAction, i, st.Action)
		}
	}
	return out, nil
}

func project(proj Projector, p mgl64.Vec3, step int) (mgl64.Vec2, error) {
	s, ok := proj.WorldToScreen(p)
	if !ok {
		return mgl64.Vec2{}, fmt.Errorf("%w: step %d: %v", ErrOffScreen, step, p)
	}
	return s, nil
}
