package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTemplate is returned when a unit names a template that does not exist
var ErrUnknownTemplate = errors.New("unknown unit template")

// File is the on-disk layout of a scenario
type File struct {
	Name      string        `yaml:"name"`
	Width     int           `yaml:"width"`
	Height    int           `yaml:"height"`
	ToMove    string        `yaml:"to_move"`
	Units     []UnitDef     `yaml:"units"`
	Obstacles []ObstacleDef `yaml:"obstacles"`
}

// UnitDef describes one unit. Stats left at zero are taken from the template;
// a unit that starts dead sets Dead since hp 0 would pick up the template value.
type UnitDef struct {
	ID       int    `yaml:"id"`
	Side     string `yaml:"side"`
	Template string `yaml:"template"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	HP       int    `yaml:"hp"`
	MaxHP    int    `yaml:"max_hp"`
	Damage   int    `yaml:"damage"`
	Range    int    `yaml:"range"`
	Dead     bool   `yaml:"dead"`
}

type ObstacleDef struct {
	ID int `yaml:"id"`
	X  int `yaml:"x"`
	Y  int `yaml:"y"`
}

// Template holds default stats for a kind of unit
type Template struct {
	HP     int
	Damage int
	Range  int
}

// Templates are the built-in unit kinds, matching the random map defaults
var Templates = map[string]Template{
	"footman": {HP: 160, Damage: 20, Range: 1},
	"archer":  {HP: 50, Damage: 10, Range: 3},
}

// Load reads a scenario file from disk
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	f, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a scenario document. Unknown keys are rejected.
func Parse(b []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &f, nil
}

// Snapshot converts the file into the ingress form the game state is built from.
// Geometry and occupancy are checked later by game.NewState.
func (f *File) Snapshot() (game.Snapshot, error) {
	snap := game.Snapshot{
		Width:     f.Width,
		Height:    f.Height,
		ToMove:    core.Controlled,
		Units:     make([]game.UnitSnapshot, 0, len(f.Units)),
		Obstacles: make([]game.ObstacleSnapshot, 0, len(f.Obstacles)),
	}
	if f.ToMove != "" {
		side, ok := core.ParseSide(f.ToMove)
		if !ok {
			return game.Snapshot{}, fmt.Errorf("to_move %q is not a side", f.ToMove)
		}
		snap.ToMove = side
	}

	for _, u := range f.Units {
		us, err := u.snapshot()
		if err != nil {
			return game.Snapshot{}, fmt.Errorf("unit %d: %w", u.ID, err)
		}
		snap.Units = append(snap.Units, us)
	}
	for _, o := range f.Obstacles {
		snap.Obstacles = append(snap.Obstacles, game.ObstacleSnapshot{ID: o.ID, X: o.X, Y: o.Y})
	}
	return snap, nil
}

// State builds the root tactical state described by the file
func (f *File) State() (*game.State, error) {
	snap, err := f.Snapshot()
	if err != nil {
		return nil, err
	}
	return game.NewState(snap)
}

func (u UnitDef) snapshot() (game.UnitSnapshot, error) {
	side, ok := core.ParseSide(u.Side)
	if !ok {
		return game.UnitSnapshot{}, fmt.Errorf("side %q is not a side", u.Side)
	}

	us := game.UnitSnapshot{
		ID: u.ID, Side: side, X: u.X, Y: u.Y,
		HP: u.HP, MaxHP: u.MaxHP, Damage: u.Damage, Range: u.Range,
	}
	if u.Template != "" {
		tpl, ok := Templates[u.Template]
		if !ok {
			return game.UnitSnapshot{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, u.Template)
		}
		if us.HP == 0 {
			us.HP = tpl.HP
		}
		if us.MaxHP == 0 {
			us.MaxHP = tpl.HP
		}
		if us.Damage == 0 {
			us.Damage = tpl.Damage
		}
		if us.Range == 0 {
			us.Range = tpl.Range
		}
	}
	if u.Dead {
		if us.MaxHP == 0 {
			us.MaxHP = us.HP
		}
		us.HP = 0
	}
	return us, nil
}
