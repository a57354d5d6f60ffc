package model

// Line holds the base transform of a judgement line. Events animate these values.
type Line struct {
	Name     string  `json:"name"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Rotation float32 `json:"rotation"`
	Opacity  float32 `json:"opacity"`
	Speed    float32 `json:"speed"`
}

func DefaultLine() Line {
	return Line{Name: "Unnamed Line", Speed: 10}
}

// Property returns the transform component animated by kind.
func (l Line) Property(kind LineEventKind) float32 {
	switch kind {
	case EventX:
		return l.X
	case EventY:
		return l.Y
	case EventRotation:
		return l.Rotation
	case EventOpacity:
		return l.Opacity
	case EventSpeed:
		return l.Speed
	}
	return 0
}

func (l *Line) SetProperty(kind LineEventKind, v float32) {
	switch kind {
	case EventX:
		l.X = v
	case EventY:
		l.Y = v
	case EventRotation:
		l.Rotation = v
	case EventOpacity:
		l.Opacity = v
	case EventSpeed:
		l.Speed = v
	}
}

// Offset is the chart offset in seconds.
type Offset struct {
	Offset float32 `json:"offset"`
}

// LineTree is the serialized form of a line and everything attached to it.
type LineTree struct {
	Line     Line        `json:"line"`
	Notes    []Note      `json:"notes"`
	Events   []LineEvent `json:"events"`
	Children []LineTree  `json:"children"`
}

// Chart is the serialized form of a whole chart (chart.json).
type Chart struct {
	Format  uint32     `json:"format"`
	Offset  Offset     `json:"offset"`
	BpmList BpmList    `json:"bpm_list"`
	Lines   []LineTree `json:"lines"`
}

// ProjectMeta is meta.json.
type ProjectMeta struct {
	Composer    string `json:"composer" yaml:"composer"`
	Charter     string `json:"charter" yaml:"charter"`
	Illustrator string `json:"illustrator" yaml:"illustrator"`
	Name        string `json:"name" yaml:"name"`
	Level       string `json:"level" yaml:"level"`
}
